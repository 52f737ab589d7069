package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const (
	TemplateWelcome           = "welcome"
	TemplateInstallationReady = "installation_ready"
	TemplateVerifyEmail       = "verify_email"
	TemplatePasswordReset     = "password_reset"
)

type content struct {
	subject string
	text    string
	html    string
}

// 模板按语言区分，缺省为西班牙语
var templates = map[string]map[string]content{
	TemplateWelcome: {
		"es": {
			subject: "Bienvenido a OnnaSoft",
			text:    "Hola {{.Name}},\n\nGracias por registrarte. Tu código de verificación es: {{.Code}}\n",
			html:    `<p>Hola {{.Name}},</p><p>Gracias por registrarte. Tu código de verificación es:</p><p><code>{{.Code}}</code></p>`,
		},
		"en": {
			subject: "Welcome to OnnaSoft",
			text:    "Hi {{.Name}},\n\nThanks for signing up. Your verification code is: {{.Code}}\n",
			html:    `<p>Hi {{.Name}},</p><p>Thanks for signing up. Your verification code is:</p><p><code>{{.Code}}</code></p>`,
		},
	},
	TemplateVerifyEmail: {
		"es": {
			subject: "Verifica tu correo",
			text:    "Hola {{.Name}},\n\nTu nuevo código de verificación es: {{.Code}}\n",
			html:    `<p>Hola {{.Name}},</p><p>Tu nuevo código de verificación es:</p><p><code>{{.Code}}</code></p>`,
		},
		"en": {
			subject: "Verify your email",
			text:    "Hi {{.Name}},\n\nYour new verification code is: {{.Code}}\n",
			html:    `<p>Hi {{.Name}},</p><p>Your new verification code is:</p><p><code>{{.Code}}</code></p>`,
		},
	},
	TemplatePasswordReset: {
		"es": {
			subject: "Restablece tu contraseña",
			text:    "Hola {{.Name}},\n\nUsa este código para restablecer tu contraseña (válido una hora): {{.Token}}\n",
			html:    `<p>Hola {{.Name}},</p><p>Usa este código para restablecer tu contraseña (válido una hora):</p><p><code>{{.Token}}</code></p>`,
		},
		"en": {
			subject: "Reset your password",
			text:    "Hi {{.Name}},\n\nUse this code to reset your password (valid for one hour): {{.Token}}\n",
			html:    `<p>Hi {{.Name}},</p><p>Use this code to reset your password (valid for one hour):</p><p><code>{{.Token}}</code></p>`,
		},
	},
	TemplateInstallationReady: {
		"es": {
			subject: "Tu instancia de Odoo está lista",
			text:    "Hola {{.Name}},\n\nLa base de datos {{.Domain}} ya está disponible.\n",
			html:    `<p>Hola {{.Name}},</p><p>La base de datos <strong>{{.Domain}}</strong> ya está disponible.</p>`,
		},
		"en": {
			subject: "Your Odoo instance is ready",
			text:    "Hi {{.Name}},\n\nThe database {{.Domain}} is now available.\n",
			html:    `<p>Hi {{.Name}},</p><p>The database <strong>{{.Domain}}</strong> is now available.</p>`,
		},
	},
}

// Render 渲染模板，data 中的字段会被 HTML 转义
func Render(name, lang string, data map[string]string) (Message, error) {
	byLang, ok := templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown email template %q", name)
	}
	c, ok := byLang[lang]
	if !ok {
		c = byLang["es"]
	}

	var text bytes.Buffer
	if err := texttemplate.Must(texttemplate.New(name).Parse(c.text)).Execute(&text, data); err != nil {
		return Message{}, err
	}
	var html bytes.Buffer
	if err := htmltemplate.Must(htmltemplate.New(name).Parse(c.html)).Execute(&html, data); err != nil {
		return Message{}, err
	}

	return Message{
		Subject: c.subject,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
