package odoo

const DefaultLanguage = "es"

var languageTags = map[string]string{
	"en": "en_US",
	"es": "es_ES",
}

// LanguageTag 把用户语言转换成 Odoo 的 locale
func LanguageTag(lang string) string {
	if tag, ok := languageTags[lang]; ok {
		return tag
	}
	return languageTags[DefaultLanguage]
}

func IsSupportedLanguage(lang string) bool {
	_, ok := languageTags[lang]
	return ok
}
