package validation

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 租户数据库名遵循 PostgreSQL 标识符规则
var databaseNamePattern = regexp.MustCompile(`^[a-zA-Z_]\w*$`)

const (
	MaxDatabaseNameLength = 63
	MinPasswordLength     = 8
	MaxPasswordLength     = 255
	PasswordSpecials      = "@$!%*?&.#"
)

// IsDatabaseName 检查租户数据库名
func IsDatabaseName(name string) bool {
	return len(name) <= MaxDatabaseNameLength && databaseNamePattern.MatchString(name)
}

// IsTenantPassword 检查租户管理员密码：
// 至少一个小写、一个大写、一个数字、一个特殊字符，且只允许字母数字和特殊字符集
func IsTenantPassword(password string) bool {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return false
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII:
			return false
		case 'a' <= r && r <= 'z':
			lower = true
		case 'A' <= r && r <= 'Z':
			upper = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

var registerOnce sync.Once

// RegisterGinValidators 在 gin 的 validator 上注册 dbname / tenant_password 标签
func RegisterGinValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = Register(v)
		}
	})
}

func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("dbname", func(fl validator.FieldLevel) bool {
		return IsDatabaseName(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("tenant_password", func(fl validator.FieldLevel) bool {
		return IsTenantPassword(fl.Field().String())
	})
}
