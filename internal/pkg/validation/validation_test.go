package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDatabaseName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "acme_db", true},
		{"leading underscore", "_tenant", true},
		{"digits after first", "acme2024", true},
		{"max length", "a" + strings.Repeat("b", 62), true},
		{"leading digit", "1bad", false},
		{"hyphen", "1bad-name", false},
		{"hyphen after letter", "bad-name", false},
		{"dot", "acme.db", false},
		{"empty", "", false},
		{"too long", "a" + strings.Repeat("b", 63), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDatabaseName(tt.input))
		})
	}
}

func TestIsTenantPassword(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "Abcd123!", true},
		{"valid with dot and hash", "Xy9.#abcd", true},
		{"too short", "Ab1!", false},
		{"no upper", "abcd123!", false},
		{"no lower", "ABCD123!", false},
		{"no digit", "Abcdefg!", false},
		{"no special", "Abcd1234", false},
		{"disallowed special", "Abcd123!-", false},
		{"space", "Abcd 123!", false},
		{"non ascii", "Ábcd123!", false},
		{"too long", "Ab1!" + strings.Repeat("a", 252), false},
		{"max length", "Ab1!" + strings.Repeat("a", 251), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTenantPassword(tt.input))
		})
	}
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type request struct {
		Database string `validate:"required,dbname"`
		Password string `validate:"required,tenant_password"`
	}

	assert.NoError(t, v.Struct(request{Database: "acme_db", Password: "Abcd123!"}))

	err := v.Struct(request{Database: "1bad-name", Password: "Abcd123!"})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "dbname", verrs[0].Tag())

	err = v.Struct(request{Database: "acme_db", Password: "weak"})
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "tenant_password", verrs[0].Tag())
}
