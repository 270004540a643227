package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknova/internal/service"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Field
}

func TestRegister_Validate(t *testing.T) {
	tests := []struct {
		name  string
		form  Register
		field string
	}{
		{"ok", Register{"Ada Lovelace", "ada@example.com", "secret1"}, ""},
		{"missing name", Register{"  ", "ada@example.com", "secret1"}, "name"},
		{"digits in name", Register{"Ada99", "ada@example.com", "secret1"}, "name"},
		{"missing email", Register{"Ada", "", "secret1"}, "email"},
		{"malformed email", Register{"Ada", "ada@example", "secret1"}, "email"},
		{"missing password", Register{"Ada", "ada@example.com", "   "}, "password"},
		{"short password", Register{"Ada", "ada@example.com", "12345"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.field, fieldOf(t, err))
		})
	}
}

func TestRegister_Messages(t *testing.T) {
	err := Register{Name: "Ada", Email: "ada@example.com", Password: "123"}.Validate()
	assert.EqualError(t, err, "Password must be at least 6 characters long!")
}

func TestLogin_Validate(t *testing.T) {
	assert.NoError(t, Login{"ada@example.com", "x"}.Validate())
	assert.Equal(t, "email", fieldOf(t, Login{"", "x"}.Validate()))
	assert.Equal(t, "email", fieldOf(t, Login{"not an email", "x"}.Validate()))
	assert.Equal(t, "password", fieldOf(t, Login{"ada@example.com", ""}.Validate()))
}

func TestPasswordReset_Validate(t *testing.T) {
	assert.NoError(t, PasswordReset{"ada@example.com"}.Validate())
	assert.Equal(t, "email", fieldOf(t, PasswordReset{" "}.Validate()))
}
