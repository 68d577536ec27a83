package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-registration/pkg/apperror"
)

const (
	emailPattern    = `^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`
	passwordPattern = `^.{6,}$`
	passwordMessage = "password must be at least 6 characters"
)

func newValidator(t *testing.T) *PatternValidator {
	t.Helper()
	v, err := NewPatternValidator(emailPattern, passwordPattern, passwordMessage)
	require.NoError(t, err)
	return v
}

func TestValidateEmail(t *testing.T) {
	v := newValidator(t)

	for _, ok := range []string{"juan@rodriguez.org", "a.b+c@sub.example.co"} {
		assert.NoError(t, v.ValidateEmail(ok), ok)
	}
	for _, bad := range []string{"invalid-email", "", "juan@rodriguez", "juan @rodriguez.org"} {
		err := v.ValidateEmail(bad)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, apperror.ErrInvalidFormat)
		assert.Equal(t, InvalidEmailMessage, apperror.MessageOf(err))
	}
}

func TestValidatePasswordCarriesConfiguredMessage(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.ValidatePassword("hunter2"))

	err := v.ValidatePassword("123")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidFormat)
	assert.Equal(t, passwordMessage, apperror.MessageOf(err))
}

func TestPatternsMatchWholeString(t *testing.T) {
	// Unanchored pattern that would find a substring match inside both candidates.
	v, err := NewPatternValidator(`[a-z]+@[a-z]+\.org`, `[0-9]{3}`, "three digits")
	require.NoError(t, err)

	assert.NoError(t, v.ValidateEmail("juan@rodriguez.org"))
	assert.Error(t, v.ValidateEmail("!!juan@rodriguez.org!!"))
	assert.NoError(t, v.ValidatePassword("123"))
	assert.Error(t, v.ValidatePassword("1234"))
	assert.Error(t, v.ValidatePassword("a123"))
}

func TestAlternationIsAnchoredAsAWhole(t *testing.T) {
	ok, err := MatchFull(`a|b`, "ab")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = MatchFull(`a|b`, "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewPatternValidatorRejectsBadConfiguration(t *testing.T) {
	tests := []struct {
		name                     string
		email, password, message string
	}{
		{"blank email pattern", "", passwordPattern, passwordMessage},
		{"whitespace password pattern", emailPattern, "   ", passwordMessage},
		{"uncompilable pattern", `([a-z`, passwordPattern, passwordMessage},
		{"blank message", emailPattern, passwordPattern, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewPatternValidator(tt.email, tt.password, tt.message)
			assert.Nil(t, v)
			assert.ErrorIs(t, err, apperror.ErrConfiguration)
		})
	}
}

func TestMatchFullRejectsBlankPattern(t *testing.T) {
	ok, err := MatchFull("", "anything")
	assert.False(t, ok)
	assert.ErrorIs(t, err, apperror.ErrConfiguration)
}
