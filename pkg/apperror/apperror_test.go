package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := New(DuplicateIdentity, "email already registered")

	assert.ErrorIs(t, err, ErrDuplicateIdentity)
	assert.NotErrorIs(t, err, ErrInvalidFormat)
	assert.Equal(t, DuplicateIdentity, KindOf(err))
	assert.Equal(t, "email already registered", MessageOf(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(InvalidFormat, "invalid email format")
	wrapped := fmt.Errorf("register: %w", inner)

	assert.ErrorIs(t, wrapped, ErrInvalidFormat)
	assert.Equal(t, InvalidFormat, KindOf(wrapped))
	assert.Equal(t, "invalid email format", MessageOf(wrapped))
}

func TestForeignErrorsAreUnexpected(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, Unexpected, KindOf(err))
	assert.Empty(t, MessageOf(err))
}

func TestErrorString(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, "save user: boom", Wrap(Unexpected, "save user", cause).Error())
	assert.Equal(t, "boom", (&Error{Kind: Unexpected, Err: cause}).Error())
	assert.Equal(t, "malformed_token", (&Error{Kind: MalformedToken}).Error())
	assert.ErrorIs(t, Wrap(Unexpected, "save user", cause), cause)
}
