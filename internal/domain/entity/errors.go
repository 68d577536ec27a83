package entity

import "errors"

var (
	ErrMissingID       = errors.New("user id is required")
	ErrMissingEmail    = errors.New("user email is required")
	ErrMissingToken    = errors.New("user token is required")
	ErrTokenTooLong    = errors.New("user token exceeds 500 characters")
	ErrBlankPhoneField = errors.New("phone number, city code and country code are required")
	ErrForeignPhone    = errors.New("phone belongs to another user")
)
