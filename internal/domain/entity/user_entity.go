package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxTokenLength bounds the stored registration token.
const MaxTokenLength = 500

// User is the aggregate root for the registration domain. It owns its Phones;
// both are persisted and loaded as one unit.
//
// Password is stored exactly as submitted.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Password  string
	Created   time.Time
	Modified  time.Time
	LastLogin time.Time
	Token     string
	IsActive  bool
	Phones    []Phone
}

// Phone is owned by exactly one User and refers back to it by key.
type Phone struct {
	Number      string
	CityCode    string
	CountryCode string
	UserID      uuid.UUID
}

// PhoneInput is the raw phone data a registration carries.
type PhoneInput struct {
	Number      string
	CityCode    string
	CountryCode string
}

type UserOption func(*User)

// WithActive overrides the default active flag.
func WithActive(active bool) UserOption {
	return func(u *User) { u.IsActive = active }
}

// NewUser builds an unsaved aggregate. Timestamps stay zero until a
// repository saves it.
func NewUser(id uuid.UUID, name, email, password, token string, phones []PhoneInput, opts ...UserOption) *User {
	u := &User{
		ID:       id,
		Name:     name,
		Email:    email,
		Password: password,
		Token:    token,
		IsActive: true,
		Phones:   make([]Phone, 0, len(phones)),
	}
	for _, p := range phones {
		u.AddPhone(Phone{Number: p.Number, CityCode: p.CityCode, CountryCode: p.CountryCode})
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// AddPhone attaches p to u, overwriting any previous owner.
func (u *User) AddPhone(p Phone) {
	p.UserID = u.ID
	u.Phones = append(u.Phones, p)
}

// IsNew reports whether the aggregate has never been saved.
func (u *User) IsNew() bool { return u.Created.IsZero() }

// MarkCreated stamps all lifecycle timestamps with the same instant.
// Repositories call it on first save.
func (u *User) MarkCreated(now time.Time) {
	u.Created = now
	u.Modified = now
	u.LastLogin = now
}

// MarkModified is called by repositories on every save after the first.
func (u *User) MarkModified(now time.Time) {
	u.Modified = now
}

// CheckPersistable reports what would make the aggregate unsafe to store.
func (u *User) CheckPersistable() error {
	switch {
	case u.ID == uuid.Nil:
		return ErrMissingID
	case strings.TrimSpace(u.Email) == "":
		return ErrMissingEmail
	case u.Token == "":
		return ErrMissingToken
	case len(u.Token) > MaxTokenLength:
		return ErrTokenTooLong
	}
	for _, p := range u.Phones {
		if strings.TrimSpace(p.Number) == "" || strings.TrimSpace(p.CityCode) == "" || strings.TrimSpace(p.CountryCode) == "" {
			return ErrBlankPhoneField
		}
		if p.UserID != u.ID {
			return ErrForeignPhone
		}
	}
	return nil
}

// Clone returns a deep copy so stores never share phone slices with callers.
func (u *User) Clone() *User {
	c := *u
	c.Phones = append([]Phone(nil), u.Phones...)
	if c.Phones == nil {
		c.Phones = []Phone{}
	}
	return &c
}
