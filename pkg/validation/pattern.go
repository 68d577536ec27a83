package validation

import (
	"regexp"
	"strings"

	"github.com/oksasatya/go-user-registration/pkg/apperror"
)

// InvalidEmailMessage is reported when an email does not match its pattern.
const InvalidEmailMessage = "invalid email format"

// PatternValidator checks registration input against configured patterns.
// Patterns must match the whole candidate, not a substring of it.
type PatternValidator struct {
	email           *regexp.Regexp
	password        *regexp.Regexp
	passwordMessage string
}

func NewPatternValidator(emailPattern, passwordPattern, passwordMessage string) (*PatternValidator, error) {
	email, err := compileFull("email", emailPattern)
	if err != nil {
		return nil, err
	}
	password, err := compileFull("password", passwordPattern)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(passwordMessage) == "" {
		return nil, apperror.New(apperror.Configuration, "password failure message is required")
	}
	return &PatternValidator{email: email, password: password, passwordMessage: passwordMessage}, nil
}

func (v *PatternValidator) ValidateEmail(candidate string) error {
	if !v.email.MatchString(candidate) {
		return apperror.New(apperror.InvalidFormat, InvalidEmailMessage)
	}
	return nil
}

func (v *PatternValidator) ValidatePassword(candidate string) error {
	if !v.password.MatchString(candidate) {
		return apperror.New(apperror.InvalidFormat, v.passwordMessage)
	}
	return nil
}

// MatchFull compiles pattern and reports whether it matches all of candidate.
func MatchFull(pattern, candidate string) (bool, error) {
	re, err := compileFull("", pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(candidate), nil
}

func compileFull(name, pattern string) (*regexp.Regexp, error) {
	label := "pattern"
	if name != "" {
		label = name + " pattern"
	}
	if strings.TrimSpace(pattern) == "" {
		return nil, apperror.New(apperror.Configuration, label+" is required")
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, apperror.Wrap(apperror.Configuration, label+" does not compile", err)
	}
	return re, nil
}
