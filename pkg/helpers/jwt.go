package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/oksasatya/go-user-registration/pkg/apperror"
)

// MinSecretBytes is the smallest key accepted for HS512.
const MinSecretBytes = 64

var signingMethod = jwt.SigningMethodHS512

// JWTManager issues and verifies the registration token handed back to new
// users. Construct it with NewJWTManager so key strength is checked up front.
type JWTManager struct {
	secret []byte
	ttl    time.Duration

	// Now is the clock used for iat/exp and for expiry checks.
	Now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) (*JWTManager, error) {
	if len(secret) < MinSecretBytes {
		return nil, apperror.New(apperror.Configuration, "jwt secret must be at least 64 bytes for HS512")
	}
	if ttl <= 0 {
		return nil, apperror.New(apperror.Configuration, "jwt expiration must be positive")
	}
	return &JWTManager{secret: []byte(secret), ttl: ttl, Now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (m *JWTManager) TTL() time.Duration { return m.ttl }

// Claims carries the subject email in "sub" and the user id in "uid".
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func (m *JWTManager) Issue(email string, userID uuid.UUID) (string, error) {
	now := m.Now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}
	s, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", apperror.Wrap(apperror.Unexpected, "sign token", err)
	}
	return s, nil
}

// Verify reports whether token is well formed, signed with this manager's
// secret and not expired. It never returns the underlying parse error.
func (m *JWTManager) Verify(token string) bool {
	_, err := m.parse(token)
	return err == nil
}

// EmailOf returns the subject email of a verified token.
func (m *JWTManager) EmailOf(token string) (string, error) {
	claims, err := m.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", apperror.New(apperror.MalformedToken, "token has no subject")
	}
	return claims.Subject, nil
}

// UserIDOf returns the user id carried by a verified token.
func (m *JWTManager) UserIDOf(token string) (uuid.UUID, error) {
	claims, err := m.parse(token)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, apperror.Wrap(apperror.MalformedToken, "token user id is not a uuid", err)
	}
	return id, nil
}

func (m *JWTManager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithTimeFunc(m.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Wrap(apperror.MalformedToken, "token has expired", err)
		}
		return nil, apperror.Wrap(apperror.MalformedToken, "invalid token", err)
	}
	if !tkn.Valid {
		return nil, apperror.New(apperror.MalformedToken, "invalid token")
	}
	return claims, nil
}
