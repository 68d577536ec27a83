package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

func TestUserRepositoryImplementsInterface(t *testing.T) {
	var _ repository.UserRepository = (*UserRepository)(nil)
	assert.NotNil(t, NewUserRepository(nil))
}

func TestIsEmailConflict(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: emailUniqueKey}

	assert.True(t, isEmailConflict(dup))
	assert.True(t, isEmailConflict(fmt.Errorf("insert user: %w", dup)))
	assert.False(t, isEmailConflict(&pgconn.PgError{Code: uniqueViolation, ConstraintName: "users_pkey"}))
	assert.False(t, isEmailConflict(&pgconn.PgError{Code: "23503", ConstraintName: emailUniqueKey}))
	assert.False(t, isEmailConflict(errors.New("connection refused")))
}
