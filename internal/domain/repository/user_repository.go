package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
)

var ErrNotFound = errors.New("user not found")

// UserRepository persists user aggregates. Implementations must
//   - call MarkCreated on the first Save of a user and MarkModified on later ones,
//   - write the user and its phones atomically,
//   - enforce case-insensitive email uniqueness themselves and report a
//     violation as an apperror.DuplicateIdentity error.
type UserRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, u *entity.User) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
