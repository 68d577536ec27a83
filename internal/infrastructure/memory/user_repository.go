// Package memory holds an in-process UserRepository used by tests and by
// the server when no database is configured.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/pkg/apperror"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entity.User
	byEmail map[string]uuid.UUID
	order   []uuid.UUID

	now func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]*entity.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func emailKey(email string) string { return strings.ToLower(email) }

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[emailKey(email)]
	return ok, nil
}

// Save inserts or updates u. The uniqueness check and the write happen under
// one lock, so concurrent registrations of the same email cannot both succeed.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := u.CheckPersistable(); err != nil {
		return nil, apperror.Wrap(apperror.Unexpected, "user is not persistable", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(u.Email)
	if owner, ok := r.byEmail[key]; ok && owner != u.ID {
		return nil, apperror.New(apperror.DuplicateIdentity, "email already registered")
	}

	now := r.now().UTC()
	stored := u.Clone()
	if prev, ok := r.byID[u.ID]; ok {
		stored.Created = prev.Created
		stored.LastLogin = prev.LastLogin
		stored.MarkModified(now)
		delete(r.byEmail, emailKey(prev.Email))
	} else {
		stored.MarkCreated(now)
		r.order = append(r.order, u.ID)
	}

	r.byID[stored.ID] = stored
	r.byEmail[key] = stored.ID
	return stored.Clone(), nil
}

// FindAll returns users in insertion order.
func (r *UserRepository) FindAll(_ context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Clone())
	}
	return out, nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u.Clone(), nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
