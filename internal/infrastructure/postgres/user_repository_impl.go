package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/pkg/apperror"
)

const (
	uniqueViolation = "23505"
	emailUniqueKey  = "users_email_lower_key"
)

type UserRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, now: time.Now}
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists by email: %w", err)
	}
	return exists, nil
}

// Save writes the user row and replaces its phones in one transaction. The
// unique index on lower(email) is the authority on duplicates.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := u.CheckPersistable(); err != nil {
		return nil, apperror.Wrap(apperror.Unexpected, "user is not persistable", err)
	}
	stored := u.Clone()
	// timestamptz keeps microseconds
	now := r.now().UTC().Truncate(time.Microsecond)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var created, lastLogin time.Time
		err := tx.QueryRow(ctx, `
			SELECT created, last_login FROM users WHERE id = $1 FOR UPDATE
		`, stored.ID).Scan(&created, &lastLogin)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			stored.MarkCreated(now)
			if _, err := tx.Exec(ctx, `
				INSERT INTO users (id, name, email, password, created, modified, last_login, token, is_active)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, stored.ID, stored.Name, stored.Email, stored.Password,
				stored.Created, stored.Modified, stored.LastLogin, stored.Token, stored.IsActive); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			stored.Created = created.UTC()
			stored.LastLogin = lastLogin.UTC()
			stored.MarkModified(now)
			if _, err := tx.Exec(ctx, `
				UPDATE users
				SET name = $1, email = $2, password = $3, modified = $4, token = $5, is_active = $6
				WHERE id = $7
			`, stored.Name, stored.Email, stored.Password, stored.Modified, stored.Token, stored.IsActive, stored.ID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `DELETE FROM phones WHERE user_id = $1`, stored.ID); err != nil {
				return err
			}
		}
		return insertPhones(ctx, tx, stored.Phones)
	})
	if err != nil {
		if isEmailConflict(err) {
			return nil, apperror.New(apperror.DuplicateIdentity, "email already registered")
		}
		return nil, fmt.Errorf("save user: %w", err)
	}
	return stored, nil
}

func insertPhones(ctx context.Context, tx pgx.Tx, phones []entity.Phone) error {
	if len(phones) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range phones {
		batch.Queue(`
			INSERT INTO phones (user_id, number, city_code, country_code)
			VALUES ($1, $2, $3, $4)
		`, p.UserID, p.Number, p.CityCode, p.CountryCode)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// FindAll returns users ordered by creation time.
func (r *UserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, password, created, modified, last_login, token, is_active
		FROM users
		ORDER BY created, id
	`)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}

	phones, err := r.phonesByUser(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Phones = append(u.Phones, phones[u.ID]...)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, password, created, modified, last_login, token, is_active
		FROM users
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	phones, err := r.phonesByUser(ctx, &id)
	if err != nil {
		return nil, err
	}
	u.Phones = append(u.Phones, phones[id]...)
	return u, nil
}

// phonesByUser loads phones for one user, or for everyone when id is nil.
func (r *UserRepository) phonesByUser(ctx context.Context, id *uuid.UUID) (map[uuid.UUID][]entity.Phone, error) {
	query := `SELECT user_id, number, city_code, country_code FROM phones`
	var args []any
	if id != nil {
		query += ` WHERE user_id = $1`
		args = append(args, *id)
	}
	query += ` ORDER BY user_id, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find phones: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]entity.Phone)
	for rows.Next() {
		var p entity.Phone
		if err := rows.Scan(&p.UserID, &p.Number, &p.CityCode, &p.CountryCode); err != nil {
			return nil, fmt.Errorf("scan phone: %w", err)
		}
		out[p.UserID] = append(out[p.UserID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find phones: %w", err)
	}
	return out, nil
}

func scanUser(row pgx.CollectableRow) (*entity.User, error) {
	u := &entity.User{Phones: []entity.Phone{}}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password,
		&u.Created, &u.Modified, &u.LastLogin, &u.Token, &u.IsActive); err != nil {
		return nil, err
	}
	u.Created = u.Created.UTC()
	u.Modified = u.Modified.UTC()
	u.LastLogin = u.LastLogin.UTC()
	return u, nil
}

func isEmailConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == emailUniqueKey
}

var _ repository.UserRepository = (*UserRepository)(nil)
