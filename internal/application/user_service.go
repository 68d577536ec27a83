package application

import (
	"context"
	"expvar"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	repo "github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/pkg/apperror"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

const (
	MsgEmailRegistered = "email already registered"
	MsgUnexpected      = "unexpected error"
)

var (
	registrationsTotal    = expvar.NewInt("registrations_total")
	registrationsRejected = expvar.NewInt("registrations_rejected")
)

// WelcomeSender is notified after a user has been stored.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, to, name string, registeredAt time.Time) error
}

type Service struct {
	Repo      repo.UserRepository
	Validator *validation.PatternValidator
	JWT       *helpers.JWTManager
	Logger    *logrus.Logger

	// Welcome is optional; delivery failures are logged and never fail a registration.
	Welcome WelcomeSender

	NewID func() uuid.UUID
}

func NewService(repo repo.UserRepository, validator *validation.PatternValidator, jwt *helpers.JWTManager, logger *logrus.Logger) *Service {
	return &Service{
		Repo:      repo,
		Validator: validator,
		JWT:       jwt,
		Logger:    logger,
		NewID:     uuid.New,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phones   []entity.PhoneInput
}

// UserView is the public projection of a stored user. It never carries the
// name, email, password or phones.
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
	LastLogin time.Time `json:"last_login"`
	Token     string    `json:"token"`
	IsActive  bool      `json:"isactive"`
}

func ToUserView(u *entity.User) UserView {
	return UserView{
		ID:        u.ID,
		Created:   u.Created,
		Modified:  u.Modified,
		LastLogin: u.LastLogin,
		Token:     u.Token,
		IsActive:  u.IsActive,
	}
}

// Register validates the input, rejects known emails, issues a token and
// stores the new user with its phones.
//
// The ExistsByEmail check is only a fast path: the repository's own
// uniqueness constraint decides, and a DuplicateIdentity from Save is
// returned as is.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	if err := s.Validator.ValidateEmail(in.Email); err != nil {
		registrationsRejected.Add(1)
		return nil, err
	}
	if err := s.Validator.ValidatePassword(in.Password); err != nil {
		registrationsRejected.Add(1)
		return nil, err
	}

	exists, err := s.Repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.unexpected("check email", err)
	}
	if exists {
		registrationsRejected.Add(1)
		return nil, apperror.New(apperror.DuplicateIdentity, MsgEmailRegistered)
	}

	id := s.NewID()
	token, err := s.JWT.Issue(in.Email, id)
	if err != nil {
		return nil, s.unexpected("issue token", err)
	}

	u := entity.NewUser(id, in.Name, in.Email, in.Password, token, in.Phones)
	saved, err := s.Repo.Save(ctx, u)
	if err != nil {
		if apperror.KindOf(err) == apperror.DuplicateIdentity {
			registrationsRejected.Add(1)
			return nil, err
		}
		return nil, s.unexpected("save user", err)
	}

	registrationsTotal.Add(1)
	if s.Logger != nil {
		helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": saved.ID.String(), "phones": len(saved.Phones)})
	}
	s.sendWelcome(ctx, saved)

	view := ToUserView(saved)
	return &view, nil
}

// ListAll projects every stored user in repository order.
func (s *Service) ListAll(ctx context.Context) ([]UserView, error) {
	users, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, s.unexpected("list users", err)
	}
	out := make([]UserView, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserView(u))
	}
	return out, nil
}

func (s *Service) sendWelcome(ctx context.Context, u *entity.User) {
	if s.Welcome == nil {
		return
	}
	if err := s.Welcome.SendWelcome(ctx, u.Email, u.Name, u.Created); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID.String()).Warn("welcome email not enqueued")
	}
}

// unexpected logs err and returns it as an Unexpected apperror. Errors that
// already carry a kind other than Unexpected pass through untouched.
func (s *Service) unexpected(op string, err error) error {
	if k := apperror.KindOf(err); k != apperror.Unexpected {
		return err
	}
	if s.Logger != nil {
		helpers.LogError(s.Logger, op+" failed", err, logrus.Fields{"op": op})
	}
	return apperror.Wrap(apperror.Unexpected, op, err)
}
