package container

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/application"
	repo "github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-user-registration/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
	"github.com/oksasatya/go-user-registration/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

// Container holds the components shared by the router modules and the
// command binaries. Optional infrastructure (Postgres, Redis, RabbitMQ) is
// nil when not configured.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PGPool    *pgxpool.Pool
	Redis     *redis.Client
	RabbitPub *helpers.RabbitPublisher

	JWT       *helpers.JWTManager
	Validator *validation.PatternValidator
	Repo      repo.UserRepository
	Service   *application.Service
}

// NewCore builds the registration core over repo. It fails with a
// Configuration error when a pattern does not compile or the JWT settings
// are unusable.
func NewCore(cfg *config.Config, logger *logrus.Logger, r repo.UserRepository) (*Container, error) {
	v, err := validation.NewPatternValidator(cfg.EmailPattern, cfg.PasswordPattern, cfg.PasswordMessage)
	if err != nil {
		return nil, err
	}
	jwt, err := helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	if err != nil {
		return nil, err
	}
	return &Container{
		Config:    cfg,
		Logger:    logger,
		JWT:       jwt,
		Validator: v,
		Repo:      r,
		Service:   application.NewService(r, v, jwt, logger),
	}, nil
}

// Build validates cfg, connects the configured infrastructure and wires the
// registration core. Close releases whatever was opened, also on error.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		r    repo.UserRepository
		pool *pgxpool.Pool
	)
	switch cfg.Store {
	case config.StoreMemory:
		logger.Warn("using in-memory user store; registrations are lost on restart")
		r = memory.NewUserRepository()
	default:
		var err error
		pool, err = pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolConfig{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, err
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, err
		}
		r = pginfra.NewUserRepository(pool)
	}

	c, err := NewCore(cfg, logger, r)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}
	c.PGPool = pool

	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.Redis = rdb
	} else if cfg.SignUpRateLimit > 0 {
		logger.Warn("REDIS_ADDR not set; sign-up rate limiting disabled")
	}

	if cfg.MailSendEnabled {
		if cfg.RabbitMQURL == "" {
			c.Close()
			return nil, errors.New("MAIL_SEND_ENABLED requires RABBITMQ_URL")
		}
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.RabbitPub = pub
		c.Service.Welcome = mailer.NewWelcomeQueue(pub, mailtpl.Brand{
			AppName:     cfg.AppName,
			CompanyName: cfg.CompanyName,
			SupportURL:  cfg.SupportURL,
		})
	}

	return c, nil
}

func (c *Container) Close() {
	if c == nil {
		return
	}
	c.RabbitPub.Close()
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
