package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/container"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/pkg/apperror"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	// the seed never sends mail
	cfg.MailSendEnabled = false
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	c, err := container.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("seed: startup failed")
	}
	defer c.Close()

	in := application.RegisterInput{
		Name:     getenv("SEED_NAME", "Demo User"),
		Email:    getenv("SEED_EMAIL", "demo@example.com"),
		Password: getenv("SEED_PASSWORD", "password123"),
		Phones:   []entity.PhoneInput{{Number: "1234567", CityCode: "1", CountryCode: "57"}},
	}

	view, err := c.Service.Register(context.Background(), in)
	switch apperror.KindOf(err) {
	case apperror.DuplicateIdentity:
		fmt.Printf("seed user %s already registered\n", in.Email)
		return
	case apperror.InvalidFormat:
		logger.WithError(err).Fatal("seed input rejected by the configured patterns")
	}
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	fmt.Printf("seeded user: id=%s email=%s token=%s\n", view.ID, in.Email, view.Token)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
