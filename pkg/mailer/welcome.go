package mailer

import (
	"context"
	"errors"
	"time"

	mailtpl "github.com/oksasatya/go-user-registration/pkg/mailer/templates"
)

// Publisher puts a JSON message on the email queue. helpers.RabbitPublisher
// satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// WelcomeQueue enqueues a welcome email for every new registration.
type WelcomeQueue struct {
	Pub   Publisher
	Brand mailtpl.Brand

	// Timeout bounds a single publish.
	Timeout time.Duration
}

func NewWelcomeQueue(pub Publisher, brand mailtpl.Brand) *WelcomeQueue {
	return &WelcomeQueue{Pub: pub, Brand: brand, Timeout: 5 * time.Second}
}

func (w *WelcomeQueue) SendWelcome(ctx context.Context, to, name string, registeredAt time.Time) error {
	if w == nil || w.Pub == nil {
		return errors.New("welcome queue has no publisher")
	}
	job := EmailJob{
		To:       to,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(w.Brand, name, to, mailtpl.WithTime(registeredAt)),
	}
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	return w.Pub.PublishJSON(ctx, job)
}
