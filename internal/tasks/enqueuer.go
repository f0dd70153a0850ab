package tasks

import (
	"github.com/hibiken/asynq"
	"github.com/mailsense/mailsense/internal/auth"
)

// Enqueuer hands account emails to the asynq queue. It satisfies
// auth.EmailEnqueuer so the auth service never touches asynq directly.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueVerificationEmail(email, token string) error {
	task, err := NewVerificationEmailTask(EmailPayload{Email: email, Token: token})
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task)
	return err
}

func (e *Enqueuer) EnqueuePasswordResetEmail(email, token string) error {
	task, err := NewPasswordResetEmailTask(EmailPayload{Email: email, Token: token})
	if err != nil {
		return err
	}
	_, err = e.client.Enqueue(task)
	return err
}

var _ auth.EmailEnqueuer = (*Enqueuer)(nil)
