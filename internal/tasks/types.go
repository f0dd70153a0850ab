package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeVerificationEmail  = "email:verification"
	TypePasswordResetEmail = "email:password_reset"
)

const mailQueue = "mail"

// EmailPayload carries the recipient and the single-use token embedded in
// the emailed link.
type EmailPayload struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

func NewVerificationEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeVerificationEmail, data, asynq.Queue(mailQueue)), nil
}

func NewPasswordResetEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePasswordResetEmail, data, asynq.Queue(mailQueue)), nil
}
