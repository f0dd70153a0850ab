package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/mailsense/mailsense/internal/mail"
)

type Handler struct {
	mailer    mail.Mailer
	apiDomain string
	logger    *slog.Logger
}

func NewHandler(mailer mail.Mailer, apiDomain string, logger *slog.Logger) *Handler {
	return &Handler{mailer: mailer, apiDomain: apiDomain, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeVerificationEmail, h.HandleVerificationEmail)
	mux.HandleFunc(TypePasswordResetEmail, h.HandlePasswordResetEmail)
}

func (h *Handler) HandleVerificationEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling verification email payload: %w", err)
	}

	link := fmt.Sprintf("%s/api/v1/users/verify?token=%s", h.apiDomain, payload.Token)
	body := fmt.Sprintf("Please verify your email by clicking the following link: %s", link)

	if err := h.mailer.Send(payload.Email, "Verify your email", body); err != nil {
		h.logger.Error("sending verification email", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("verification email sent", "email", payload.Email)
	return nil
}

func (h *Handler) HandlePasswordResetEmail(ctx context.Context, t *asynq.Task) error {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling password reset payload: %w", err)
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", h.apiDomain, payload.Token)
	body := fmt.Sprintf("You requested a password reset. Use the following link to choose a new password: %s", link)

	if err := h.mailer.Send(payload.Email, "Reset your password", body); err != nil {
		h.logger.Error("sending password reset email", "email", payload.Email, "error", err)
		return err
	}

	h.logger.Info("password reset email sent", "email", payload.Email)
	return nil
}
