package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"
)

var ErrContactValidation = errors.New("contact form validation error")

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// ContactService relays the public contact form to the store mailbox.
type ContactService interface {
	Send(ctx context.Context, req ContactRequest) error
}

type contactService struct {
	notifier notify.Notifier
}

func NewContactService(notifier notify.Notifier) ContactService {
	return &contactService{notifier: notifier}
}

func (s *contactService) Send(ctx context.Context, req ContactRequest) error {
	name := utils.SanitizeInput(strings.TrimSpace(req.Name))
	if !utils.IsValidName(name) {
		return fmt.Errorf("%w: name must be at least 2 characters", ErrContactValidation)
	}
	email := strings.TrimSpace(req.Email)
	if !utils.IsValidEmail(email) {
		return fmt.Errorf("%w: invalid email", ErrContactValidation)
	}
	message := utils.SanitizeInput(strings.TrimSpace(req.Message))
	if message == "" {
		return fmt.Errorf("%w: message is required", ErrContactValidation)
	}
	subject := utils.SanitizeInput(strings.TrimSpace(req.Subject))
	if subject == "" {
		subject = "Contact"
	}

	nctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	return notifyErr(nctx, s.notifier.ContactForm(nctx, notify.ContactForm{
		FromName:  name,
		FromEmail: email,
		Subject:   subject,
		Message:   message,
	}))
}
