package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"
)

var (
	ErrUnknownKind    = errors.New("unknown notification kind")
	ErrInvalidPayload = errors.New("invalid notification payload")
)

// Options configures where mail goes and how reset links are built.
type Options struct {
	StoreEmail   string
	ResetBaseURL string
}

// Service turns notification payloads into sent emails.
type Service struct {
	mailer Mailer
	log    DeliveryLog
	opts   Options
	now    func() time.Time
}

// NewService builds a Service. log may be nil.
func NewService(mailer Mailer, log DeliveryLog, opts Options) *Service {
	if log == nil {
		log = nopLog{}
	}
	return &Service{mailer: mailer, log: log, opts: opts, now: time.Now}
}

// Dispatch decodes raw as the payload for kind, renders it and sends it.
func (s *Service) Dispatch(ctx context.Context, kind, source string, raw []byte) error {
	msg, data, err := s.prepare(kind, raw)
	if err != nil {
		return err
	}
	subject, html, text, err := render(kind, data)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", kind, err)
	}
	msg.Subject, msg.HTML, msg.Text = subject, html, text

	sendErr := s.mailer.Send(ctx, msg)
	entry := Delivery{
		Kind:      kind,
		Recipient: msg.To,
		Subject:   subject,
		Source:    source,
		Success:   sendErr == nil,
		CreatedAt: s.now().UTC(),
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}
	if err := s.log.Record(ctx, entry); err != nil {
		utils.LogWarn(err, "notifier: delivery log write failed", map[string]interface{}{"kind": kind})
	}
	if sendErr != nil {
		return sendErr
	}
	utils.LogInfo("notifier: email sent", map[string]interface{}{"kind": kind, "source": source})
	return nil
}

func decode(raw []byte, dst any) error {
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

func requireEmail(addr string) error {
	if !utils.IsValidEmail(addr) {
		return fmt.Errorf("%w: invalid recipient email", ErrInvalidPayload)
	}
	return nil
}

// prepare validates the payload and picks the recipient.
func (s *Service) prepare(kind string, raw []byte) (Message, any, error) {
	switch kind {
	case notify.KindBookingConfirmation:
		var p notify.BookingConfirmation
		if err := decode(raw, &p); err != nil {
			return Message{}, nil, err
		}
		if err := requireEmail(p.ClientEmail); err != nil {
			return Message{}, nil, err
		}
		return Message{To: p.ClientEmail, ToName: p.ClientName}, p, nil

	case notify.KindContactForm:
		var p notify.ContactForm
		if err := decode(raw, &p); err != nil {
			return Message{}, nil, err
		}
		if strings.TrimSpace(p.Message) == "" {
			return Message{}, nil, fmt.Errorf("%w: message is required", ErrInvalidPayload)
		}
		return Message{To: s.opts.StoreEmail, ToName: "Game Store Zarzis"}, p, nil

	case notify.KindServiceRequest:
		var p notify.ServiceRequest
		if err := decode(raw, &p); err != nil {
			return Message{}, nil, err
		}
		if p.Status == "" {
			p.Status = "pending"
		}
		return Message{To: s.opts.StoreEmail, ToName: "Game Store Zarzis"}, p, nil

	case notify.KindSessionReceipt:
		var p notify.SessionReceipt
		if err := decode(raw, &p); err != nil {
			return Message{}, nil, err
		}
		if err := requireEmail(p.ClientEmail); err != nil {
			return Message{}, nil, err
		}
		return Message{To: p.ClientEmail, ToName: p.ClientName}, p, nil

	case notify.KindStaffInvitation:
		var p notify.StaffInvitation
		if err := decode(raw, &p); err != nil {
			return Message{}, nil, err
		}
		if err := requireEmail(p.Email); err != nil {
			return Message{}, nil, err
		}
		return Message{To: p.Email}, p, nil

	case notify.KindPasswordReset:
		var p notify.PasswordReset
		if err := decode(raw, &p); err != nil {
			return Message{}, nil, err
		}
		if err := requireEmail(p.Email); err != nil {
			return Message{}, nil, err
		}
		if p.Token == "" {
			return Message{}, nil, fmt.Errorf("%w: token is required", ErrInvalidPayload)
		}
		link := s.opts.ResetBaseURL + "?token=" + url.QueryEscape(p.Token)
		return Message{To: p.Email}, resetView{PasswordReset: p, Link: link}, nil
	}
	return Message{}, nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
