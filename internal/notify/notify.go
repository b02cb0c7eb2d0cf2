package notify

import (
	"context"
	"errors"
	"fmt"

	"game_store_backend/internal/config"
	"game_store_backend/pkg/utils"
)

var (
	// ErrDeliveryFailed is returned when the notifier answered but did not send.
	ErrDeliveryFailed = errors.New("notification delivery failed")
	// ErrUnavailable is returned when the notifier could not be reached.
	ErrUnavailable = errors.New("notification service unavailable")
)

// Transport hands one payload to the notification server.
type Transport interface {
	Deliver(ctx context.Context, kind string, payload any) error
	Close() error
}

// Notifier is what the services use to send customer and staff emails.
type Notifier interface {
	BookingConfirmation(ctx context.Context, p BookingConfirmation) error
	ContactForm(ctx context.Context, p ContactForm) error
	ServiceRequest(ctx context.Context, p ServiceRequest) error
	SessionReceipt(ctx context.Context, p SessionReceipt) error
	StaffInvitation(ctx context.Context, p StaffInvitation) error
	PasswordReset(ctx context.Context, p PasswordReset) error
}

type Client struct {
	transport Transport
}

func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// New builds the client for the configured transport.
func New(cfg config.NotifyConfig, nats config.NATSConfig, serviceSecret string) (*Client, error) {
	switch cfg.Transport {
	case "http":
		return NewClient(NewHTTPTransport(cfg.BaseURL, serviceSecret, cfg.Timeout)), nil
	case "nats":
		t, err := NewNATSTransport(nats.URL, nats.Token)
		if err != nil {
			return nil, fmt.Errorf("notify.New: %w", err)
		}
		return NewClient(t), nil
	case "none", "":
		return NewClient(LogTransport{}), nil
	}
	return nil, fmt.Errorf("notify.New: unknown transport %q", cfg.Transport)
}

func (c *Client) send(ctx context.Context, kind string, payload any) error {
	if err := c.transport.Deliver(ctx, kind, payload); err != nil {
		return fmt.Errorf("sending %s: %w", kind, err)
	}
	return nil
}

func (c *Client) BookingConfirmation(ctx context.Context, p BookingConfirmation) error {
	return c.send(ctx, KindBookingConfirmation, p)
}

func (c *Client) ContactForm(ctx context.Context, p ContactForm) error {
	return c.send(ctx, KindContactForm, p)
}

func (c *Client) ServiceRequest(ctx context.Context, p ServiceRequest) error {
	return c.send(ctx, KindServiceRequest, p)
}

func (c *Client) SessionReceipt(ctx context.Context, p SessionReceipt) error {
	return c.send(ctx, KindSessionReceipt, p)
}

func (c *Client) StaffInvitation(ctx context.Context, p StaffInvitation) error {
	return c.send(ctx, KindStaffInvitation, p)
}

func (c *Client) PasswordReset(ctx context.Context, p PasswordReset) error {
	return c.send(ctx, KindPasswordReset, p)
}

func (c *Client) Close() error {
	return c.transport.Close()
}

// LogTransport drops every notification after logging it.
type LogTransport struct{}

func (LogTransport) Deliver(ctx context.Context, kind string, payload any) error {
	utils.LogInfo("Notification dropped (transport none)", map[string]interface{}{"kind": kind})
	return nil
}

func (LogTransport) Close() error { return nil }
