package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is prepended to the kind to form the NATS subject.
const SubjectPrefix = "notifications."

// Connect opens a NATS connection; an empty token connects anonymously.
func Connect(url, token, name string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	return nats.Connect(url, opts...)
}

// NATSTransport publishes payloads for the notifier's queue subscription.
// Delivery is fire-and-forget once the server has the message.
type NATSTransport struct {
	conn *nats.Conn
}

func NewNATSTransport(url, token string) (*NATSTransport, error) {
	conn, err := Connect(url, token, "game-store-api")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &NATSTransport{conn: conn}, nil
}

func (t *NATSTransport) Deliver(ctx context.Context, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	if err := t.conn.Publish(SubjectPrefix+kind, body); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := t.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (t *NATSTransport) Close() error {
	return t.conn.Drain()
}
