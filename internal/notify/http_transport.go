package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"game_store_backend/pkg/utils"
)

// HTTPTransport POSTs JSON payloads to <baseURL>/email/<kind>.
type HTTPTransport struct {
	baseURL string
	secret  string
	client  *http.Client
}

func NewHTTPTransport(baseURL, serviceSecret string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  serviceSecret,
		client:  &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) Deliver(ctx context.Context, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/email/"+kind, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	token, err := utils.GenerateServiceToken(t.secret, time.Minute)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return fmt.Errorf("%w: status %d with unreadable body", ErrDeliveryFailed, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !reply.Success {
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, reply.Message)
	}
	return nil
}

func (t *HTTPTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
