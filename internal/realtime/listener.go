package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"game_store_backend/internal/cache"
	"game_store_backend/internal/models"
	"game_store_backend/pkg/utils"

	"github.com/jackc/pgx/v5"
)

// Channel is the pg_notify channel written by the table triggers.
const Channel = "table_changes"

// Sink receives every decoded change event.
type Sink interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// Listener holds one dedicated pgx connection in LISTEN mode. Each
// notification invalidates the table's cached queries and is handed to sink.
type Listener struct {
	dsn   string
	cache *cache.Cache
	sink  Sink
}

func NewListener(dsn string, c *cache.Cache, sink Sink) *Listener {
	return &Listener{dsn: dsn, cache: c, sink: sink}
}

// Run listens until ctx is cancelled, reconnecting with capped backoff.
func (l *Listener) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		utils.LogWarn(err, "realtime: listener disconnected", map[string]interface{}{"retry_in": backoff.String()})

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	utils.LogInfo("Realtime listener started", map[string]interface{}{"channel": Channel})

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.HandlePayload(ctx, n.Payload)
	}
}

// HandlePayload decodes one notification payload and fans it out.
func (l *Listener) HandlePayload(ctx context.Context, payload string) {
	var ev models.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil || ev.Table == "" {
		utils.LogWarn(err, "realtime: ignoring malformed notification", map[string]interface{}{"payload": payload})
		return
	}
	ev.TsMs = time.Now().UnixMilli()

	l.cache.Invalidate(ctx, ev.Table)
	if err := l.sink.Publish(ctx, ev); err != nil {
		utils.LogWarn(err, "realtime: publish failed", map[string]interface{}{"table": ev.Table})
	}
}
