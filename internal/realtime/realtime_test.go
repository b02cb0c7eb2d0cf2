package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"game_store_backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	events []models.ChangeEvent
}

func (s *recordingSink) Publish(_ context.Context, ev models.ChangeEvent) error {
	s.events = append(s.events, ev)
	return nil
}

func TestListener_HandlePayload(t *testing.T) {
	sink := &recordingSink{}
	l := NewListener("", nil, sink)

	l.HandlePayload(context.Background(), `{"table":"consoles","op":"UPDATE","id":3}`)
	l.HandlePayload(context.Background(), `not json`)
	l.HandlePayload(context.Background(), `{"op":"INSERT"}`)

	require.Len(t, sink.events, 1)
	assert.Equal(t, "consoles", sink.events[0].Table)
	assert.Equal(t, int64(3), sink.events[0].ID)
	assert.NotZero(t, sink.events[0].TsMs)
}

func dial(t *testing.T, hub *Hub, tables string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, strings.Split(r.URL.Query().Get("tables"), ","))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?tables=" + tables
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() > 0 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestHub_DeliversSubscribedTablesOnly(t *testing.T) {
	hub := NewHub(nil)
	conn := dial(t, hub, "gaming_sessions")

	hub.Broadcast(models.ChangeEvent{Table: "products", Op: "UPDATE", ID: 1})
	hub.Broadcast(models.ChangeEvent{Table: "gaming_sessions", Op: "INSERT", ID: 9, TsMs: 42})

	var ev models.ChangeEvent
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "gaming_sessions", ev.Table)
	assert.Equal(t, int64(9), ev.ID)
	assert.Equal(t, int64(42), ev.TsMs)
}

func TestHub_EmptySubscriptionReceivesAll(t *testing.T) {
	hub := NewHub([]string{"http://localhost:5173"})
	conn := dial(t, hub, "")

	require.NoError(t, hub.Publish(context.Background(), models.ChangeEvent{Table: "orders", Op: "INSERT", ID: 5}))

	var ev models.ChangeEvent
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "orders", ev.Table)
}
