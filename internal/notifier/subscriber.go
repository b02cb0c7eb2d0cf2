package notifier

import (
	"context"
	"strings"
	"time"

	"game_store_backend/internal/notify"
	"game_store_backend/pkg/utils"

	"github.com/nats-io/nats.go"
)

// QueueGroup lets several notifier instances share the NATS intake.
const QueueGroup = "notifier"

const natsDispatchTimeout = 30 * time.Second

// Subscribe consumes notifications.<kind> messages until the subscription
// is drained. Messages are fire-and-forget, so failures are only logged.
func Subscribe(nc *nats.Conn, svc *Service) (*nats.Subscription, error) {
	return nc.QueueSubscribe(notify.SubjectPrefix+"*", QueueGroup, func(m *nats.Msg) {
		kind := strings.TrimPrefix(m.Subject, notify.SubjectPrefix)
		ctx, cancel := context.WithTimeout(context.Background(), natsDispatchTimeout)
		defer cancel()
		if err := svc.Dispatch(ctx, kind, "nats", m.Data); err != nil {
			utils.LogWarn(err, "notifier: nats message not delivered", map[string]interface{}{"kind": kind})
		}
	})
}
