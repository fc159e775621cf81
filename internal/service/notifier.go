package service

import (
	"context"

	"github.com/blackicons2020/skillskonnect-sub001/internal/metrics"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/log"
	"github.com/blackicons2020/skillskonnect-sub001/pkg/pubsub"
)

// Notifier publishes realtime notifications to users' notify channels.
// Failures are logged and never fail the calling operation.
type Notifier struct {
	publisher pubsub.Publisher
}

// NewNotifier creates a notifier. A nil publisher disables notifications.
func NewNotifier(publisher pubsub.Publisher) *Notifier {
	return &Notifier{publisher: publisher}
}

// Notify sends an event of eventType to each user in userIDs.
func (n *Notifier) Notify(ctx context.Context, eventType string, payload interface{}, userIDs ...string) {
	if n == nil || n.publisher == nil {
		return
	}
	l := log.Ctx(ctx)

	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		event, err := pubsub.NewEvent(eventType, userID, payload)
		if err != nil {
			l.Error().Err(err).Str("event_type", eventType).Msg("failed to build notification")
			metrics.RecordNotification(eventType, false)
			continue
		}
		if err := n.publisher.Publish(ctx, pubsub.UserNotifyChannel(userID), event); err != nil {
			l.Warn().Err(err).Str("event_type", eventType).Str(log.FieldUserID, userID).Msg("failed to publish notification")
			metrics.RecordNotification(eventType, false)
			continue
		}
		metrics.RecordNotification(eventType, true)
	}
}
