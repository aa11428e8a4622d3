package notify

import (
	"context"
	"encoding/json"

	"campus-popcorn-api/store"

	"github.com/rs/zerolog"
)

// Notification mirrors the web-push payload shape used by the PWA client.
type Notification struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Notifier dispatches a notification to a user. Delivery is best-effort:
// callers log the returned error and never propagate it.
type Notifier interface {
	Send(ctx context.Context, userID string, n Notification) error
}

// Push resolves the user's stored push subscriptions and hands the payload to
// the delivery channel. The actual web-push POST lives in the push relay
// outside this service; here the payload is recorded per endpoint.
type Push struct {
	users *store.UserRepo
	log   zerolog.Logger
}

func NewPush(users *store.UserRepo, log zerolog.Logger) *Push {
	return &Push{users: users, log: log}
}

func (p *Push) Send(ctx context.Context, userID string, n Notification) error {
	if userID == "" {
		return nil // anonymous orders have no push target
	}
	subs, err := p.users.SubscriptionsByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		p.log.Debug().Str("user_id", userID).Msg("no push subscriptions")
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		p.log.Info().
			Str("user_id", userID).
			Str("endpoint", sub.Endpoint).
			RawJSON("payload", payload).
			Msg("push notification dispatched")
	}
	return nil
}

// Nop discards notifications — used in tests.
type Nop struct{}

func (Nop) Send(ctx context.Context, userID string, n Notification) error { return nil }
