// internal/app/notify/notify.go

// Package notify delivers lifecycle-event notifications to users. The
// lifecycle services emit through the Dispatcher interface; delivery
// transport beyond persistence (email, push) plugs in behind it.
//
// Dispatch failures never surface to the caller: a lifecycle transition that
// committed must not be reported as failed because its notification could
// not be written.
package notify

import (
	"context"

	"github.com/dalemusser/internhub/internal/app/store/notifications"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Dispatcher receives notifications produced by lifecycle transitions.
type Dispatcher interface {
	Notify(ctx context.Context, n models.Notification)
}

// NewCorrelationID returns an opaque ID that groups the notifications
// emitted by one lifecycle transition.
func NewCorrelationID() string {
	return uuid.NewString()
}

// StoreDispatcher persists notifications for in-app delivery.
type StoreDispatcher struct {
	store *notificationstore.Store
	log   *zap.Logger
}

// NewStoreDispatcher returns a Dispatcher backed by the notifications
// collection.
func NewStoreDispatcher(store *notificationstore.Store, log *zap.Logger) *StoreDispatcher {
	return &StoreDispatcher{store: store, log: log}
}

func (d *StoreDispatcher) Notify(ctx context.Context, n models.Notification) {
	if n.RecipientUserID.IsZero() {
		return
	}
	if _, err := d.store.Insert(ctx, n); err != nil {
		d.log.Error("notification dispatch failed",
			zap.Error(err),
			zap.String("event_type", n.EventType),
			zap.String("recipient", n.RecipientUserID.Hex()),
		)
	}
}

// Nop discards all notifications. Useful in tests that do not assert on
// notification output.
type Nop struct{}

func (Nop) Notify(context.Context, models.Notification) {}

// Recorder captures notifications in memory for test assertions. Not safe
// for concurrent use.
type Recorder struct {
	Sent []models.Notification
}

func (r *Recorder) Notify(_ context.Context, n models.Notification) {
	r.Sent = append(r.Sent, n)
}

// SentTo returns the captured notifications addressed to userID.
func (r *Recorder) SentTo(userID primitive.ObjectID) []models.Notification {
	var out []models.Notification
	for _, n := range r.Sent {
		if n.RecipientUserID == userID {
			out = append(out, n)
		}
	}
	return out
}
