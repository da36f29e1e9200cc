// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle event types carried on notifications.
const (
	EventOrganizationApproved     = "organization_approved"
	EventOrganizationRejected     = "organization_rejected"
	EventOrganizationSuspended    = "organization_suspended"
	EventDomainVerified           = "domain_verified"
	EventDomainUnverified         = "domain_unverified"
	EventApplicationReceived      = "application_received"
	EventApplicationApproved      = "application_approved"
	EventApplicationRejected      = "application_rejected"
	EventInterviewScheduled       = "interview_scheduled"
	EventInternshipStatusChanged  = "internship_status_changed"
	EventProgressReminder         = "progress_reminder"
)

// Notification is a user-facing message produced from a lifecycle event.
// Delivery transport (email, in-app rendering) is the boundary's concern.
type Notification struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Nanoid          string             `bson:"nanoid" json:"nanoid"`
	RecipientUserID primitive.ObjectID `bson:"recipient_user_id" json:"recipient_user_id"`
	EventType       string             `bson:"event_type" json:"event_type"`
	Title           string             `bson:"title" json:"title"`
	Message         string             `bson:"message" json:"message"`
	Read            bool               `bson:"read" json:"read"`

	// CorrelationID groups the notifications emitted by one lifecycle
	// transition.
	CorrelationID string `bson:"correlation_id,omitempty" json:"correlation_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
