// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/internhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Registry controls logging for organization registration and review
	// events. Values: "all" (MongoDB + zap), "db" (MongoDB only),
	// "log" (zap only), "off" (disabled)
	Registry string
	// Placement controls logging for application and internship lifecycle
	// events. Same values as Registry.
	Placement string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.SubjectID != nil {
		fields = append(fields, zap.String("subject_id", event.SubjectID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.OrganizationID != nil {
		fields = append(fields, zap.String("organization_id", event.OrganizationID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryRegistry:
		setting = l.config.Registry
	case audit.CategoryPlacement:
		setting = l.config.Placement
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Registry Events ---

// OrgRegistered logs a new organization registration.
func (l *Logger) OrgRegistered(ctx context.Context, orgID, registrantID primitive.ObjectID, kind, name string) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryRegistry,
		EventType:      audit.EventOrgRegistered,
		OrganizationID: &orgID,
		ActorID:        &registrantID,
		Success:        true,
		Details: map[string]string{
			"kind": kind,
			"name": name,
		},
	})
}

// OrgReviewed logs an official's decision on a registration.
func (l *Logger) OrgReviewed(ctx context.Context, orgID, officialID primitive.ObjectID, eventType, notes string) {
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryRegistry,
		EventType:      eventType,
		OrganizationID: &orgID,
		ActorID:        &officialID,
		Success:        true,
		Details: map[string]string{
			"notes": notes,
		},
	})
}

// DomainVerification logs a domain verification grant or revocation.
func (l *Logger) DomainVerification(ctx context.Context, orgID, officialID primitive.ObjectID, verified bool, domain string) {
	eventType := audit.EventDomainVerified
	if !verified {
		eventType = audit.EventDomainRevoked
	}
	l.Log(ctx, audit.Event{
		Category:       audit.CategoryRegistry,
		EventType:      eventType,
		OrganizationID: &orgID,
		ActorID:        &officialID,
		Success:        true,
		Details: map[string]string{
			"domain": domain,
		},
	})
}

// --- Placement Events ---

// ApplicationEvent logs a lifecycle transition on an application. actorID is
// the profile that drove the transition (the student for submit/withdraw,
// the mentor for decisions).
func (l *Logger) ApplicationEvent(ctx context.Context, eventType string, applicationID, studentID, actorID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryPlacement,
		EventType: eventType,
		SubjectID: &studentID,
		ActorID:   &actorID,
		Success:   true,
		Details: map[string]string{
			"application_id": applicationID.Hex(),
		},
	})
}

// ApplicationDenied logs a transition that was attempted but refused, for
// example an approval that lost the capacity race.
func (l *Logger) ApplicationDenied(ctx context.Context, eventType string, applicationID, studentID, actorID primitive.ObjectID, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryPlacement,
		EventType:     eventType,
		SubjectID:     &studentID,
		ActorID:       &actorID,
		Success:       false,
		FailureReason: reason,
		Details: map[string]string{
			"application_id": applicationID.Hex(),
		},
	})
}

// InternshipEvent logs a lifecycle event on an internship.
func (l *Logger) InternshipEvent(ctx context.Context, eventType string, internshipID, studentID, actorID primitive.ObjectID, details map[string]string) {
	if details == nil {
		details = map[string]string{}
	}
	details["internship_id"] = internshipID.Hex()
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryPlacement,
		EventType: eventType,
		SubjectID: &studentID,
		ActorID:   &actorID,
		Success:   true,
		Details:   details,
	})
}
