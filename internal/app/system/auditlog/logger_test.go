package auditlog_test

import (
	"testing"

	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.OrgRegistered(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "company", "Acme")
	logger.ApplicationEvent(ctx, audit.EventApplicationSubmitted,
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID())
	logger.InternshipEvent(ctx, audit.EventInternshipCreated,
		primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), nil)
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Registry:  "off",
		Placement: "off",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryRegistry,
		EventType: audit.EventOrgRegistered,
		Success:   true,
	})

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_ConfigDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Registry:  "db",
		Placement: "db",
	})

	orgID := primitive.NewObjectID()
	logger.Log(ctx, audit.Event{
		Category:       audit.CategoryRegistry,
		EventType:      audit.EventOrgRegistered,
		OrganizationID: &orgID,
		Success:        true,
	})

	events, err := store.Query(ctx, audit.QueryFilter{OrganizationID: &orgID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 event, got %d", len(events))
	}
}

// Log-only mode writes to zap but never to the collection.
func TestLogger_Log_ConfigLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Registry:  "log",
		Placement: "log",
	})

	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryPlacement,
		EventType: audit.EventApplicationSubmitted,
		Success:   true,
	})

	events, err := store.GetRecent(ctx, 10)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no stored events when config is 'log'")
	}
}

func TestLogger_CategoryFilteredByConfig(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Registry = off, Placement = db
	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Registry:  "off",
		Placement: "db",
	})

	orgID := primitive.NewObjectID()
	logger.OrgRegistered(ctx, orgID, primitive.NewObjectID(), "company", "Acme")

	studentID := primitive.NewObjectID()
	logger.ApplicationEvent(ctx, audit.EventApplicationSubmitted,
		primitive.NewObjectID(), studentID, studentID)

	registryEvents, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryRegistry})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(registryEvents) != 0 {
		t.Error("expected no registry events when registry config is 'off'")
	}

	placementEvents, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryPlacement})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(placementEvents) != 1 {
		t.Errorf("expected 1 placement event, got %d", len(placementEvents))
	}
}

func TestLogger_OrgReviewed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Registry: "db"})

	orgID := primitive.NewObjectID()
	officialID := primitive.NewObjectID()
	logger.OrgReviewed(ctx, orgID, officialID, audit.EventOrgApproved, "verified against the registry")

	events, err := store.Query(ctx, audit.QueryFilter{OrganizationID: &orgID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.EventType != audit.EventOrgApproved {
		t.Errorf("EventType: got %q, want %q", event.EventType, audit.EventOrgApproved)
	}
	if event.ActorID == nil || *event.ActorID != officialID {
		t.Error("expected ActorID to record the official")
	}
	if event.Details["notes"] != "verified against the registry" {
		t.Errorf("notes detail: got %q", event.Details["notes"])
	}
}

func TestLogger_ApplicationDenied(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Placement: "db"})

	studentID := primitive.NewObjectID()
	logger.ApplicationDenied(ctx, audit.EventApplicationApproved,
		primitive.NewObjectID(), studentID, primitive.NewObjectID(), "position is at capacity")

	events, err := store.Query(ctx, audit.QueryFilter{SubjectID: &studentID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Success {
		t.Error("expected Success to be false")
	}
	if events[0].FailureReason != "position is at capacity" {
		t.Errorf("FailureReason: got %q", events[0].FailureReason)
	}
}

func TestLogger_DomainVerification(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{Registry: "db"})

	orgID := primitive.NewObjectID()
	officialID := primitive.NewObjectID()
	logger.DomainVerification(ctx, orgID, officialID, true, "state.edu")
	logger.DomainVerification(ctx, orgID, officialID, false, "state.edu")

	granted, err := store.Query(ctx, audit.QueryFilter{
		OrganizationID: &orgID,
		EventType:      audit.EventDomainVerified,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(granted) != 1 {
		t.Errorf("verified events: got %d, want 1", len(granted))
	}

	revoked, err := store.Query(ctx, audit.QueryFilter{
		OrganizationID: &orgID,
		EventType:      audit.EventDomainRevoked,
	})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(revoked) != 1 {
		t.Errorf("revoked events: got %d, want 1", len(revoked))
	}
}
