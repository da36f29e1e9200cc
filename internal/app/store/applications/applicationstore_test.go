package applicationstore_test

import (
	"sync"
	"testing"

	applicationstore "github.com/dalemusser/internhub/internal/app/store/applications"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	app, err := store.Create(ctx, models.Application{
		StudentID:   primitive.NewObjectID(),
		PositionID:  primitive.NewObjectID(),
		CoverLetter: "I would like to apply.",
		Status:      models.AppStatusApproved, // must be ignored
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if app.Status != models.AppStatusPending {
		t.Errorf("Status: got %q, want %q", app.Status, models.AppStatusPending)
	}
	if app.Nanoid == "" {
		t.Error("expected nanoid to be assigned")
	}
	if app.AppliedAt.IsZero() {
		t.Error("expected AppliedAt to be set")
	}
}

func TestStore_Create_DuplicateActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	positionID := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.Application{
		StudentID:   studentID,
		PositionID:  positionID,
		CoverLetter: "first",
	}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, models.Application{
		StudentID:   studentID,
		PositionID:  positionID,
		CoverLetter: "second",
	})
	if err != applicationstore.ErrDuplicateActive {
		t.Errorf("expected ErrDuplicateActive, got %v", err)
	}
}

// After rejection or withdrawal the partial index no longer covers the pair,
// so the student may apply again.
func TestStore_Create_ReapplyAfterRejection(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	positionID := primitive.NewObjectID()

	first, err := store.Create(ctx, models.Application{
		StudentID:   studentID,
		PositionID:  positionID,
		CoverLetter: "first",
	})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	if _, err := store.UpdateStatus(ctx, first.ID, models.ReviewableAppStatuses, models.AppStatusRejected, "not a fit"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Application{
		StudentID:   studentID,
		PositionID:  positionID,
		CoverLetter: "second",
	}); err != nil {
		t.Errorf("re-application after rejection failed: %v", err)
	}
}

func TestStore_UpdateStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	app, err := store.Create(ctx, models.Application{
		StudentID:   primitive.NewObjectID(),
		PositionID:  primitive.NewObjectID(),
		CoverLetter: "hello",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.UpdateStatus(ctx, app.ID, []string{models.AppStatusPending}, models.AppStatusUnderReview, "")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if got.Status != models.AppStatusUnderReview {
		t.Errorf("Status: got %q, want %q", got.Status, models.AppStatusUnderReview)
	}
	if got.ReviewedAt == nil {
		t.Error("expected ReviewedAt to be set")
	}
}

func TestStore_UpdateStatus_CASMiss(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	app, err := store.Create(ctx, models.Application{
		StudentID:   primitive.NewObjectID(),
		PositionID:  primitive.NewObjectID(),
		CoverLetter: "hello",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.UpdateStatus(ctx, app.ID, models.ReviewableAppStatuses, models.AppStatusRejected, "no"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	// Rejected is not in the reviewable set; a second decision must lose.
	_, err = store.UpdateStatus(ctx, app.ID, models.ReviewableAppStatuses, models.AppStatusApproved, "")
	if err != applicationstore.ErrStatusChanged {
		t.Errorf("expected ErrStatusChanged, got %v", err)
	}
}

func TestStore_UpdateStatus_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.UpdateStatus(ctx, primitive.NewObjectID(), models.ReviewableAppStatuses, models.AppStatusApproved, "")
	if err != applicationstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// Concurrent approve and reject of the same pending application; the CAS
// filter lets exactly one decision land.
func TestStore_UpdateStatus_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	app, err := store.Create(ctx, models.Application{
		StudentID:   primitive.NewObjectID(),
		PositionID:  primitive.NewObjectID(),
		CoverLetter: "hello",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	targets := []string{models.AppStatusApproved, models.AppStatusRejected}
	for i, to := range targets {
		wg.Add(1)
		go func(i int, to string) {
			defer wg.Done()
			_, errs[i] = store.UpdateStatus(ctx, app.ID, models.ReviewableAppStatuses, to, "")
		}(i, to)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		switch err {
		case nil:
			wins++
		case applicationstore.ErrStatusChanged:
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winning decisions: got %d, want 1", wins)
	}

	got, err := store.GetByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.AppStatusApproved && got.Status != models.AppStatusRejected {
		t.Errorf("final status %q is neither decision", got.Status)
	}
}

func TestStore_ListByStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	studentID := primitive.NewObjectID()
	fixtures.CreateApplication(ctx, studentID, primitive.NewObjectID(), models.AppStatusPending)
	fixtures.CreateApplication(ctx, studentID, primitive.NewObjectID(), models.AppStatusRejected)
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.AppStatusPending)

	got, err := store.ListByStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("ListByStudent failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("applications: got %d, want 2", len(got))
	}
}

func TestStore_ListByPositions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	posA := primitive.NewObjectID()
	posB := primitive.NewObjectID()
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), posA, models.AppStatusPending)
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), posA, models.AppStatusRejected)
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), posB, models.AppStatusUnderReview)
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), primitive.NewObjectID(), models.AppStatusPending)

	got, err := store.ListByPositions(ctx, []primitive.ObjectID{posA, posB}, models.ReviewableAppStatuses)
	if err != nil {
		t.Fatalf("ListByPositions failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("reviewable applications: got %d, want 2", len(got))
	}

	none, err := store.ListByPositions(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListByPositions with no positions failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected empty result for no positions, got %d", len(none))
	}
}

func TestStore_CountByPosition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := applicationstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	posID := primitive.NewObjectID()
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), posID, models.AppStatusPending)
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), posID, models.AppStatusPending)
	fixtures.CreateApplication(ctx, primitive.NewObjectID(), posID, models.AppStatusApproved)

	counts, err := store.CountByPosition(ctx, posID)
	if err != nil {
		t.Fatalf("CountByPosition failed: %v", err)
	}
	if counts[models.AppStatusPending] != 2 {
		t.Errorf("pending: got %d, want 2", counts[models.AppStatusPending])
	}
	if counts[models.AppStatusApproved] != 1 {
		t.Errorf("approved: got %d, want 1", counts[models.AppStatusApproved])
	}
}
