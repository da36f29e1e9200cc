package reportstore_test

import (
	"testing"

	reportstore "github.com/dalemusser/internhub/internal/app/store/reports"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func studentReport(internshipID primitive.ObjectID, week int) models.ProgressReport {
	return models.ProgressReport{
		InternshipID:   internshipID,
		ReporterRole:   models.RoleStudent,
		ReporterUserID: primitive.NewObjectID(),
		WeekNumber:     week,
		Student: &models.StudentReport{
			TasksCompleted:     "Worked on the data pipeline.",
			SatisfactionRating: 4,
		},
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	internshipID := primitive.NewObjectID()
	r, err := store.Create(ctx, studentReport(internshipID, 1))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Nanoid == "" {
		t.Error("expected nanoid to be assigned")
	}

	got, err := store.GetByNanoid(ctx, r.Nanoid)
	if err != nil {
		t.Fatalf("GetByNanoid failed: %v", err)
	}
	if got.WeekNumber != 1 {
		t.Errorf("WeekNumber: got %d, want 1", got.WeekNumber)
	}
}

func TestStore_Create_DuplicatePeriod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	internshipID := primitive.NewObjectID()
	if _, err := store.Create(ctx, studentReport(internshipID, 1)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same internship, role, and week collides.
	_, err := store.Create(ctx, studentReport(internshipID, 1))
	if err != reportstore.ErrDuplicatePeriod {
		t.Errorf("expected ErrDuplicatePeriod, got %v", err)
	}

	// A different role in the same week is a separate slot.
	mentorReport := models.ProgressReport{
		InternshipID:   internshipID,
		ReporterRole:   models.RoleMentor,
		ReporterUserID: primitive.NewObjectID(),
		WeekNumber:     1,
		Mentor:         &models.MentorReport{AttendanceRating: 5},
	}
	if _, err := store.Create(ctx, mentorReport); err != nil {
		t.Errorf("mentor report for the same week failed: %v", err)
	}

	// And so is a different week.
	if _, err := store.Create(ctx, studentReport(internshipID, 2)); err != nil {
		t.Errorf("week 2 report failed: %v", err)
	}
}

func TestStore_ListByInternship(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	internshipID := primitive.NewObjectID()
	if _, err := store.Create(ctx, studentReport(internshipID, 2)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, studentReport(internshipID, 1)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.ProgressReport{
		InternshipID:   internshipID,
		ReporterRole:   models.RoleMentor,
		ReporterUserID: primitive.NewObjectID(),
		WeekNumber:     1,
		Mentor:         &models.MentorReport{},
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := store.ListByInternship(ctx, internshipID, "")
	if err != nil {
		t.Fatalf("ListByInternship failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("reports: got %d, want 3", len(all))
	}
	// Week ascending, mentor before student within a week.
	if all[0].WeekNumber != 1 || all[0].ReporterRole != models.RoleMentor {
		t.Errorf("first report: week %d role %q", all[0].WeekNumber, all[0].ReporterRole)
	}
	if all[2].WeekNumber != 2 {
		t.Errorf("last report: week %d, want 2", all[2].WeekNumber)
	}

	students, err := store.ListByInternship(ctx, internshipID, models.RoleStudent)
	if err != nil {
		t.Fatalf("ListByInternship failed: %v", err)
	}
	if len(students) != 2 {
		t.Errorf("student reports: got %d, want 2", len(students))
	}
}

func TestStore_WeeksReported(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := reportstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	internshipID := primitive.NewObjectID()
	for _, week := range []int{1, 2, 4} {
		if _, err := store.Create(ctx, studentReport(internshipID, week)); err != nil {
			t.Fatalf("Create week %d failed: %v", week, err)
		}
	}

	weeks, err := store.WeeksReported(ctx, internshipID, models.RoleStudent)
	if err != nil {
		t.Fatalf("WeeksReported failed: %v", err)
	}
	if len(weeks) != 3 {
		t.Fatalf("weeks: got %v, want 3 entries", weeks)
	}
	seen := map[int]bool{}
	for _, w := range weeks {
		seen[w] = true
	}
	if !seen[1] || !seen[2] || !seen[4] {
		t.Errorf("weeks: got %v, want 1, 2, 4", weeks)
	}
}
