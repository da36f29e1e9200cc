package internshipstore_test

import (
	"testing"
	"time"

	internshipstore "github.com/dalemusser/internhub/internal/app/store/internships"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/dalemusser/internhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func placement(applicationID primitive.ObjectID) models.Internship {
	now := time.Now().UTC()
	return models.Internship{
		ApplicationID: applicationID,
		StudentID:     primitive.NewObjectID(),
		MentorID:      primitive.NewObjectID(),
		StartDate:     now.AddDate(0, 1, 0),
		EndDate:       now.AddDate(0, 4, 0),
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := internshipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	appID := primitive.NewObjectID()
	i, err := store.Create(ctx, placement(appID))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if i.Status != models.InternshipActive {
		t.Errorf("status: got %q, want %q", i.Status, models.InternshipActive)
	}
	if i.Nanoid == "" {
		t.Error("expected nanoid to be assigned")
	}

	got, err := store.GetByApplication(ctx, appID)
	if err != nil {
		t.Fatalf("GetByApplication failed: %v", err)
	}
	if got.ID != i.ID {
		t.Error("GetByApplication returned a different internship")
	}
}

func TestStore_Create_OnePerApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := internshipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	appID := primitive.NewObjectID()
	if _, err := store.Create(ctx, placement(appID)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, placement(appID))
	if err != internshipstore.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestStore_AssignTeacher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := internshipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	i, err := store.Create(ctx, placement(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	teacherID := primitive.NewObjectID()
	if err := store.AssignTeacher(ctx, i.ID, teacherID); err != nil {
		t.Fatalf("AssignTeacher failed: %v", err)
	}

	got, err := store.GetByID(ctx, i.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.TeacherID == nil || *got.TeacherID != teacherID {
		t.Error("expected teacher to be assigned")
	}

	teacherList, err := store.ListByTeacher(ctx, teacherID)
	if err != nil {
		t.Fatalf("ListByTeacher failed: %v", err)
	}
	if len(teacherList) != 1 {
		t.Errorf("ListByTeacher: got %d, want 1", len(teacherList))
	}
}

func TestStore_IssueCertificate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := internshipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	i, err := store.Create(ctx, placement(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetFinalGrade(ctx, i.ID, "A"); err != nil {
		t.Fatalf("SetFinalGrade failed: %v", err)
	}
	if err := store.IssueCertificate(ctx, i.ID); err != nil {
		t.Fatalf("IssueCertificate failed: %v", err)
	}

	got, err := store.GetByID(ctx, i.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.FinalGrade != "A" {
		t.Errorf("FinalGrade: got %q, want A", got.FinalGrade)
	}
	if !got.CertificateIssued || got.CertificateDate == nil {
		t.Error("expected certificate to be issued with a date")
	}

	if err := store.IssueCertificate(ctx, primitive.NewObjectID()); err != internshipstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListByMentor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := internshipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mentorID := primitive.NewObjectID()
	for n := 0; n < 2; n++ {
		p := placement(primitive.NewObjectID())
		p.MentorID = mentorID
		if _, err := store.Create(ctx, p); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	done := placement(primitive.NewObjectID())
	done.MentorID = mentorID
	created, err := store.Create(ctx, done)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.SetStatus(ctx, created.ID, models.InternshipCompleted); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	all, err := store.ListByMentor(ctx, mentorID, "")
	if err != nil {
		t.Fatalf("ListByMentor failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all internships: got %d, want 3", len(all))
	}

	active, err := store.ListByMentor(ctx, mentorID, models.InternshipActive)
	if err != nil {
		t.Fatalf("ListByMentor filtered failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("active internships: got %d, want 2", len(active))
	}
}
