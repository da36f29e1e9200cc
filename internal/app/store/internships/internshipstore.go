// internal/app/store/internships/internshipstore.go
package internshipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/ids"
	"github.com/dalemusser/internhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrAlreadyExists surfaces the unique index on application_id: an
	// approved application materializes at most one internship.
	ErrAlreadyExists = errors.New("internship already exists for this application")
	ErrNotFound      = errors.New("internship not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("internships")}
}

// Create inserts a new internship in active status.
func (s *Store) Create(ctx context.Context, i models.Internship) (models.Internship, error) {
	now := time.Now().UTC()
	i.ID = primitive.NewObjectID()
	i.Nanoid = ids.Internship()
	i.Status = models.InternshipActive
	i.CreatedAt = now
	i.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, i)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Internship{}, ErrAlreadyExists
		}
		return models.Internship{}, err
	}
	return i, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Internship, error) {
	var i models.Internship
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&i)
	if err == mongo.ErrNoDocuments {
		return models.Internship{}, ErrNotFound
	}
	if err != nil {
		return models.Internship{}, err
	}
	return i, nil
}

func (s *Store) GetByNanoid(ctx context.Context, nanoid string) (models.Internship, error) {
	var i models.Internship
	err := s.c.FindOne(ctx, bson.M{"nanoid": nanoid}).Decode(&i)
	if err == mongo.ErrNoDocuments {
		return models.Internship{}, ErrNotFound
	}
	if err != nil {
		return models.Internship{}, err
	}
	return i, nil
}

func (s *Store) GetByApplication(ctx context.Context, applicationID primitive.ObjectID) (models.Internship, error) {
	var i models.Internship
	err := s.c.FindOne(ctx, bson.M{"application_id": applicationID}).Decode(&i)
	if err == mongo.ErrNoDocuments {
		return models.Internship{}, ErrNotFound
	}
	if err != nil {
		return models.Internship{}, err
	}
	return i, nil
}

// SetStatus moves the internship to a new status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignTeacher attaches the supervising teacher profile.
func (s *Store) AssignTeacher(ctx context.Context, id, teacherID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"teacher_id": teacherID,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFinalGrade records the grade. Settable regardless of status.
func (s *Store) SetFinalGrade(ctx context.Context, id primitive.ObjectID, grade string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"final_grade": grade,
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IssueCertificate marks the certificate issued and stamps the date.
func (s *Store) IssueCertificate(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"certificate_issued": true,
		"certificate_date":   now,
		"updated_at":         now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Internship, error) {
	return s.list(ctx, bson.M{"student_id": studentID})
}

func (s *Store) ListByMentor(ctx context.Context, mentorID primitive.ObjectID, status string) ([]models.Internship, error) {
	filter := bson.M{"mentor_id": mentorID}
	if status != "" {
		filter["status"] = status
	}
	return s.list(ctx, filter)
}

func (s *Store) ListByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]models.Internship, error) {
	return s.list(ctx, bson.M{"teacher_id": teacherID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Internship, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.Internship
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
