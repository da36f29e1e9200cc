// internal/app/store/reports/reportstore.go
package reportstore

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
	// ErrDuplicatePeriod surfaces the unique index on
	// (internship_id, reporter_role, week_number).
	ErrDuplicatePeriod = errors.New("a report for this role and week already exists")
	ErrNotFound        = errors.New("progress report not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("progress_reports")}
}

// Create inserts a weekly progress report.
func (s *Store) Create(ctx context.Context, r models.ProgressReport) (models.ProgressReport, error) {
	r.ID = primitive.NewObjectID()
	r.Nanoid = ids.Record()
	r.CreatedAt = time.Now().UTC()
	_, err := s.c.InsertOne(ctx, r)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.ProgressReport{}, ErrDuplicatePeriod
		}
		return models.ProgressReport{}, err
	}
	return r, nil
}

func (s *Store) GetByNanoid(ctx context.Context, nanoid string) (models.ProgressReport, error) {
	var r models.ProgressReport
	err := s.c.FindOne(ctx, bson.M{"nanoid": nanoid}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return models.ProgressReport{}, ErrNotFound
	}
	if err != nil {
		return models.ProgressReport{}, err
	}
	return r, nil
}

// ListByInternship returns an internship's reports ordered by week then role,
// optionally restricted to one reporter role.
func (s *Store) ListByInternship(ctx context.Context, internshipID primitive.ObjectID, role string) ([]models.ProgressReport, error) {
	filter := bson.M{"internship_id": internshipID}
	if role != "" {
		filter["reporter_role"] = role
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "week_number", Value: 1},
		{Key: "reporter_role", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var reports []models.ProgressReport
	if err := cur.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// WeeksReported returns the distinct week numbers a role has filed for an
// internship, used to spot gaps when sending reminders.
func (s *Store) WeeksReported(ctx context.Context, internshipID primitive.ObjectID, role string) ([]int, error) {
	raw, err := s.c.Distinct(ctx, "week_number", bson.M{
		"internship_id": internshipID,
		"reporter_role": role,
	})
	if err != nil {
		return nil, err
	}
	weeks := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case int32:
			weeks = append(weeks, int(n))
		case int64:
			weeks = append(weeks, int(n))
		case int:
			weeks = append(weeks, n)
		}
	}
	return weeks, nil
}
