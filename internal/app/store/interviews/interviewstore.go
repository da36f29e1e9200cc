// internal/app/store/interviews/interviewstore.go
package interviewstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/ids"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("interview not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("interviews")}
}

// Schedule upserts the interview for an application. Rescheduling replaces
// the time and location on the same document, so the one-per-application
// index holds. A document that already existed comes back with status
// rescheduled; a fresh one with status scheduled.
func (s *Store) Schedule(ctx context.Context, iv models.Interview) (models.Interview, error) {
	now := time.Now().UTC()

	update := bson.A{
		bson.M{"$set": bson.M{
			"interviewer_id": iv.InterviewerID,
			"scheduled_at":   iv.ScheduledAt,
			"location":       iv.Location,
			"notes":          iv.Notes,
			"updated_at":     now,
			// Pipeline form so the status can depend on whether the
			// document pre-existed.
			"status": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{bson.M{"$type": "$created_at"}, "missing"}},
				models.InterviewScheduled,
				models.InterviewRescheduled,
			}},
			"nanoid":     bson.M{"$ifNull": bson.A{"$nanoid", ids.Record()}},
			"created_at": bson.M{"$ifNull": bson.A{"$created_at", now}},
		}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.Interview
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"application_id": iv.ApplicationID},
		update,
		opts,
	).Decode(&out)
	if err != nil {
		return models.Interview{}, err
	}
	return out, nil
}

func (s *Store) GetByApplication(ctx context.Context, applicationID primitive.ObjectID) (models.Interview, error) {
	var iv models.Interview
	err := s.c.FindOne(ctx, bson.M{"application_id": applicationID}).Decode(&iv)
	if err == mongo.ErrNoDocuments {
		return models.Interview{}, ErrNotFound
	}
	if err != nil {
		return models.Interview{}, err
	}
	return iv, nil
}

// SetStatus moves the interview's status and optionally records feedback.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status, feedback string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if feedback != "" {
		set["feedback"] = feedback
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByInterviewer returns a mentor's upcoming and past interviews, soonest
// scheduled time first.
func (s *Store) ListByInterviewer(ctx context.Context, interviewerID primitive.ObjectID) ([]models.Interview, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"interviewer_id": interviewerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var items []models.Interview
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
