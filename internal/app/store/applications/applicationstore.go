// internal/app/store/applications/applicationstore.go
package applicationstore

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
	// ErrDuplicateActive surfaces the partial unique index on
	// (student_id, position_id) over active statuses.
	ErrDuplicateActive = errors.New("student already has an active application for this position")
	ErrNotFound        = errors.New("application not found")
	ErrStatusChanged   = errors.New("application status changed concurrently")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// Create inserts a new application in pending status.
func (s *Store) Create(ctx context.Context, a models.Application) (models.Application, error) {
	a.ID = primitive.NewObjectID()
	a.Nanoid = ids.Application()
	a.Status = models.AppStatusPending
	a.AppliedAt = time.Now().UTC()
	a.ReviewedAt = nil
	a.ReviewerNotes = ""
	_, err := s.c.InsertOne(ctx, a)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Application{}, ErrDuplicateActive
		}
		return models.Application{}, err
	}
	return a, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Application, error) {
	var a models.Application
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return models.Application{}, ErrNotFound
	}
	if err != nil {
		return models.Application{}, err
	}
	return a, nil
}

func (s *Store) GetByNanoid(ctx context.Context, nanoid string) (models.Application, error) {
	var a models.Application
	err := s.c.FindOne(ctx, bson.M{"nanoid": nanoid}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return models.Application{}, ErrNotFound
	}
	if err != nil {
		return models.Application{}, err
	}
	return a, nil
}

// UpdateStatus moves the application to a new status only if its current
// status is in fromStatuses. The conditional filter is the CAS that keeps
// two concurrent decisions from both landing; the loser gets
// ErrStatusChanged (or ErrNotFound if the document is gone).
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, fromStatuses []string, to, notes string) (models.Application, error) {
	now := time.Now().UTC()
	set := bson.M{
		"status":      to,
		"reviewed_at": now,
	}
	if notes != "" {
		set["reviewer_notes"] = notes
	}
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": fromStatuses},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var a models.Application
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&a)
	if err == mongo.ErrNoDocuments {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cerr == nil && n > 0 {
			return models.Application{}, ErrStatusChanged
		}
		return models.Application{}, ErrNotFound
	}
	if err != nil {
		return models.Application{}, err
	}
	return a, nil
}

// ListByStudent returns a student's applications, newest first.
func (s *Store) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Application, error) {
	return s.list(ctx, bson.M{"student_id": studentID})
}

// ListByPosition returns applications for a position, optionally restricted
// to one status.
func (s *Store) ListByPosition(ctx context.Context, positionID primitive.ObjectID, status string) ([]models.Application, error) {
	filter := bson.M{"position_id": positionID}
	if status != "" {
		filter["status"] = status
	}
	return s.list(ctx, filter)
}

// ListByPositions returns applications across a set of positions, used for a
// mentor's review queue.
func (s *Store) ListByPositions(ctx context.Context, positionIDs []primitive.ObjectID, statuses []string) ([]models.Application, error) {
	if len(positionIDs) == 0 {
		return nil, nil
	}
	filter := bson.M{"position_id": bson.M{"$in": positionIDs}}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}
	return s.list(ctx, filter)
}

// CountByPosition returns per-status counts for a position.
func (s *Store) CountByPosition(ctx context.Context, positionID primitive.ObjectID) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"position_id": positionID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	counts := map[string]int64{}
	for cur.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			N      int64  `bson:"n"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.N
	}
	return counts, cur.Err()
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "applied_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
