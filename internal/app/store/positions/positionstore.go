// internal/app/store/positions/positionstore.go
package positionstore

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

var (
	ErrNotFound   = errors.New("position not found")
	ErrFull       = errors.New("position has no remaining spots")
	ErrEditLocked = errors.New("position has applications and cannot be edited")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("positions")}
}

// Create inserts a new position. Counters start at zero regardless of what
// the caller passed in.
func (s *Store) Create(ctx context.Context, p models.Position) (models.Position, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Nanoid = ids.Position()
	p.ApprovedCount = 0
	p.ApplicationCount = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Position{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Position, error) {
	var p models.Position
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Position{}, ErrNotFound
	}
	if err != nil {
		return models.Position{}, err
	}
	return p, nil
}

func (s *Store) GetByNanoid(ctx context.Context, nanoid string) (models.Position, error) {
	var p models.Position
	err := s.c.FindOne(ctx, bson.M{"nanoid": nanoid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Position{}, ErrNotFound
	}
	if err != nil {
		return models.Position{}, err
	}
	return p, nil
}

// Update replaces the position's editable fields. The filter requires
// application_count == 0 so the edit lockout is enforced at the write, not
// just by a read-then-check in the service.
func (s *Store) Update(ctx context.Context, p models.Position) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": p.ID, "application_count": 0},
		bson.M{"$set": bson.M{
			"title":           p.Title,
			"description":     p.Description,
			"requirements":    p.Requirements,
			"skills_required": p.SkillsRequired,
			"duration_months": p.DurationMonths,
			"start_date":      p.StartDate,
			"end_date":        p.EndDate,
			"stipend":         p.Stipend,
			"max_students":    p.MaxStudents,
			"updated_at":      time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing position from one that is locked.
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": p.ID})
		if cerr == nil && n > 0 {
			return ErrEditLocked
		}
		return ErrNotFound
	}
	return nil
}

// SetActive toggles whether the position accepts new applications. Allowed
// even after the edit lockout; deactivation is how a company closes a
// position it can no longer edit.
func (s *Store) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"is_active":  active,
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

// ReserveSpot atomically claims one approval slot. The $expr filter makes
// the capacity check and the increment a single compare-and-set, so two
// concurrent approvals of the last spot cannot both succeed. Returns ErrFull
// when the position exists but is at capacity.
func (s *Store) ReserveSpot(ctx context.Context, id primitive.ObjectID) (models.Position, error) {
	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$lt": bson.A{"$approved_count", "$max_students"}},
	}
	update := bson.M{
		"$inc": bson.M{"approved_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Position
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cerr == nil && n > 0 {
			return models.Position{}, ErrFull
		}
		return models.Position{}, ErrNotFound
	}
	if err != nil {
		return models.Position{}, err
	}
	return p, nil
}

// ReleaseSpot returns one approval slot, used when an approved application
// is withdrawn or when approval fails after the spot was reserved. The
// filter keeps the counter from going negative.
func (s *Store) ReleaseSpot(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "approved_count": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"approved_count": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncApplicationCount bumps the lifetime application counter, which drives
// the edit lockout. Never decremented; withdrawal does not unlock edits.
func (s *Store) IncApplicationCount(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"application_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByCompany returns a company's positions, newest first. activeOnly
// restricts to open positions.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID, activeOnly bool) ([]models.Position, error) {
	filter := bson.M{"company_id": companyID}
	if activeOnly {
		filter["is_active"] = true
	}
	return s.list(ctx, filter)
}

// ListByMentor returns positions a mentor supervises.
func (s *Store) ListByMentor(ctx context.Context, mentorID primitive.ObjectID) ([]models.Position, error) {
	return s.list(ctx, bson.M{"mentor_id": mentorID})
}

// ListOpen returns active positions students can browse. Positions with a
// past end date are filtered out here rather than flipped inactive by a
// background job.
func (s *Store) ListOpen(ctx context.Context, asOf time.Time) ([]models.Position, error) {
	return s.list(ctx, bson.M{
		"is_active": true,
		"end_date":  bson.M{"$gte": asOf},
	})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Position, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var positions []models.Position
	if err := cur.All(ctx, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}
