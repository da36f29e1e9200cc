// internal/app/store/profiles/profilestore.go
package profilestore

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
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateProfile = errors.New("user already has a role profile")
	ErrNotFound         = errors.New("profile not found")
	ErrBadRole          = errors.New("role must be student, mentor, teacher, or official")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

// Create inserts the single role profile for a user. The unique index on
// user_id enforces one profile per person; the role tag must match the
// populated details section.
func (s *Store) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	if !models.ValidRole(p.Role) {
		return models.Profile{}, ErrBadRole
	}
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Nanoid = ids.Profile()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, p)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateProfile
		}
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// GetByUserID returns the user's role profile, if any.
func (s *Store) GetByUserID(ctx context.Context, userID primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

func (s *Store) GetByNanoid(ctx context.Context, nanoid string) (models.Profile, error) {
	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{"nanoid": nanoid}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// SetOrganization links (or with nil, unlinks) the profile's organization.
func (s *Store) SetOrganization(ctx context.Context, id primitive.ObjectID, orgID *primitive.ObjectID) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	unset := bson.M{}
	if orgID != nil {
		set["organization_id"] = *orgID
	} else {
		unset["organization_id"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMentorVerified marks a mentor profile verified (or not). Only mentors
// carry the flag; matching on role keeps the write from landing elsewhere.
func (s *Store) SetMentorVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "role": models.RoleMentor},
		bson.M{"$set": bson.M{"mentor.verified": verified, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDetails replaces the role-specific details section for the profile.
func (s *Store) UpdateDetails(ctx context.Context, p models.Profile) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	switch p.Role {
	case models.RoleStudent:
		set["student"] = p.Student
	case models.RoleMentor:
		set["mentor"] = p.Mentor
	case models.RoleTeacher:
		set["teacher"] = p.Teacher
	case models.RoleOfficial:
		set["official"] = p.Official
	default:
		return ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": p.ID, "role": p.Role}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOrganization returns profiles linked to an organization, optionally
// restricted to one role.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID, role string) ([]models.Profile, error) {
	filter := bson.M{"organization_id": orgID}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var profiles []models.Profile
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
