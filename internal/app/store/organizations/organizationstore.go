// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/internhub/internal/app/system/ids"
	"github.com/dalemusser/internhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateOrganization = errors.New("an organization with this name already exists")
	ErrNotFound              = errors.New("organization not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

// Create inserts a new organization. Status defaults to pending; the nanoid
// is assigned here and never changes.
func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.Nanoid = ids.Organization()
	org.NameCI = text.Fold(org.Name)
	if org.RegistrationStatus == "" {
		org.RegistrationStatus = models.OrgStatusPending
	}
	org.CreatedAt = now
	org.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, org)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, ErrNotFound
	}
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByNanoid(ctx context.Context, nanoid string) (models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"nanoid": nanoid}).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, ErrNotFound
	}
	if err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// SetReviewDecision records an official's decision on a registration. It
// stamps approved_by/approved_at for every decision so the review trail
// shows who acted last, matching the registration workflow.
func (s *Store) SetReviewDecision(ctx context.Context, id primitive.ObjectID, status string, officialProfileID primitive.ObjectID, notes string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"registration_status": status,
		"approved_by":         officialProfileID,
		"approved_at":         now,
		"registration_notes":  notes,
		"updated_at":          now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDomainVerified toggles the domain_verified flag independent of the
// registration status.
func (s *Store) SetDomainVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"domain_verified": verified,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEmailDomain updates the organization's claimed email domain. Changing
// the domain clears verification; an official must verify the new domain.
func (s *Store) SetEmailDomain(ctx context.Context, id primitive.ObjectID, domain string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"email_domain":    domain,
		"domain_verified": false,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Update modifies an organization's descriptive fields and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, org models.Organization) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if org.Name != "" {
		set["name"] = org.Name
		set["name_ci"] = text.Fold(org.Name)
	}
	if org.Description != "" {
		set["description"] = org.Description
	}
	if org.Industry != "" {
		set["industry"] = org.Industry
	}
	if org.Address != "" {
		set["address"] = org.Address
	}
	if org.Website != "" {
		set["website"] = org.Website
	}
	if org.ContactEmail != "" {
		set["contact_email"] = org.ContactEmail
	}
	if org.Phone != "" {
		set["phone"] = org.Phone
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateOrganization
		}
		return err
	}
	return nil
}

// ListByStatus returns organizations of the given kind and registration
// status, sorted by folded name. Empty kind or status means "any".
func (s *Store) ListByStatus(ctx context.Context, kind, status string) ([]models.Organization, error) {
	filter := bson.M{}
	if kind != "" {
		filter["kind"] = kind
	}
	if status != "" {
		filter["registration_status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// ListApproved returns all approved organizations of the given kind.
func (s *Store) ListApproved(ctx context.Context, kind string) ([]models.Organization, error) {
	return s.ListByStatus(ctx, kind, models.OrgStatusApproved)
}

// FindVerifiedByDomain returns approved, domain-verified organizations of
// the given kind whose email domain matches exactly.
func (s *Store) FindVerifiedByDomain(ctx context.Context, kind, domain string) ([]models.Organization, error) {
	filter := bson.M{
		"registration_status": models.OrgStatusApproved,
		"domain_verified":     true,
		"email_domain":        primitive.Regex{Pattern: "^" + regexp.QuoteMeta(domain) + "$", Options: "i"},
	}
	if kind != "" {
		filter["kind"] = kind
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Count returns the number of organizations matching the given filter.
func (s *Store) Count(ctx context.Context, filter bson.M) (int64, error) {
	return s.c.CountDocuments(ctx, filter)
}
