// internal/app/lifecycle/positioncatalog/service.go

// Package positioncatalog manages internship positions: creation and editing
// by verified mentors, the edit lockout once applications exist, and the
// browse queries students use.
package positioncatalog

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/internhub/internal/app/policy/placementpolicy"
	"github.com/dalemusser/internhub/internal/app/store/organizations"
	"github.com/dalemusser/internhub/internal/app/store/positions"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service struct {
	positions *positionstore.Store
	orgs      *organizationstore.Store
	log       *zap.Logger
}

func New(positions *positionstore.Store, orgs *organizationstore.Store, log *zap.Logger) *Service {
	return &Service{positions: positions, orgs: orgs, log: log}
}

func validateFields(p models.Position) error {
	if p.Title == "" {
		return apperr.E(apperr.ErrValidation, "title is required")
	}
	if p.MaxStudents <= 0 {
		return apperr.E(apperr.ErrValidation, "max students must be positive, got %d", p.MaxStudents)
	}
	if !models.ValidDuration(p.DurationMonths) {
		return apperr.E(apperr.ErrValidation, "duration must be 2, 3, 4, or 6 months, got %d", p.DurationMonths)
	}
	if !p.EndDate.IsZero() && !p.StartDate.IsZero() && p.EndDate.Before(p.StartDate) {
		return apperr.E(apperr.ErrValidation, "end date precedes start date")
	}
	return nil
}

// Create posts a new position for the mentor's company.
func (s *Service) Create(ctx context.Context, mentor models.Profile, p models.Position) (models.Position, error) {
	if err := validateFields(p); err != nil {
		return models.Position{}, err
	}
	if mentor.OrganizationID == nil {
		return models.Position{}, apperr.E(apperr.ErrPermissionDenied, "mentor has no company")
	}
	company, err := s.orgs.GetByID(ctx, *mentor.OrganizationID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return models.Position{}, apperr.E(apperr.ErrNotFound, "company %s", mentor.OrganizationID.Hex())
		}
		return models.Position{}, err
	}
	if !placementpolicy.CanCreatePosition(mentor, company) {
		return models.Position{}, apperr.E(apperr.ErrPermissionDenied,
			"only verified mentors of approved companies may post positions")
	}

	p.CompanyID = company.ID
	p.MentorID = mentor.ID
	p.IsActive = true

	created, err := s.positions.Create(ctx, p)
	if err != nil {
		return models.Position{}, err
	}
	s.log.Info("position created",
		zap.String("position", created.Nanoid),
		zap.String("company", company.Nanoid),
		zap.Int("max_students", created.MaxStudents))
	return created, nil
}

// Edit replaces a position's fields. Blocked once any application, of any
// status, references the position.
func (s *Service) Edit(ctx context.Context, mentor models.Profile, p models.Position) error {
	if err := validateFields(p); err != nil {
		return err
	}
	current, err := s.positions.GetByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, positionstore.ErrNotFound) {
			return apperr.E(apperr.ErrNotFound, "position %s", p.ID.Hex())
		}
		return err
	}
	if current.MentorID != mentor.ID {
		return apperr.E(apperr.ErrPermissionDenied, "position belongs to another mentor")
	}

	err = s.positions.Update(ctx, p)
	switch {
	case errors.Is(err, positionstore.ErrEditLocked):
		return apperr.E(apperr.ErrConflict, "position has applications and can no longer be edited")
	case errors.Is(err, positionstore.ErrNotFound):
		return apperr.E(apperr.ErrNotFound, "position %s", p.ID.Hex())
	}
	return err
}

// SetActive opens or closes the position for new applications. Unlike Edit,
// this stays available after applications exist.
func (s *Service) SetActive(ctx context.Context, mentor models.Profile, positionID primitive.ObjectID, active bool) error {
	current, err := s.positions.GetByID(ctx, positionID)
	if err != nil {
		if errors.Is(err, positionstore.ErrNotFound) {
			return apperr.E(apperr.ErrNotFound, "position %s", positionID.Hex())
		}
		return err
	}
	if current.MentorID != mentor.ID {
		return apperr.E(apperr.ErrPermissionDenied, "position belongs to another mentor")
	}
	return s.positions.SetActive(ctx, positionID, active)
}

// Get returns the position by its external ID.
func (s *Service) Get(ctx context.Context, nanoid string) (models.Position, error) {
	p, err := s.positions.GetByNanoid(ctx, nanoid)
	if err != nil {
		if errors.Is(err, positionstore.ErrNotFound) {
			return models.Position{}, apperr.E(apperr.ErrNotFound, "position %s", nanoid)
		}
		return models.Position{}, err
	}
	return p, nil
}

// Browse returns the positions currently open for applications.
func (s *Service) Browse(ctx context.Context) ([]models.Position, error) {
	return s.positions.ListOpen(ctx, time.Now().UTC())
}

// ListByMentor returns a mentor's own positions regardless of state.
func (s *Service) ListByMentor(ctx context.Context, mentorID primitive.ObjectID) ([]models.Position, error) {
	return s.positions.ListByMentor(ctx, mentorID)
}
