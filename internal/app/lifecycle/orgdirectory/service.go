// internal/app/lifecycle/orgdirectory/service.go

// Package orgdirectory runs the organization registration workflow: creation
// by teachers and mentors, review by government officials, domain
// verification, and the membership queries built on it.
package orgdirectory

import (
	"context"
	"errors"

	"github.com/dalemusser/internhub/internal/app/notify"
	"github.com/dalemusser/internhub/internal/app/policy/membershippolicy"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/store/organizations"
	"github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/inputval"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service coordinates organization registration and review.
type Service struct {
	orgs       *organizationstore.Store
	profiles   *profilestore.Store
	dispatcher notify.Dispatcher
	audit      *auditlog.Logger
	log        *zap.Logger
}

// New wires the service. audit may be nil to disable audit logging.
func New(orgs *organizationstore.Store, profiles *profilestore.Store, dispatcher notify.Dispatcher, auditLog *auditlog.Logger, log *zap.Logger) *Service {
	return &Service{
		orgs:       orgs,
		profiles:   profiles,
		dispatcher: dispatcher,
		audit:      auditLog,
		log:        log,
	}
}

// Register creates a pending organization on behalf of the registrant.
func (s *Service) Register(ctx context.Context, registrant models.Profile, org models.Organization) (models.Organization, error) {
	if org.Kind != models.OrgKindInstitute && org.Kind != models.OrgKindCompany {
		return models.Organization{}, apperr.E(apperr.ErrValidation, "unknown organization kind %q", org.Kind)
	}
	if org.Name == "" {
		return models.Organization{}, apperr.E(apperr.ErrValidation, "organization name is required")
	}
	if !registrant.CanRegisterOrganization(org.Kind) {
		return models.Organization{}, apperr.E(apperr.ErrPermissionDenied,
			"profile role %q may not register a %s", registrant.Role, org.Kind)
	}
	if org.EmailDomain != "" {
		if _, ok := inputval.EmailDomain("probe@" + org.EmailDomain); !ok {
			return models.Organization{}, apperr.E(apperr.ErrValidation, "invalid email domain %q", org.EmailDomain)
		}
	}

	org.RegistrationStatus = models.OrgStatusPending
	org.DomainVerified = false
	org.RegisteredBy = &registrant.ID
	org.ApprovedBy = nil
	org.ApprovedAt = nil

	created, err := s.orgs.Create(ctx, org)
	if err != nil {
		if errors.Is(err, organizationstore.ErrDuplicateOrganization) {
			return models.Organization{}, apperr.E(apperr.ErrConflict,
				"a %s named %q already exists", org.Kind, org.Name)
		}
		return models.Organization{}, err
	}

	s.audit.OrgRegistered(ctx, created.ID, registrant.ID, created.Kind, created.Name)
	s.log.Info("organization registered",
		zap.String("org", created.Nanoid),
		zap.String("kind", created.Kind),
		zap.String("name", created.Name))
	return created, nil
}

// Approve moves a pending or suspended organization to approved.
func (s *Service) Approve(ctx context.Context, orgID primitive.ObjectID, official models.Profile, notes string) error {
	return s.review(ctx, orgID, official, models.OrgStatusApproved, notes,
		audit.EventOrgApproved, models.EventOrganizationApproved,
		"Organization approved",
		"Your organization registration has been approved.")
}

// Reject moves a pending organization to rejected.
func (s *Service) Reject(ctx context.Context, orgID primitive.ObjectID, official models.Profile, notes string) error {
	return s.review(ctx, orgID, official, models.OrgStatusRejected, notes,
		audit.EventOrgRejected, models.EventOrganizationRejected,
		"Organization rejected",
		"Your organization registration has been rejected.")
}

// Suspend moves an approved organization to suspended.
func (s *Service) Suspend(ctx context.Context, orgID primitive.ObjectID, official models.Profile, notes string) error {
	return s.review(ctx, orgID, official, models.OrgStatusSuspended, notes,
		audit.EventOrgSuspended, models.EventOrganizationSuspended,
		"Organization suspended",
		"Your organization has been suspended.")
}

func (s *Service) review(ctx context.Context, orgID primitive.ObjectID, official models.Profile, status, notes, auditEvent, notifyEvent, title, message string) error {
	if !official.CanApproveOrganizations() {
		return apperr.E(apperr.ErrPermissionDenied, "profile lacks organization approval authority")
	}
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return apperr.E(apperr.ErrNotFound, "organization %s", orgID.Hex())
		}
		return err
	}
	if org.RegistrationStatus == status {
		return apperr.E(apperr.ErrInvalidTransition, "organization is already %s", status)
	}

	if err := s.orgs.SetReviewDecision(ctx, orgID, status, official.ID, notes); err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return apperr.E(apperr.ErrNotFound, "organization %s", orgID.Hex())
		}
		return err
	}

	s.audit.OrgReviewed(ctx, orgID, official.ID, auditEvent, notes)
	s.notifyRegistrant(ctx, org, notifyEvent, title, message)
	s.log.Info("organization reviewed",
		zap.String("org", org.Nanoid),
		zap.String("status", status))
	return nil
}

// notifyRegistrant routes a review outcome to the user who registered the
// organization, when that profile still exists.
func (s *Service) notifyRegistrant(ctx context.Context, org models.Organization, eventType, title, message string) {
	if org.RegisteredBy == nil {
		return
	}
	p, err := s.profiles.GetByID(ctx, *org.RegisteredBy)
	if err != nil {
		s.log.Warn("registrant profile lookup failed",
			zap.Error(err), zap.String("org", org.Nanoid))
		return
	}
	s.dispatcher.Notify(ctx, models.Notification{
		RecipientUserID: p.UserID,
		EventType:       eventType,
		Title:           title,
		Message:         message + " Organization: " + org.Name,
		CorrelationID:   notify.NewCorrelationID(),
	})
}

// VerifyDomain marks the organization's email domain verified. Independent
// of registration status.
func (s *Service) VerifyDomain(ctx context.Context, orgID primitive.ObjectID, official models.Profile) error {
	return s.setDomainVerified(ctx, orgID, official, true,
		models.EventDomainVerified, "Email domain verified",
		"Your organization's email domain has been verified.")
}

// UnverifyDomain revokes domain verification.
func (s *Service) UnverifyDomain(ctx context.Context, orgID primitive.ObjectID, official models.Profile) error {
	return s.setDomainVerified(ctx, orgID, official, false,
		models.EventDomainUnverified, "Email domain verification revoked",
		"Your organization's email domain verification has been revoked.")
}

func (s *Service) setDomainVerified(ctx context.Context, orgID primitive.ObjectID, official models.Profile, verified bool, notifyEvent, title, message string) error {
	if !official.CanApproveOrganizations() {
		return apperr.E(apperr.ErrPermissionDenied, "profile lacks organization approval authority")
	}
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return apperr.E(apperr.ErrNotFound, "organization %s", orgID.Hex())
		}
		return err
	}
	if verified && org.EmailDomain == "" {
		return apperr.E(apperr.ErrValidation, "organization has no email domain on record")
	}

	if err := s.orgs.SetDomainVerified(ctx, orgID, verified); err != nil {
		return err
	}

	s.audit.DomainVerification(ctx, orgID, official.ID, verified, org.EmailDomain)
	s.notifyRegistrant(ctx, org, notifyEvent, title, message)
	return nil
}

// ValidateMembership checks whether a user with the given email may join the
// organization.
func (s *Service) ValidateMembership(ctx context.Context, email string, orgID primitive.ObjectID) (membershippolicy.Decision, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return membershippolicy.Decision{}, apperr.E(apperr.ErrNotFound, "organization %s", orgID.Hex())
		}
		return membershippolicy.Decision{}, err
	}
	return membershippolicy.ValidateMembership(email, org), nil
}

// Join links a profile to an organization. Only approved organizations
// accept members; the domain check itself is status-blind, so the approval
// gate lives here.
func (s *Service) Join(ctx context.Context, profile models.Profile, email string, orgID primitive.ObjectID) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, organizationstore.ErrNotFound) {
			return apperr.E(apperr.ErrNotFound, "organization %s", orgID.Hex())
		}
		return err
	}
	if !org.IsApproved() {
		return apperr.E(apperr.ErrPermissionDenied, "organization %q is not approved", org.Name)
	}
	decision := membershippolicy.ValidateMembership(email, org)
	if !decision.Allowed {
		return apperr.E(apperr.ErrPermissionDenied, "%s", decision.Reason)
	}
	if err := s.profiles.SetOrganization(ctx, profile.ID, &orgID); err != nil {
		if errors.Is(err, profilestore.ErrNotFound) {
			return apperr.E(apperr.ErrNotFound, "profile %s", profile.ID.Hex())
		}
		return err
	}
	return nil
}

// EligibleOrganizations returns the approved organizations of the given kind
// that the email's owner may join. Recomputed per call; domain verification
// changes apply immediately.
func (s *Service) EligibleOrganizations(ctx context.Context, email, kind string) ([]models.Organization, error) {
	orgs, err := s.orgs.ListApproved(ctx, kind)
	if err != nil {
		return nil, err
	}
	return membershippolicy.EligibleOrganizations(email, orgs), nil
}

// SuggestByDomain returns verified organizations whose domain matches the
// email's domain, for proposing a home organization at signup.
func (s *Service) SuggestByDomain(ctx context.Context, email, kind string) ([]models.Organization, error) {
	domain, ok := inputval.EmailDomain(email)
	if !ok {
		return nil, nil
	}
	return s.orgs.FindVerifiedByDomain(ctx, kind, domain)
}
