// internal/app/lifecycle/applications/service.go

// Package applications runs the application state machine: submission by
// eligible students, mentor review, interview scheduling, the capacity-safe
// approval path, and withdrawal.
//
// Approval composes two conditional single-document updates: a spot reserve
// on the position (approved_count < max_students, $inc) and a status CAS on
// the application. Both run inside a Mongo transaction when the deployment
// supports one; on standalone servers the reserve is compensated with a
// decrement when the status CAS loses. Either way at most one of two racing
// approvals of the last spot can win.
package applications

import (
	"context"
	"errors"

	"time"

	"github.com/dalemusser/internhub/internal/app/lifecycle/internships"
	"github.com/dalemusser/internhub/internal/app/notify"
	"github.com/dalemusser/internhub/internal/app/policy/placementpolicy"
	"github.com/dalemusser/internhub/internal/app/store/applications"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/store/interviews"
	"github.com/dalemusser/internhub/internal/app/store/positions"
	"github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/app/system/txn"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Service struct {
	client      *mongo.Client
	apps        *applicationstore.Store
	positions   *positionstore.Store
	profiles    *profilestore.Store
	interviews  *interviewstore.Store
	internships *internships.Service
	dispatcher  notify.Dispatcher
	audit       *auditlog.Logger
	log         *zap.Logger
}

// New wires the service. client is used to open transactions for the
// approval path; it may be nil in tests that never call Approve.
func New(client *mongo.Client, apps *applicationstore.Store, positions *positionstore.Store, profiles *profilestore.Store, interviews *interviewstore.Store, internshipSvc *internships.Service, dispatcher notify.Dispatcher, auditLog *auditlog.Logger, log *zap.Logger) *Service {
	return &Service{
		client:      client,
		apps:        apps,
		positions:   positions,
		profiles:    profiles,
		interviews:  interviews,
		internships: internshipSvc,
		dispatcher:  dispatcher,
		audit:       auditLog,
		log:         log,
	}
}

// Create submits a new application for the student.
func (s *Service) Create(ctx context.Context, student models.Profile, positionID primitive.ObjectID, coverLetter string) (models.Application, error) {
	if coverLetter == "" {
		return models.Application{}, apperr.E(apperr.ErrValidation, "cover letter is required")
	}

	pos, err := s.getPosition(ctx, positionID)
	if err != nil {
		return models.Application{}, err
	}
	if ok, reason := placementpolicy.CanApply(student, pos, time.Now().UTC()); !ok {
		return models.Application{}, apperr.E(apperr.ErrNotEligible, "%s", reason)
	}

	app, err := s.apps.Create(ctx, models.Application{
		StudentID:   student.ID,
		PositionID:  pos.ID,
		CoverLetter: coverLetter,
	})
	if err != nil {
		if errors.Is(err, applicationstore.ErrDuplicateActive) {
			return models.Application{}, apperr.E(apperr.ErrDuplicateApplication,
				"an active application for position %s already exists", pos.Nanoid)
		}
		return models.Application{}, err
	}

	// The lifetime counter drives the position edit lockout. Losing this
	// increment leaves the position editable a little longer, which is
	// tolerable; the application itself is already committed.
	if err := s.positions.IncApplicationCount(ctx, pos.ID); err != nil {
		s.log.Warn("application count increment failed",
			zap.Error(err), zap.String("position", pos.Nanoid))
	}

	s.audit.ApplicationEvent(ctx, audit.EventApplicationSubmitted, app.ID, student.ID, student.ID)
	s.notifyProfile(ctx, pos.MentorID, models.EventApplicationReceived,
		"New application received",
		"A student applied to "+pos.Title+".")
	s.log.Info("application submitted",
		zap.String("application", app.Nanoid),
		zap.String("position", pos.Nanoid))
	return app, nil
}

// Review moves a pending application to under_review.
func (s *Service) Review(ctx context.Context, appID primitive.ObjectID, mentor models.Profile) (models.Application, error) {
	app, _, err := s.loadForDecision(ctx, appID, mentor)
	if err != nil {
		return models.Application{}, err
	}

	updated, err := s.apps.UpdateStatus(ctx, app.ID,
		[]string{models.AppStatusPending}, models.AppStatusUnderReview, "")
	if err != nil {
		return models.Application{}, s.casErr(err, app.ID, "review requires a pending application")
	}
	return updated, nil
}

// ScheduleInterview moves the application to interview_scheduled and records
// the interview details.
func (s *Service) ScheduleInterview(ctx context.Context, appID primitive.ObjectID, mentor models.Profile, scheduledAt time.Time, location, notes string) (models.Interview, error) {
	if scheduledAt.IsZero() {
		return models.Interview{}, apperr.E(apperr.ErrValidation, "interview time is required")
	}
	app, _, err := s.loadForDecision(ctx, appID, mentor)
	if err != nil {
		return models.Interview{}, err
	}

	if _, err := s.apps.UpdateStatus(ctx, app.ID,
		[]string{models.AppStatusPending, models.AppStatusUnderReview},
		models.AppStatusInterviewScheduled, ""); err != nil {
		return models.Interview{}, s.casErr(err, app.ID, "interview requires a pending or under-review application")
	}

	iv, err := s.interviews.Schedule(ctx, models.Interview{
		ApplicationID: app.ID,
		InterviewerID: mentor.ID,
		ScheduledAt:   scheduledAt,
		Location:      location,
		Notes:         notes,
	})
	if err != nil {
		return models.Interview{}, err
	}

	s.audit.ApplicationEvent(ctx, audit.EventInterviewScheduled, app.ID, app.StudentID, mentor.ID)
	s.notifyProfile(ctx, app.StudentID, models.EventInterviewScheduled,
		"Interview scheduled",
		"An interview has been scheduled for your application.")
	return iv, nil
}

// Approve accepts the application, claiming one of the position's spots and
// materializing the internship.
func (s *Service) Approve(ctx context.Context, appID primitive.ObjectID, mentor models.Profile, notes string) (models.Application, error) {
	app, pos, err := s.loadForDecision(ctx, appID, mentor)
	if err != nil {
		return models.Application{}, err
	}

	var approved models.Application
	err = txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		reserved, err := s.positions.ReserveSpot(ctx, pos.ID)
		if err != nil {
			if errors.Is(err, positionstore.ErrFull) {
				return apperr.E(apperr.ErrCapacityExceeded,
					"position %s already has %d approved students", pos.Nanoid, pos.MaxStudents)
			}
			return err
		}

		approved, err = s.apps.UpdateStatus(ctx, app.ID,
			models.ReviewableAppStatuses, models.AppStatusApproved, notes)
		if err != nil {
			// Hand the spot back. Inside a real transaction the abort
			// discards both writes; on the no-transaction fallback this
			// decrement is the compensation.
			if relErr := s.positions.ReleaseSpot(ctx, reserved.ID); relErr != nil {
				s.log.Error("spot release after failed approval",
					zap.Error(relErr), zap.String("position", pos.Nanoid))
			}
			return s.casErr(err, app.ID, "approval requires a reviewable application")
		}

		_, err = s.internships.CreateFromApplication(ctx, approved, pos)
		return err
	})
	if err != nil {
		s.audit.ApplicationDenied(ctx, audit.EventApplicationApproved, app.ID, app.StudentID, mentor.ID, err.Error())
		return models.Application{}, err
	}

	s.audit.ApplicationEvent(ctx, audit.EventApplicationApproved, app.ID, app.StudentID, mentor.ID)
	s.notifyProfile(ctx, app.StudentID, models.EventApplicationApproved,
		"Application approved",
		"Congratulations, your application to "+pos.Title+" was approved.")
	s.log.Info("application approved",
		zap.String("application", app.Nanoid),
		zap.String("position", pos.Nanoid))
	return approved, nil
}

// Reject declines the application.
func (s *Service) Reject(ctx context.Context, appID primitive.ObjectID, mentor models.Profile, notes string) (models.Application, error) {
	app, pos, err := s.loadForDecision(ctx, appID, mentor)
	if err != nil {
		return models.Application{}, err
	}

	rejected, err := s.apps.UpdateStatus(ctx, app.ID,
		models.ReviewableAppStatuses, models.AppStatusRejected, notes)
	if err != nil {
		return models.Application{}, s.casErr(err, app.ID, "rejection requires a reviewable application")
	}

	s.audit.ApplicationEvent(ctx, audit.EventApplicationRejected, app.ID, app.StudentID, mentor.ID)
	s.notifyProfile(ctx, app.StudentID, models.EventApplicationRejected,
		"Application rejected",
		"Your application to "+pos.Title+" was not accepted.")
	return rejected, nil
}

// Withdraw lets the owning student pull the application. Legal from any
// active status including approved; withdrawing an approved application
// frees the position spot. An internship already created from the approval
// is left as-is.
func (s *Service) Withdraw(ctx context.Context, appID primitive.ObjectID, student models.Profile) (models.Application, error) {
	app, err := s.getApplication(ctx, appID)
	if err != nil {
		return models.Application{}, err
	}
	if student.Role != models.RoleStudent || student.ID != app.StudentID {
		return models.Application{}, apperr.E(apperr.ErrPermissionDenied, "application belongs to another student")
	}
	if !app.Withdrawable() {
		return models.Application{}, apperr.E(apperr.ErrInvalidTransition,
			"cannot withdraw an application that is %s", app.Status)
	}

	wasApproved := app.Status == models.AppStatusApproved

	var withdrawn models.Application
	err = txn.WithTransaction(ctx, s.client, func(ctx context.Context) error {
		var err error
		withdrawn, err = s.apps.UpdateStatus(ctx, app.ID,
			models.ActiveAppStatuses, models.AppStatusWithdrawn, models.WithdrawnByStudentNote)
		if err != nil {
			return s.casErr(err, app.ID, "application is no longer withdrawable")
		}
		if wasApproved {
			if err := s.positions.ReleaseSpot(ctx, app.PositionID); err != nil &&
				!errors.Is(err, positionstore.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Application{}, err
	}

	s.audit.ApplicationEvent(ctx, audit.EventApplicationWithdrawn, app.ID, app.StudentID, student.ID)
	s.log.Info("application withdrawn",
		zap.String("application", app.Nanoid),
		zap.Bool("was_approved", wasApproved))
	return withdrawn, nil
}

// Get returns the application by its external ID.
func (s *Service) Get(ctx context.Context, nanoid string) (models.Application, error) {
	app, err := s.apps.GetByNanoid(ctx, nanoid)
	if err != nil {
		if errors.Is(err, applicationstore.ErrNotFound) {
			return models.Application{}, apperr.E(apperr.ErrNotFound, "application %s", nanoid)
		}
		return models.Application{}, err
	}
	return app, nil
}

// ListForStudent returns a student's applications.
func (s *Service) ListForStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Application, error) {
	return s.apps.ListByStudent(ctx, studentID)
}

// ReviewQueue returns the reviewable applications across a mentor's
// positions.
func (s *Service) ReviewQueue(ctx context.Context, mentor models.Profile) ([]models.Application, error) {
	positions, err := s.positions.ListByMentor(ctx, mentor.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(positions))
	for _, p := range positions {
		ids = append(ids, p.ID)
	}
	return s.apps.ListByPositions(ctx, ids, models.ReviewableAppStatuses)
}

/* ------------------------------- internals -------------------------------- */

func (s *Service) getApplication(ctx context.Context, id primitive.ObjectID) (models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, applicationstore.ErrNotFound) {
			return models.Application{}, apperr.E(apperr.ErrNotFound, "application %s", id.Hex())
		}
		return models.Application{}, err
	}
	return app, nil
}

func (s *Service) getPosition(ctx context.Context, id primitive.ObjectID) (models.Position, error) {
	pos, err := s.positions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, positionstore.ErrNotFound) {
			return models.Position{}, apperr.E(apperr.ErrNotFound, "position %s", id.Hex())
		}
		return models.Position{}, err
	}
	return pos, nil
}

// loadForDecision loads the application and its position and checks that the
// acting mentor owns the position.
func (s *Service) loadForDecision(ctx context.Context, appID primitive.ObjectID, mentor models.Profile) (models.Application, models.Position, error) {
	app, err := s.getApplication(ctx, appID)
	if err != nil {
		return models.Application{}, models.Position{}, err
	}
	pos, err := s.getPosition(ctx, app.PositionID)
	if err != nil {
		return models.Application{}, models.Position{}, err
	}
	if !placementpolicy.CanReview(mentor, pos) {
		return models.Application{}, models.Position{}, apperr.E(apperr.ErrPermissionDenied,
			"only the position's mentor may decide on its applications")
	}
	return app, pos, nil
}

// casErr maps a status-CAS miss to the taxonomy.
func (s *Service) casErr(err error, appID primitive.ObjectID, detail string) error {
	switch {
	case errors.Is(err, applicationstore.ErrStatusChanged):
		return apperr.E(apperr.ErrInvalidTransition, "%s", detail)
	case errors.Is(err, applicationstore.ErrNotFound):
		return apperr.E(apperr.ErrNotFound, "application %s", appID.Hex())
	}
	return err
}

func (s *Service) notifyProfile(ctx context.Context, profileID primitive.ObjectID, eventType, title, message string) {
	p, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		s.log.Warn("notification recipient lookup failed",
			zap.Error(err), zap.String("profile", profileID.Hex()))
		return
	}
	s.dispatcher.Notify(ctx, models.Notification{
		RecipientUserID: p.UserID,
		EventType:       eventType,
		Title:           title,
		Message:         message,
		CorrelationID:   notify.NewCorrelationID(),
	})
}
