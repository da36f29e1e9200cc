// internal/app/lifecycle/internships/service.go

// Package internships manages the placement produced by an approved
// application: its status machine, grading, certificates, and the weekly
// progress reports filed against it.
package internships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/internhub/internal/app/notify"
	"github.com/dalemusser/internhub/internal/app/policy/placementpolicy"
	"github.com/dalemusser/internhub/internal/app/store/audit"
	"github.com/dalemusser/internhub/internal/app/store/internships"
	"github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/store/reports"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Service struct {
	internships *internshipstore.Store
	reports     *reportstore.Store
	profiles    *profilestore.Store
	dispatcher  notify.Dispatcher
	audit       *auditlog.Logger
	log         *zap.Logger
}

func New(internships *internshipstore.Store, reports *reportstore.Store, profiles *profilestore.Store, dispatcher notify.Dispatcher, auditLog *auditlog.Logger, log *zap.Logger) *Service {
	return &Service{
		internships: internships,
		reports:     reports,
		profiles:    profiles,
		dispatcher:  dispatcher,
		audit:       auditLog,
		log:         log,
	}
}

// CreateFromApplication materializes the internship for an approved
// application. The start date is the later of the position's start date and
// today; the end date follows from the position's duration.
func (s *Service) CreateFromApplication(ctx context.Context, app models.Application, pos models.Position) (models.Internship, error) {
	if app.Status != models.AppStatusApproved {
		return models.Internship{}, apperr.E(apperr.ErrInvalidTransition,
			"application is %s, not approved", app.Status)
	}

	start := pos.StartDate
	if today := time.Now().UTC(); today.After(start) {
		start = today
	}

	in := models.Internship{
		ApplicationID: app.ID,
		StudentID:     app.StudentID,
		MentorID:      pos.MentorID,
		StartDate:     start,
		EndDate:       start.AddDate(0, pos.DurationMonths, 0),
	}
	created, err := s.internships.Create(ctx, in)
	if err != nil {
		if errors.Is(err, internshipstore.ErrAlreadyExists) {
			return models.Internship{}, apperr.E(apperr.ErrConflict,
				"internship already exists for application %s", app.Nanoid)
		}
		return models.Internship{}, err
	}

	s.audit.InternshipEvent(ctx, audit.EventInternshipCreated, created.ID, created.StudentID, pos.MentorID, nil)
	s.log.Info("internship created",
		zap.String("internship", created.Nanoid),
		zap.String("application", app.Nanoid))
	return created, nil
}

// SetStatus moves the internship between active, on_hold, completed, and
// terminated. Only its mentor or assigned teacher may act.
func (s *Service) SetStatus(ctx context.Context, internshipID primitive.ObjectID, actor models.Profile, status string) error {
	in, err := s.get(ctx, internshipID)
	if err != nil {
		return err
	}
	if !placementpolicy.CanManageInternship(actor, in) {
		return apperr.E(apperr.ErrPermissionDenied, "only the internship's mentor or teacher may change its status")
	}
	if !placementpolicy.InternshipTransitionAllowed(in.Status, status) {
		return apperr.E(apperr.ErrInvalidTransition, "cannot move internship from %s to %s", in.Status, status)
	}

	if err := s.internships.SetStatus(ctx, internshipID, status); err != nil {
		return err
	}

	s.audit.InternshipEvent(ctx, audit.EventInternshipStatus, in.ID, in.StudentID, actor.ID,
		map[string]string{"from": in.Status, "to": status})
	s.notifyStudent(ctx, in, models.EventInternshipStatusChanged,
		"Internship status changed",
		"Your internship status changed to "+status+".")
	return nil
}

// AssignTeacher attaches the supervising teacher.
func (s *Service) AssignTeacher(ctx context.Context, internshipID primitive.ObjectID, teacher models.Profile) error {
	if teacher.Role != models.RoleTeacher {
		return apperr.E(apperr.ErrValidation, "profile %s is not a teacher", teacher.Nanoid)
	}
	if _, err := s.get(ctx, internshipID); err != nil {
		return err
	}
	return s.internships.AssignTeacher(ctx, internshipID, teacher.ID)
}

// SetFinalGrade records the final grade, settable at any status by the
// mentor or teacher.
func (s *Service) SetFinalGrade(ctx context.Context, internshipID primitive.ObjectID, actor models.Profile, grade string) error {
	if !models.ValidFinalGrade(grade) {
		return apperr.E(apperr.ErrValidation, "unknown grade %q", grade)
	}
	in, err := s.get(ctx, internshipID)
	if err != nil {
		return err
	}
	if !placementpolicy.CanManageInternship(actor, in) {
		return apperr.E(apperr.ErrPermissionDenied, "only the internship's mentor or teacher may grade it")
	}
	if err := s.internships.SetFinalGrade(ctx, internshipID, grade); err != nil {
		return err
	}
	s.audit.InternshipEvent(ctx, audit.EventGradeAssigned, in.ID, in.StudentID, actor.ID,
		map[string]string{"grade": grade})
	return nil
}

// IssueCertificate marks the certificate issued. Like the final grade it is
// free-standing, settable at any status.
func (s *Service) IssueCertificate(ctx context.Context, internshipID primitive.ObjectID, actor models.Profile) error {
	in, err := s.get(ctx, internshipID)
	if err != nil {
		return err
	}
	if !placementpolicy.CanManageInternship(actor, in) {
		return apperr.E(apperr.ErrPermissionDenied, "only the internship's mentor or teacher may issue the certificate")
	}
	if err := s.internships.IssueCertificate(ctx, internshipID); err != nil {
		return err
	}
	s.audit.InternshipEvent(ctx, audit.EventCertificateIssued, in.ID, in.StudentID, actor.ID, nil)
	return nil
}

// SubmitReport files a weekly progress report. Exactly one report per
// (internship, reporter role, week); the payload section must match the
// reporter's role.
func (s *Service) SubmitReport(ctx context.Context, internshipID primitive.ObjectID, reporter models.Profile, report models.ProgressReport) (models.ProgressReport, error) {
	if report.WeekNumber < 1 {
		return models.ProgressReport{}, apperr.E(apperr.ErrValidation, "week number must be >= 1, got %d", report.WeekNumber)
	}
	in, err := s.get(ctx, internshipID)
	if err != nil {
		return models.ProgressReport{}, err
	}
	if !placementpolicy.CanReport(reporter, in) {
		return models.ProgressReport{}, apperr.E(apperr.ErrPermissionDenied,
			"profile is not a participant of this internship")
	}
	if err := validateReportPayload(reporter.Role, report); err != nil {
		return models.ProgressReport{}, err
	}

	report.InternshipID = in.ID
	report.ReporterRole = reporter.Role
	report.ReporterUserID = reporter.UserID

	created, err := s.reports.Create(ctx, report)
	if err != nil {
		if errors.Is(err, reportstore.ErrDuplicatePeriod) {
			return models.ProgressReport{}, apperr.E(apperr.ErrConflict,
				"a %s report for week %d already exists", reporter.Role, report.WeekNumber)
		}
		return models.ProgressReport{}, err
	}
	return created, nil
}

func validateReportPayload(role string, r models.ProgressReport) error {
	switch role {
	case models.RoleStudent:
		if r.Student == nil {
			return apperr.E(apperr.ErrValidation, "student report section is required")
		}
		if r.Mentor != nil || r.Teacher != nil {
			return apperr.E(apperr.ErrValidation, "student reports carry only the student section")
		}
		if r.Student.SatisfactionRating != 0 && !models.ValidRating(r.Student.SatisfactionRating) {
			return apperr.E(apperr.ErrValidation, "satisfaction rating must be 1-5")
		}
	case models.RoleMentor:
		if r.Mentor == nil {
			return apperr.E(apperr.ErrValidation, "mentor report section is required")
		}
		if r.Student != nil || r.Teacher != nil {
			return apperr.E(apperr.ErrValidation, "mentor reports carry only the mentor section")
		}
		if r.Mentor.AttendanceRating != 0 && !models.ValidRating(r.Mentor.AttendanceRating) {
			return apperr.E(apperr.ErrValidation, "attendance rating must be 1-5")
		}
	case models.RoleTeacher:
		if r.Teacher == nil {
			return apperr.E(apperr.ErrValidation, "teacher report section is required")
		}
		if r.Student != nil || r.Mentor != nil {
			return apperr.E(apperr.ErrValidation, "teacher reports carry only the teacher section")
		}
	default:
		return apperr.E(apperr.ErrPermissionDenied, "role %q may not file progress reports", role)
	}
	return nil
}

// RemindProgress sends the student a reminder for any elapsed week with no
// student report on file, and returns the missing week numbers. Only the
// mentor or assigned teacher may send it, and only while the internship is
// active. No notification goes out when nothing is missing.
func (s *Service) RemindProgress(ctx context.Context, internshipID primitive.ObjectID, actor models.Profile) ([]int, error) {
	in, err := s.get(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if !placementpolicy.CanManageInternship(actor, in) {
		return nil, apperr.E(apperr.ErrPermissionDenied, "only the internship's mentor or teacher may send reminders")
	}
	if in.Status != models.InternshipActive {
		return nil, apperr.E(apperr.ErrInvalidTransition, "internship is %s, not active", in.Status)
	}

	current := elapsedWeeks(in, time.Now().UTC())
	if current < 1 {
		return nil, nil
	}
	filed, err := s.reports.WeeksReported(ctx, in.ID, models.RoleStudent)
	if err != nil {
		return nil, err
	}
	have := make(map[int]bool, len(filed))
	for _, w := range filed {
		have[w] = true
	}
	var missing []int
	for w := 1; w <= current; w++ {
		if !have[w] {
			missing = append(missing, w)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	s.notifyStudent(ctx, in, models.EventProgressReminder,
		"Progress reports due",
		fmt.Sprintf("You have %d weekly report(s) outstanding for your internship.", len(missing)))
	return missing, nil
}

// elapsedWeeks counts how many report weeks have begun as of the given time,
// clamped to the internship's span. Week 1 starts at StartDate.
func elapsedWeeks(in models.Internship, asOf time.Time) int {
	if asOf.Before(in.StartDate) {
		return 0
	}
	if asOf.After(in.EndDate) {
		asOf = in.EndDate
	}
	return int(asOf.Sub(in.StartDate)/(7*24*time.Hour)) + 1
}

// Reports returns an internship's progress reports.
func (s *Service) Reports(ctx context.Context, internshipID primitive.ObjectID, role string) ([]models.ProgressReport, error) {
	return s.reports.ListByInternship(ctx, internshipID, role)
}

// Get returns the internship by its external ID.
func (s *Service) Get(ctx context.Context, nanoid string) (models.Internship, error) {
	in, err := s.internships.GetByNanoid(ctx, nanoid)
	if err != nil {
		if errors.Is(err, internshipstore.ErrNotFound) {
			return models.Internship{}, apperr.E(apperr.ErrNotFound, "internship %s", nanoid)
		}
		return models.Internship{}, err
	}
	return in, nil
}

func (s *Service) get(ctx context.Context, id primitive.ObjectID) (models.Internship, error) {
	in, err := s.internships.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internshipstore.ErrNotFound) {
			return models.Internship{}, apperr.E(apperr.ErrNotFound, "internship %s", id.Hex())
		}
		return models.Internship{}, err
	}
	return in, nil
}

func (s *Service) notifyStudent(ctx context.Context, in models.Internship, eventType, title, message string) {
	p, err := s.profiles.GetByID(ctx, in.StudentID)
	if err != nil {
		s.log.Warn("student profile lookup failed",
			zap.Error(err), zap.String("internship", in.Nanoid))
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
