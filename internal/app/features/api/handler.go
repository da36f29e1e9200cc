// internal/app/features/api/handler.go

// Package api is the JSON boundary over the lifecycle services.
// Authentication lives in front of this service; callers identify the
// acting profile with the X-Actor-Profile header (the profile's external
// ID) and the handlers enforce authorization through the lifecycle layer.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/internhub/internal/app/lifecycle/applications"
	"github.com/dalemusser/internhub/internal/app/lifecycle/internships"
	"github.com/dalemusser/internhub/internal/app/lifecycle/orgdirectory"
	"github.com/dalemusser/internhub/internal/app/lifecycle/positioncatalog"
	"github.com/dalemusser/internhub/internal/app/store/notifications"
	"github.com/dalemusser/internhub/internal/app/store/organizations"
	"github.com/dalemusser/internhub/internal/app/store/profiles"
	"github.com/dalemusser/internhub/internal/app/store/users"
	"github.com/dalemusser/internhub/internal/app/system/apperr"
	"github.com/dalemusser/internhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler holds the services the API routes dispatch into.
type Handler struct {
	Orgs          *orgdirectory.Service
	Positions     *positioncatalog.Service
	Applications  *applications.Service
	Internships   *internships.Service
	Profiles      *profilestore.Store
	Users         *userstore.Store
	OrgStore      *organizationstore.Store
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

// actorProfile resolves the acting profile from the X-Actor-Profile header.
func (h *Handler) actorProfile(r *http.Request) (models.Profile, error) {
	nanoid := r.Header.Get("X-Actor-Profile")
	if nanoid == "" {
		return models.Profile{}, apperr.E(apperr.ErrPermissionDenied, "%s", errMissingActor.Error())
	}
	p, err := h.Profiles.GetByNanoid(r.Context(), nanoid)
	if err != nil {
		return models.Profile{}, apperr.E(apperr.ErrPermissionDenied, "unknown actor profile %q", nanoid)
	}
	return p, nil
}

func (h *Handler) orgByParam(r *http.Request) (models.Organization, error) {
	nanoid := chi.URLParam(r, "orgID")
	org, err := h.OrgStore.GetByNanoid(r.Context(), nanoid)
	if err != nil {
		return models.Organization{}, apperr.E(apperr.ErrNotFound, "organization %s", nanoid)
	}
	return org, nil
}

/* ----------------------------- organizations ------------------------------ */

type registerOrgRequest struct {
	Kind         string `json:"kind"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Industry     string `json:"industry"`
	Address      string `json:"address"`
	Website      string `json:"website"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
	EmailDomain  string `json:"email_domain"`
}

func (h *Handler) registerOrganization(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req registerOrgRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	org, err := h.Orgs.Register(r.Context(), actor, models.Organization{
		Kind:         req.Kind,
		Name:         req.Name,
		Description:  req.Description,
		Industry:     req.Industry,
		Address:      req.Address,
		Website:      req.Website,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		EmailDomain:  req.EmailDomain,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, org)
}

func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.OrgStore.ListByStatus(r.Context(),
		r.URL.Query().Get("kind"), r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orgs)
}

func (h *Handler) getOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgByParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, org)
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) reviewOrganization(decision func(*http.Request, models.Organization, models.Profile, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.actorProfile(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		org, err := h.orgByParam(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		var req reviewRequest
		if r.ContentLength > 0 {
			if err := decode(r, &req); err != nil {
				h.writeError(w, err)
				return
			}
		}
		if err := decision(r, org, actor, req.Notes); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *Handler) approveOrganization() http.HandlerFunc {
	return h.reviewOrganization(func(r *http.Request, org models.Organization, actor models.Profile, notes string) error {
		return h.Orgs.Approve(r.Context(), org.ID, actor, notes)
	})
}

func (h *Handler) rejectOrganization() http.HandlerFunc {
	return h.reviewOrganization(func(r *http.Request, org models.Organization, actor models.Profile, notes string) error {
		return h.Orgs.Reject(r.Context(), org.ID, actor, notes)
	})
}

func (h *Handler) suspendOrganization() http.HandlerFunc {
	return h.reviewOrganization(func(r *http.Request, org models.Organization, actor models.Profile, notes string) error {
		return h.Orgs.Suspend(r.Context(), org.ID, actor, notes)
	})
}

func (h *Handler) verifyDomain() http.HandlerFunc {
	return h.reviewOrganization(func(r *http.Request, org models.Organization, actor models.Profile, _ string) error {
		return h.Orgs.VerifyDomain(r.Context(), org.ID, actor)
	})
}

func (h *Handler) unverifyDomain() http.HandlerFunc {
	return h.reviewOrganization(func(r *http.Request, org models.Organization, actor models.Profile, _ string) error {
		return h.Orgs.UnverifyDomain(r.Context(), org.ID, actor)
	})
}

type membershipRequest struct {
	Email string `json:"email"`
}

func (h *Handler) checkMembership(w http.ResponseWriter, r *http.Request) {
	org, err := h.orgByParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req membershipRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	decision, err := h.Orgs.ValidateMembership(r.Context(), req.Email, org.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, decision)
}

func (h *Handler) joinOrganization(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	org, err := h.orgByParam(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// The domain check runs against the actor's registered email, never a
	// caller-supplied one.
	user, err := h.Users.GetByID(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, apperr.E(apperr.ErrNotFound, "user record for profile %s", actor.Nanoid))
		return
	}
	if err := h.Orgs.Join(r.Context(), actor, user.Email, org.ID); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) eligibleOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Orgs.EligibleOrganizations(r.Context(),
		r.URL.Query().Get("email"), r.URL.Query().Get("kind"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orgs)
}

func (h *Handler) suggestOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Orgs.SuggestByDomain(r.Context(),
		r.URL.Query().Get("email"), r.URL.Query().Get("kind"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orgs)
}

/* ------------------------------- positions -------------------------------- */

type positionRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Requirements   string     `json:"requirements"`
	SkillsRequired string     `json:"skills_required"`
	DurationMonths int        `json:"duration_months"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Stipend        *float64   `json:"stipend"`
	MaxStudents    int        `json:"max_students"`
}

func (req positionRequest) model() models.Position {
	return models.Position{
		Title:          req.Title,
		Description:    req.Description,
		Requirements:   req.Requirements,
		SkillsRequired: req.SkillsRequired,
		DurationMonths: req.DurationMonths,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Stipend:        req.Stipend,
		MaxStudents:    req.MaxStudents,
	}
}

func (h *Handler) createPosition(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req positionRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	pos, err := h.Positions.Create(r.Context(), actor, req.model())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, pos)
}

func (h *Handler) editPosition(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	current, err := h.Positions.Get(r.Context(), chi.URLParam(r, "positionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req positionRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	p := req.model()
	p.ID = current.ID
	if err := h.Positions.Edit(r.Context(), actor, p); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) setPositionActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.actorProfile(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		pos, err := h.Positions.Get(r.Context(), chi.URLParam(r, "positionID"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		if err := h.Positions.SetActive(r.Context(), actor, pos.ID, active); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (h *Handler) browsePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.Positions.Browse(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, positions)
}

// positionResponse augments the stored fields with the derived ones.
type positionResponse struct {
	models.Position
	AvailableSpots int  `json:"available_spots"`
	Open           bool `json:"open_for_applications"`
}

func (h *Handler) getPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := h.Positions.Get(r.Context(), chi.URLParam(r, "positionID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, positionResponse{
		Position:       pos,
		AvailableSpots: pos.AvailableSpots(),
		Open:           pos.OpenForApplications(time.Now().UTC()),
	})
}

/* ------------------------------ applications ------------------------------ */

type applyRequest struct {
	PositionID  string `json:"position_id"` // position nanoid
	CoverLetter string `json:"cover_letter"`
}

func (h *Handler) createApplication(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req applyRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	pos, err := h.Positions.Get(r.Context(), req.PositionID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	app, err := h.Applications.Create(r.Context(), actor, pos.ID, req.CoverLetter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, app)
}

func (h *Handler) getApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.Applications.Get(r.Context(), chi.URLParam(r, "appID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, app)
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var (
		apps []models.Application
	)
	switch actor.Role {
	case models.RoleStudent:
		apps, err = h.Applications.ListForStudent(r.Context(), actor.ID)
	case models.RoleMentor:
		apps, err = h.Applications.ReviewQueue(r.Context(), actor)
	default:
		h.writeError(w, apperr.E(apperr.ErrPermissionDenied, "role %q has no application list", actor.Role))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, apps)
}

// appDecision runs a mentor decision identified by URL param through fn.
func (h *Handler) appDecision(fn func(*http.Request, primitive.ObjectID, models.Profile, string) (models.Application, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.actorProfile(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		app, err := h.Applications.Get(r.Context(), chi.URLParam(r, "appID"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		var req reviewRequest
		if r.ContentLength > 0 {
			if err := decode(r, &req); err != nil {
				h.writeError(w, err)
				return
			}
		}
		updated, err := fn(r, app.ID, actor, req.Notes)
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, updated)
	}
}

func (h *Handler) reviewApplication() http.HandlerFunc {
	return h.appDecision(func(r *http.Request, id primitive.ObjectID, actor models.Profile, _ string) (models.Application, error) {
		return h.Applications.Review(r.Context(), id, actor)
	})
}

func (h *Handler) approveApplication() http.HandlerFunc {
	return h.appDecision(func(r *http.Request, id primitive.ObjectID, actor models.Profile, notes string) (models.Application, error) {
		return h.Applications.Approve(r.Context(), id, actor, notes)
	})
}

func (h *Handler) rejectApplication() http.HandlerFunc {
	return h.appDecision(func(r *http.Request, id primitive.ObjectID, actor models.Profile, notes string) (models.Application, error) {
		return h.Applications.Reject(r.Context(), id, actor, notes)
	})
}

func (h *Handler) withdrawApplication() http.HandlerFunc {
	return h.appDecision(func(r *http.Request, id primitive.ObjectID, actor models.Profile, _ string) (models.Application, error) {
		return h.Applications.Withdraw(r.Context(), id, actor)
	})
}

type interviewRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
}

func (h *Handler) scheduleInterview(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	app, err := h.Applications.Get(r.Context(), chi.URLParam(r, "appID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req interviewRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	iv, err := h.Applications.ScheduleInterview(r.Context(), app.ID, actor, req.ScheduledAt, req.Location, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, iv)
}

/* ------------------------------ internships ------------------------------- */

func (h *Handler) getInternship(w http.ResponseWriter, r *http.Request) {
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, struct {
		models.Internship
		Progress int `json:"progress_percentage"`
	}{in, in.ProgressPercentage(time.Now().UTC())})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setInternshipStatus(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req statusRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Internships.SetStatus(r.Context(), in.ID, actor, req.Status); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type gradeRequest struct {
	Grade string `json:"grade"`
}

func (h *Handler) setFinalGrade(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req gradeRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Internships.SetFinalGrade(r.Context(), in.ID, actor, req.Grade); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) issueCertificate(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.Internships.IssueCertificate(r.Context(), in.ID, actor); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type assignTeacherRequest struct {
	TeacherProfile string `json:"teacher_profile"` // profile nanoid
}

func (h *Handler) assignTeacher(w http.ResponseWriter, r *http.Request) {
	if _, err := h.actorProfile(r); err != nil {
		h.writeError(w, err)
		return
	}
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req assignTeacherRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	teacher, err := h.Profiles.GetByNanoid(r.Context(), req.TeacherProfile)
	if err != nil {
		h.writeError(w, apperr.E(apperr.ErrNotFound, "profile %s", req.TeacherProfile))
		return
	}
	if err := h.Internships.AssignTeacher(r.Context(), in.ID, teacher); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type reportRequest struct {
	WeekNumber int                    `json:"week_number"`
	Student    *models.StudentReport  `json:"student,omitempty"`
	Mentor     *models.MentorReport   `json:"mentor,omitempty"`
	Teacher    *models.TeacherReport  `json:"teacher,omitempty"`
}

func (h *Handler) submitReport(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	var req reportRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	created, err := h.Internships.SubmitReport(r.Context(), in.ID, actor, models.ProgressReport{
		WeekNumber: req.WeekNumber,
		Student:    req.Student,
		Mentor:     req.Mentor,
		Teacher:    req.Teacher,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	reports, err := h.Internships.Reports(r.Context(), in.ID, r.URL.Query().Get("role"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) remindProgress(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	in, err := h.Internships.Get(r.Context(), chi.URLParam(r, "internshipID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	missing, err := h.Internships.RemindProgress(r.Context(), in.ID, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]int{"missing_weeks": missing})
}

/* ------------------------------ notifications ----------------------------- */

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	unreadOnly := r.URL.Query().Get("unread") == "true"
	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	items, err := h.Notifications.ListForUser(r.Context(), actor.UserID, unreadOnly, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		h.writeError(w, apperr.E(apperr.ErrValidation, "malformed notification id"))
		return
	}
	if err := h.Notifications.MarkRead(r.Context(), id, actor.UserID); err != nil {
		h.writeError(w, apperr.E(apperr.ErrNotFound, "notification %s", id.Hex()))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actorProfile(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	n, err := h.Notifications.MarkAllRead(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"marked": n})
}
