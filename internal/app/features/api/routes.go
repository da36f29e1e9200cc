// internal/app/features/api/routes.go
package api

import "github.com/go-chi/chi/v5"

// Routes returns the API subrouter; mounted under /api/v1.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/organizations", func(r chi.Router) {
		r.Post("/", h.registerOrganization)
		r.Get("/", h.listOrganizations)
		r.Get("/eligible", h.eligibleOrganizations)
		r.Get("/suggest", h.suggestOrganizations)
		r.Route("/{orgID}", func(r chi.Router) {
			r.Get("/", h.getOrganization)
			r.Post("/approve", h.approveOrganization())
			r.Post("/reject", h.rejectOrganization())
			r.Post("/suspend", h.suspendOrganization())
			r.Post("/verify-domain", h.verifyDomain())
			r.Post("/unverify-domain", h.unverifyDomain())
			r.Post("/membership", h.checkMembership)
			r.Post("/join", h.joinOrganization)
		})
	})

	r.Route("/positions", func(r chi.Router) {
		r.Post("/", h.createPosition)
		r.Get("/", h.browsePositions)
		r.Route("/{positionID}", func(r chi.Router) {
			r.Get("/", h.getPosition)
			r.Put("/", h.editPosition)
			r.Post("/activate", h.setPositionActive(true))
			r.Post("/deactivate", h.setPositionActive(false))
		})
	})

	r.Route("/applications", func(r chi.Router) {
		r.Post("/", h.createApplication)
		r.Get("/", h.listApplications)
		r.Route("/{appID}", func(r chi.Router) {
			r.Get("/", h.getApplication)
			r.Post("/review", h.reviewApplication())
			r.Post("/interview", h.scheduleInterview)
			r.Post("/approve", h.approveApplication())
			r.Post("/reject", h.rejectApplication())
			r.Post("/withdraw", h.withdrawApplication())
		})
	})

	r.Route("/internships", func(r chi.Router) {
		r.Route("/{internshipID}", func(r chi.Router) {
			r.Get("/", h.getInternship)
			r.Post("/status", h.setInternshipStatus)
			r.Post("/grade", h.setFinalGrade)
			r.Post("/certificate", h.issueCertificate)
			r.Post("/assign-teacher", h.assignTeacher)
			r.Post("/reports", h.submitReport)
			r.Get("/reports", h.listReports)
			r.Post("/remind", h.remindProgress)
		})
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", h.listNotifications)
		r.Post("/read-all", h.markAllNotificationsRead)
		r.Post("/{notificationID}/read", h.markNotificationRead)
	})

	return r
}
