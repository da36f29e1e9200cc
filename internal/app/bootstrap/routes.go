// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	apifeature "github.com/dalemusser/internhub/internal/app/features/api"
	healthfeature "github.com/dalemusser/internhub/internal/app/features/health"
	applicationsvc "github.com/dalemusser/internhub/internal/app/lifecycle/applications"
	internshipsvc "github.com/dalemusser/internhub/internal/app/lifecycle/internships"
	"github.com/dalemusser/internhub/internal/app/lifecycle/orgdirectory"
	"github.com/dalemusser/internhub/internal/app/lifecycle/positioncatalog"
	"github.com/dalemusser/internhub/internal/app/notify"
	applicationstore "github.com/dalemusser/internhub/internal/app/store/applications"
	auditstore "github.com/dalemusser/internhub/internal/app/store/audit"
	internshipstore "github.com/dalemusser/internhub/internal/app/store/internships"
	interviewstore "github.com/dalemusser/internhub/internal/app/store/interviews"
	notificationstore "github.com/dalemusser/internhub/internal/app/store/notifications"
	organizationstore "github.com/dalemusser/internhub/internal/app/store/organizations"
	positionstore "github.com/dalemusser/internhub/internal/app/store/positions"
	profilestore "github.com/dalemusser/internhub/internal/app/store/profiles"
	reportstore "github.com/dalemusser/internhub/internal/app/store/reports"
	userstore "github.com/dalemusser/internhub/internal/app/store/users"
	"github.com/dalemusser/internhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. InternHub constructs the collection
// stores, the audit logger, the notification dispatcher, and the lifecycle
// services, then mounts the health endpoints and the JSON API.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	orgs := organizationstore.New(db)
	profiles := profilestore.New(db)
	users := userstore.New(db)
	positions := positionstore.New(db)
	apps := applicationstore.New(db)
	interns := internshipstore.New(db)
	reports := reportstore.New(db)
	interviews := interviewstore.New(db)
	notifications := notificationstore.New(db)

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Registry:  appCfg.AuditLogRegistry,
		Placement: appCfg.AuditLogPlacement,
	})

	dispatcher := notify.NewStoreDispatcher(notifications, logger)

	internshipSvc := internshipsvc.New(interns, reports, profiles, dispatcher, audit, logger)
	applicationSvc := applicationsvc.New(deps.MongoClient, apps, positions, profiles, interviews, internshipSvc, dispatcher, audit, logger)
	orgSvc := orgdirectory.New(orgs, profiles, dispatcher, audit, logger)
	positionSvc := positioncatalog.New(positions, orgs, logger)

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	apiHandler := &apifeature.Handler{
		Orgs:          orgSvc,
		Positions:     positionSvc,
		Applications:  applicationSvc,
		Internships:   internshipSvc,
		Profiles:      profiles,
		Users:         users,
		OrgStore:      orgs,
		Notifications: notifications,
		Log:           logger,
	}
	r.Mount("/api/v1", apifeature.Routes(apiHandler))

	return r, nil
}
