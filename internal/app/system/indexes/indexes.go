// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/internhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

The applications partial unique index is load-bearing: it is the server-side
enforcement of the one-active-application-per-(student,position) invariant,
so a failure to create it must abort startup rather than be logged and
ignored.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProfiles(ctx, db); err != nil {
		problems = append(problems, "profiles: "+err.Error())
	}
	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensurePositions(ctx, db); err != nil {
		problems = append(problems, "positions: "+err.Error())
	}
	if err := ensureApplications(ctx, db); err != nil {
		problems = append(problems, "applications: "+err.Error())
	}
	if err := ensureInterviews(ctx, db); err != nil {
		problems = append(problems, "interviews: "+err.Error())
	}
	if err := ensureInternships(ctx, db); err != nil {
		problems = append(problems, "internships: "+err.Error())
	}
	if err := ensureProgressReports(ctx, db); err != nil {
		problems = append(problems, "progress_reports: "+err.Error())
	}
	if err := ensureNotifications(ctx, db); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: ensure a set of desired indexes for one collection            */
/* -------------------------------------------------------------------------- */

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// Same keys under a different name or with different options from
			// a prior deploy: drop by name and recreate once.
			if isOptionsConflictErr(err) && name != "" {
				if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr == nil {
					if _, err2 := coll.Indexes().CreateOne(ctx, m); err2 == nil {
						zap.L().Info("index recreated",
							zap.String("collection", coll.Name()),
							zap.String("name", name))
						continue
					}
				}
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Mongo/DocDB returns IndexOptionsConflict when an index with the same keys
// already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict")
}

func truePtr() *bool { b := true; return &b }

func nanoidIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "nanoid", Value: 1}},
		Options: &options.IndexOptions{Name: strPtr("nanoid_unique"), Unique: truePtr()},
	}
}

func strPtr(s string) *string { return &s }

/* ------------------------------- collections ------------------------------ */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("email_unique"), Unique: truePtr()},
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("full_name_ci")},
		},
	})
}

func ensureProfiles(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("profiles"), []mongo.IndexModel{
		nanoidIndex(),
		{
			// One role profile per person.
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("user_unique"), Unique: truePtr()},
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "role", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("org_role")},
		},
	})
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("organizations"), []mongo.IndexModel{
		nanoidIndex(),
		{
			Keys:    bson.D{{Key: "kind", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("kind_name_unique"), Unique: truePtr()},
		},
		{
			Keys:    bson.D{{Key: "registration_status", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("registration_status")},
		},
		{
			Keys:    bson.D{{Key: "email_domain", Value: 1}, {Key: "domain_verified", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("email_domain")},
		},
	})
}

func ensurePositions(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("positions"), []mongo.IndexModel{
		nanoidIndex(),
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "is_active", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("company_active")},
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("mentor")},
		},
	})
}

func ensureApplications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("applications"), []mongo.IndexModel{
		nanoidIndex(),
		{
			// At most one active application per (student, position). The
			// partial filter restricts uniqueness to the active status set;
			// rejected and withdrawn instances never block re-application.
			Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "position_id", Value: 1}},
			Options: &options.IndexOptions{
				Name:   strPtr("active_pair_unique"),
				Unique: truePtr(),
				PartialFilterExpression: bson.M{
					"status": bson.M{"$in": models.ActiveAppStatuses},
				},
			},
		},
		{
			Keys:    bson.D{{Key: "position_id", Value: 1}, {Key: "status", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("position_status")},
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "applied_at", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("student_recent")},
		},
	})
}

func ensureInterviews(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("interviews"), []mongo.IndexModel{
		nanoidIndex(),
		{
			Keys:    bson.D{{Key: "application_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("application_unique"), Unique: truePtr()},
		},
	})
}

func ensureInternships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("internships"), []mongo.IndexModel{
		nanoidIndex(),
		{
			// One internship per approved application.
			Keys:    bson.D{{Key: "application_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("application_unique"), Unique: truePtr()},
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("student")},
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("mentor_status")},
		},
	})
}

func ensureProgressReports(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("progress_reports"), []mongo.IndexModel{
		nanoidIndex(),
		{
			// One record per (internship, reporter role, week).
			Keys: bson.D{
				{Key: "internship_id", Value: 1},
				{Key: "reporter_role", Value: 1},
				{Key: "week_number", Value: 1},
			},
			Options: &options.IndexOptions{Name: strPtr("period_unique"), Unique: truePtr()},
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipient_user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("recipient_recent")},
		},
		{
			Keys:    bson.D{{Key: "recipient_user_id", Value: 1}, {Key: "read", Value: 1}},
			Options: &options.IndexOptions{Name: strPtr("recipient_unread")},
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("timestamp")},
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: &options.IndexOptions{Name: strPtr("category_event")},
		},
	})
}
