// internal/app/system/dbinit/dbinit.go
package dbinit

import (
	"context"
	"fmt"

	"github.com/dalemusser/stratainit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*
Apply runs the bootstrap plan against db: create the application user, then
create the collection. It is meant to run once per fresh volume. Nothing here
checks for prior state; MongoDB's own rejection of a duplicate user is the
signal that the database was already initialized, and that error goes back
to the caller so it can halt startup.
*/
func Apply(ctx context.Context, db *mongo.Database, plan models.Plan) error {
	cred := plan.Credential

	if err := CreateApplicationUser(ctx, db, cred); err != nil {
		logFailure("createUser", err,
			zap.String("database", db.Name()),
			zap.String("user", cred.Username))
		return err
	}
	zap.L().Info("created application user",
		zap.String("database", db.Name()),
		zap.String("user", cred.Username),
		zap.Strings("roles", grantStrings(cred.Roles)))

	if err := CreateCollection(ctx, db, plan.Collection); err != nil {
		logFailure("createCollection", err,
			zap.String("database", db.Name()),
			zap.String("collection", plan.Collection))
		return err
	}
	zap.L().Info("created collection",
		zap.String("database", db.Name()),
		zap.String("collection", plan.Collection))

	return nil
}

// CreateApplicationUser issues createUser on db for cred.
// Fails if the user already exists on db or the connection lacks the
// createUser privilege.
func CreateApplicationUser(ctx context.Context, db *mongo.Database, cred models.Credential) error {
	roles := make(bson.A, 0, len(cred.Roles))
	for _, g := range cred.Roles {
		roles = append(roles, bson.D{
			{Key: "role", Value: g.Role},
			{Key: "db", Value: g.DB},
		})
	}

	cmd := bson.D{
		{Key: "createUser", Value: cred.Username},
		{Key: "pwd", Value: cred.Password},
		{Key: "roles", Value: roles},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("create user %q on %q: %w", cred.Username, db.Name(), err)
	}
	return nil
}

// CreateCollection creates an empty collection with no options, so no
// validator, indexes or capped settings are attached.
func CreateCollection(ctx context.Context, db *mongo.Database, name string) error {
	if err := db.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("create collection %q on %q: %w", name, db.Name(), err)
	}
	return nil
}

// logFailure records why a step failed in operator terms before the error
// is propagated.
func logFailure(step string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("step", step), zap.Error(err))
	switch {
	case IsUserExists(err), IsNamespaceExists(err):
		zap.L().Error("bootstrap rejected: database already initialized", fields...)
	case IsUnauthorized(err), IsAuthFailed(err):
		zap.L().Error("bootstrap rejected: connection lacks administrative privilege", fields...)
	default:
		zap.L().Error("bootstrap failed", fields...)
	}
}

func grantStrings(grants []models.RoleGrant) []string {
	out := make([]string, len(grants))
	for i, g := range grants {
		out[i] = g.Role + "@" + g.DB
	}
	return out
}
