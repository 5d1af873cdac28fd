// internal/app/system/dbcheck/dbcheck.go
//
// Package dbcheck inspects the state a bootstrap run leaves behind: the
// application user, its grants, the collection, and whether the credential
// can actually log in.
package dbcheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/stratainit/internal/app/system/timeouts"
	"github.com/dalemusser/stratainit/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrGrantMissing      = errors.New("user is missing an expected role grant")
	ErrCollectionMissing = errors.New("collection does not exist")
	ErrValidatorAttached = errors.New("collection has a validator attached")
)

// LookupUser returns the usersInfo entry for name on db.
// Returns ErrUserNotFound when db has no such user.
func LookupUser(ctx context.Context, db *mongo.Database, name string) (*models.UserInfo, error) {
	var out struct {
		Users []models.UserInfo `bson:"users"`
	}
	cmd := bson.D{{Key: "usersInfo", Value: name}}
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, ErrUserNotFound
	}
	return &out.Users[0], nil
}

// InspectCollection reports whether name exists on db, how many documents it
// holds, and whether a validator is attached. A missing collection is not an
// error; Exists is false.
func InspectCollection(ctx context.Context, db *mongo.Database, name string) (models.CollectionInfo, error) {
	info := models.CollectionInfo{Name: name}

	specs, err := db.ListCollectionSpecifications(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return info, err
	}
	if len(specs) == 0 {
		return info, nil
	}
	info.Exists = true
	if specs[0].Options != nil {
		if _, err := specs[0].Options.LookupErr("validator"); err == nil {
			info.HasValidator = true
		}
	}

	n, err := db.Collection(name).CountDocuments(ctx, bson.D{})
	if err != nil {
		return info, err
	}
	info.Documents = n
	return info, nil
}

// CheckLogin opens a separate client to uri authenticating as cred against
// authDB and pings the server, bounded by timeouts.Ping. The URI's own
// credentials, if any, are replaced. A nil error means the credential
// authenticates on authDB.
func CheckLogin(ctx context.Context, uri string, cred models.Credential, authDB string, timeout time.Duration) error {
	opts := options.Client().
		ApplyURI(uri).
		SetAuth(options.Credential{
			Username:   cred.Username,
			Password:   cred.Password,
			AuthSource: authDB,
		}).
		SetMaxPoolSize(1).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			zap.L().Debug("login check disconnect failed", zap.Error(err))
		}
	}()

	// The ping is where the driver selects a server and authenticates.
	pctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), zap.L(), "login ping")
	defer cancel()
	return client.Ping(pctx, nil)
}

// Verify checks that plan was applied to db: the user exists with every
// planned grant, the collection exists without a validator, and the
// credential authenticates against the plan's database via uri.
func Verify(ctx context.Context, db *mongo.Database, uri string, plan models.Plan, timeout time.Duration) error {
	cred := plan.Credential

	user, err := LookupUser(ctx, db, cred.Username)
	if err != nil {
		return fmt.Errorf("lookup user %q: %w", cred.Username, err)
	}
	for _, g := range cred.Roles {
		if !user.HasGrant(g.Role, g.DB) {
			return fmt.Errorf("user %q: %s@%s: %w", cred.Username, g.Role, g.DB, ErrGrantMissing)
		}
	}

	info, err := InspectCollection(ctx, db, plan.Collection)
	if err != nil {
		return fmt.Errorf("inspect collection %q: %w", plan.Collection, err)
	}
	if !info.Exists {
		return fmt.Errorf("collection %q: %w", plan.Collection, ErrCollectionMissing)
	}
	if info.HasValidator {
		return fmt.Errorf("collection %q: %w", plan.Collection, ErrValidatorAttached)
	}

	if err := CheckLogin(ctx, uri, cred, plan.Database, timeout); err != nil {
		return fmt.Errorf("login as %q on %q: %w", cred.Username, plan.Database, err)
	}

	zap.L().Info("bootstrap verified",
		zap.String("database", plan.Database),
		zap.String("user", cred.Username),
		zap.String("collection", plan.Collection),
		zap.Int64("documents", info.Documents))
	return nil
}
