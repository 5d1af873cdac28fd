// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/stratainit/internal/app/system/dbcheck"
	"github.com/dalemusser/stratainit/internal/app/system/dbinit"
	"github.com/dalemusser/stratainit/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// ConnectDB opens the administrative connection.
//
// The pool is kept small: the run issues a few sequential commands and exits.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	poolCfg := wafflemongo.DefaultPoolConfig()
	poolCfg.MinPoolSize = 0
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	poolCfg.ConnectTimeout = timeouts.Connect()
	poolCfg.ServerSelectionTimeout = timeouts.Connect()

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Connect(), logger, "connect")
	defer cancel()

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}

	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
	)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
	}, nil
}

// Initialize creates the application user and the collection.
//
// A failure here is final: a user-already-exists error means this volume
// was initialized before, anything else means the environment is wrong.
// Neither is retried.
func Initialize(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Command(), logger, "initialize")
	defer cancel()

	plan := appCfg.Plan()
	logger.Info("initializing database",
		zap.String("database", plan.Database),
		zap.String("user", plan.Credential.Username),
		zap.String("role", appCfg.AppRole),
		zap.String("collection", plan.Collection),
	)
	return dbinit.Apply(ctx, deps.MongoDatabase, plan)
}

// Verify re-reads what Initialize created and logs in as the new user.
// Skipped when verify_after_init is false.
func Verify(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if !appCfg.VerifyAfterInit {
		logger.Debug("post-init verification disabled")
		return nil
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Command(), logger, "verify")
	defer cancel()

	return dbcheck.Verify(ctx, deps.MongoDatabase, appCfg.MongoURI, appCfg.Plan(), timeouts.Connect())
}
