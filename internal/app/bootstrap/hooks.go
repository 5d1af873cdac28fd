// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// shutdownTimeout bounds Shutdown independently of the run context, which
// may already be cancelled when Shutdown runs.
const shutdownTimeout = 10 * time.Second

// Lifecycle is the ordered set of hooks a bootstrap run goes through.
// It follows the WAFFLE app lifecycle minus the HTTP parts: the process
// does its work and exits instead of serving.
//
// LoadConfig, ConnectDB and Initialize are required; the others may be nil.
type Lifecycle struct {
	Name           string
	LoadConfig     func(logger *zap.Logger) (*config.CoreConfig, AppConfig, error)
	ValidateConfig func(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error
	ConnectDB      func(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error)
	Initialize     func(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error
	Verify         func(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error
	Shutdown       func(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error
}

// Hooks wires this app's lifecycle.
var Hooks = Lifecycle{
	Name:           "stratainit",   // used only for logging/diagnostics
	LoadConfig:     LoadConfig,     // load core + app config
	ValidateConfig: ValidateConfig, // validate MongoDB URI and required values
	ConnectDB:      ConnectDB,      // administrative connection
	Initialize:     Initialize,     // createUser + createCollection
	Verify:         Verify,         // re-read grants/collection, log in as the new user
	Shutdown:       Shutdown,       // disconnect MongoDB
}

// Run executes Hooks once.
func Run(ctx context.Context, logger *zap.Logger) error {
	return Hooks.Run(ctx, logger)
}

// Run executes the lifecycle once, in order, stopping at the first error.
// Shutdown runs whenever ConnectDB succeeded. Every log line of the run,
// including those from packages logging through zap.L(), carries a run_id.
func (h Lifecycle) Run(ctx context.Context, logger *zap.Logger) error {
	logger = logger.With(zap.String("app", h.Name), zap.String("run_id", uuid.NewString()))
	defer zap.ReplaceGlobals(logger)()

	coreCfg, appCfg, err := h.LoadConfig(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if h.ValidateConfig != nil {
		if err := h.ValidateConfig(coreCfg, appCfg, logger); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	deps, err := h.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if h.Shutdown != nil {
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := h.Shutdown(sctx, coreCfg, appCfg, deps, logger); err != nil {
				logger.Warn("shutdown did not complete cleanly", zap.Error(err))
			}
		}()
	}

	if err := h.Initialize(ctx, coreCfg, appCfg, deps, logger); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if h.Verify != nil {
		if err := h.Verify(ctx, coreCfg, appCfg, deps, logger); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
	}

	logger.Info("database initialized")
	return nil
}
