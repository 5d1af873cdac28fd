package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/stratainit/internal/app/system/dbinit"
	"github.com/dalemusser/stratainit/internal/app/system/timeouts"
	"github.com/dalemusser/stratainit/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// testAppConfig targets the per-test database so user and collection are
// cleaned up with it.
func testAppConfig(t *testing.T) AppConfig {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := validAppConfig()
	cfg.MongoURI = testutil.TestDBURI
	cfg.MongoDatabase = db.Name()
	return cfg
}

func TestHooks_InitializeAndVerify(t *testing.T) {
	appCfg := testAppConfig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coreCfg := &config.CoreConfig{}
	logger := zap.NewNop()

	deps, err := ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		t.Fatalf("ConnectDB() error = %v", err)
	}
	defer Shutdown(context.Background(), coreCfg, appCfg, deps, logger)

	if deps.MongoDatabase.Name() != appCfg.MongoDatabase {
		t.Errorf("database = %q, want %q", deps.MongoDatabase.Name(), appCfg.MongoDatabase)
	}

	if err := Initialize(ctx, coreCfg, appCfg, deps, logger); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := Verify(ctx, coreCfg, appCfg, deps, logger); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	err = Initialize(ctx, coreCfg, appCfg, deps, logger)
	if err == nil {
		t.Fatal("second Initialize() should fail")
	}
	if !dbinit.IsUserExists(err) {
		t.Errorf("second Initialize() error = %v, want user-already-exists", err)
	}
}

func TestVerify_Disabled(t *testing.T) {
	appCfg := validAppConfig()
	appCfg.VerifyAfterInit = false

	// No connection needed: a disabled check never touches deps.
	if err := Verify(context.Background(), &config.CoreConfig{}, appCfg, DBDeps{}, zap.NewNop()); err != nil {
		t.Errorf("Verify() error = %v, want nil", err)
	}
}

func TestShutdown_NoClient(t *testing.T) {
	if err := Shutdown(context.Background(), &config.CoreConfig{}, AppConfig{}, DBDeps{}, zap.NewNop()); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestLifecycleRun_AgainstMongo(t *testing.T) {
	appCfg := testAppConfig(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lc := Hooks
	lc.LoadConfig = func(*zap.Logger) (*config.CoreConfig, AppConfig, error) {
		return &config.CoreConfig{}, appCfg, nil
	}

	if err := lc.Run(ctx, zap.NewNop()); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	err := lc.Run(ctx, zap.NewNop())
	if err == nil {
		t.Fatal("second Run() should fail on an initialized database")
	}
	if !dbinit.IsUserExists(err) {
		t.Errorf("second Run() error = %v, want user-already-exists", err)
	}
}

func TestConnectDB_HonorsConnectTimeout(t *testing.T) {
	timeouts.Reset()
	defer timeouts.Reset()
	timeouts.Configure(timeouts.Config{Connect: 500 * time.Millisecond})

	appCfg := validAppConfig()
	appCfg.MongoURI = "mongodb://127.0.0.1:1"

	start := time.Now()
	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, appCfg, zap.NewNop())
	elapsed := time.Since(start)
	if err == nil {
		Shutdown(context.Background(), &config.CoreConfig{}, appCfg, deps, zap.NewNop())
		t.Fatal("ConnectDB() to a closed port should fail")
	}
	// The pool default is 10s; failing well before that shows the
	// configured value reached the driver.
	if elapsed > 5*time.Second {
		t.Errorf("ConnectDB() took %v with a 500ms connect timeout", elapsed)
	}
}

func TestConnectDB_ConnectTimeoutAbovePoolDefault(t *testing.T) {
	if testing.Short() {
		t.Skip("waits out a 12s connect timeout")
	}
	timeouts.Reset()
	defer timeouts.Reset()
	timeouts.Configure(timeouts.Config{Connect: 12 * time.Second})

	appCfg := validAppConfig()
	appCfg.MongoURI = "mongodb://127.0.0.1:1"

	start := time.Now()
	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, appCfg, zap.NewNop())
	elapsed := time.Since(start)
	if err == nil {
		Shutdown(context.Background(), &config.CoreConfig{}, appCfg, deps, zap.NewNop())
		t.Fatal("ConnectDB() to a closed port should fail")
	}
	if elapsed < 11*time.Second {
		t.Errorf("ConnectDB() gave up after %v, want the configured 12s", elapsed)
	}
}
