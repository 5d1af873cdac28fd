// Package testutil provides utilities for testing, including database setup.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// TestDBURI is the MongoDB connection string for tests. The server must
	// allow createUser from this connection (a local mongod without --auth,
	// or one reached through the localhost exception).
	TestDBURI = "mongodb://localhost:27017"
	// TestDBName is the database name prefix used for tests.
	TestDBName = "stratainit_test"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// getClient returns a shared MongoDB client for all tests.
// The client is created once and reused across tests.
func getClient() (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		clientOpts := options.Client().
			ApplyURI(TestDBURI).
			SetMaxPoolSize(50).
			SetConnectTimeout(10 * time.Second).
			SetServerSelectionTimeout(10 * time.Second)

		client, clientErr = mongo.Connect(ctx, clientOpts)
		if clientErr != nil {
			return
		}

		clientErr = client.Ping(ctx, nil)
	})
	return client, clientErr
}

// SetupTestDB returns an empty test database with no users defined on it.
// Each test gets a unique database based on the test name so users and
// collections created by one test never collide with another.
// The database and its users are dropped when the test completes.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	client, err := getClient()
	if err != nil {
		t.Fatalf("failed to connect to test MongoDB: %v", err)
	}

	dbName := fmt.Sprintf("%s_%s", TestDBName, sanitizeTestName(t.Name()))
	db := client.Database(dbName)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := reset(ctx, db); err != nil {
		t.Fatalf("failed to reset test database: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reset(ctx, db); err != nil {
			t.Logf("warning: failed to reset test database on cleanup: %v", err)
		}
	})

	return db
}

// reset drops db and every user defined on it. Dropping a database leaves
// its users in admin.system.users, so they are removed explicitly.
func reset(ctx context.Context, db *mongo.Database) error {
	if err := db.RunCommand(ctx, bson.D{{Key: "dropAllUsersFromDatabase", Value: 1}}).Err(); err != nil {
		return fmt.Errorf("drop users: %w", err)
	}
	if err := db.Drop(ctx); err != nil {
		return fmt.Errorf("drop database: %w", err)
	}
	return nil
}

// sanitizeTestName converts a test name to a valid database name suffix.
// MongoDB limits database names to 63 characters, so we truncate if needed.
func sanitizeTestName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	// The prefix "stratainit_test_" is 16 characters, so limit suffix to 47.
	const maxLen = 47
	if len(result) > maxLen {
		result = result[:maxLen]
	}
	return string(result)
}

// TestContext returns a context with a reasonable timeout for test operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// AuthURIEnv names the environment variable holding an administrative URI
// for a mongod running with --auth. Tests that need authorization to be
// enforced skip when it is unset.
const AuthURIEnv = "STRATAINIT_TEST_AUTH_URI"

// AuthDBURI returns the --auth server URI or skips the test.
func AuthDBURI(t *testing.T) string {
	t.Helper()
	uri := os.Getenv(AuthURIEnv)
	if uri == "" {
		t.Skipf("%s not set; needs a mongod with authorization enabled", AuthURIEnv)
	}
	return uri
}

// SetupAuthTestDB is SetupTestDB against the --auth server at uri, reached
// through its own client. The database and its users are dropped on cleanup.
func SetupAuthTestDB(t *testing.T, uri string) *mongo.Database {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		t.Fatalf("failed to connect to auth MongoDB: %v", err)
	}

	db := c.Database(fmt.Sprintf("%s_%s", TestDBName, sanitizeTestName(t.Name())))
	if err := reset(ctx, db); err != nil {
		t.Fatalf("failed to reset auth test database: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := reset(ctx, db); err != nil {
			t.Logf("warning: failed to reset auth test database on cleanup: %v", err)
		}
		_ = c.Disconnect(ctx)
	})

	return db
}
