// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the connection a bootstrap run works through.
//
// It is created in ConnectDB and passed to Initialize, Verify and Shutdown.
// MongoDatabase is the target database (mongo_database); user and
// collection are both created there.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
}
