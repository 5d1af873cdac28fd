// internal/app/bootstrap/appconfig.go
package bootstrap

import "github.com/dalemusser/stratainit/internal/domain/models"

// AppConfig holds the bootstrap's own configuration.
//
// Values come from config files, STRATAINIT_* environment variables or
// command-line flags (loaded in LoadConfig). Connection and command
// timeouts are WAFFLE core settings (db_connect_timeout,
// index_boot_timeout) and live on CoreConfig, not here.
//
// Every default reproduces the original init script, so a run with no
// configuration at all creates appuser / readWrite@userdb and the
// processed_users collection.
type AppConfig struct {
	// Administrative connection. Must be able to run createUser on MongoDatabase.
	MongoURI         string `validate:"required" label:"MongoDB URI"`
	MongoDatabase    string `validate:"required" label:"MongoDB database"`
	MongoMaxPoolSize uint64 // a run issues a handful of sequential commands (default: 2)

	// Application credential to create
	AppUser     string `validate:"required" label:"Application user"`
	AppPassword string `validate:"required" label:"Application password"`
	AppRole     string `validate:"required" label:"Application role"`

	// Collection to pre-create in MongoDatabase
	AppCollection string `validate:"required" label:"Collection"`

	// Check the result (grants, collection, login) after initializing
	VerifyAfterInit bool
}

// Plan returns the bootstrap plan described by this config.
func (c AppConfig) Plan() models.Plan {
	return models.NewPlan(c.MongoDatabase, c.AppUser, c.AppPassword, c.AppRole, c.AppCollection)
}
