// internal/domain/models/plan.go
package models

// Defaults reproduce the original init script.
const (
	DefaultDatabase   = "userdb"
	DefaultUsername   = "appuser"
	DefaultPassword   = "apppassword"
	DefaultCollection = "processed_users"
)

// Plan describes everything one bootstrap run creates: a credential scoped
// to Database and an empty Collection in the same database.
type Plan struct {
	Database   string
	Credential Credential
	Collection string
}

// DefaultPlan returns the plan for the application's userdb database.
func DefaultPlan() Plan {
	return NewPlan(DefaultDatabase, DefaultUsername, DefaultPassword, RoleReadWrite, DefaultCollection)
}

// NewPlan builds a plan granting a single role on database.
func NewPlan(database, username, password, role, collection string) Plan {
	return Plan{
		Database: database,
		Credential: Credential{
			Username: username,
			Password: password,
			Roles:    []RoleGrant{{Role: role, DB: database}},
		},
		Collection: collection,
	}
}
