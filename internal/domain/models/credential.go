// internal/domain/models/credential.go
package models

// Built-in MongoDB role granted to the application credential.
const RoleReadWrite = "readWrite"

// RoleGrant pairs a role with the database it applies to.
// The bson field names match the createUser / usersInfo wire shape.
type RoleGrant struct {
	Role string `bson:"role" json:"role"`
	DB   string `bson:"db" json:"db"`
}

// Credential is a database user to be created by the bootstrap.
//
// Password is supplied in plaintext; MongoDB derives the SCRAM keys
// server-side and never stores it as given.
type Credential struct {
	Username string      `json:"username"`
	Password string      `json:"-"`
	Roles    []RoleGrant `json:"roles"`
}

// UserInfo is the subset of a usersInfo result the bootstrap inspects.
type UserInfo struct {
	User  string      `bson:"user" json:"user"`
	DB    string      `bson:"db" json:"db"`
	Roles []RoleGrant `bson:"roles" json:"roles"`
}

// HasGrant reports whether the user holds role on db.
func (u UserInfo) HasGrant(role, db string) bool {
	for _, g := range u.Roles {
		if g.Role == role && g.DB == db {
			return true
		}
	}
	return false
}
