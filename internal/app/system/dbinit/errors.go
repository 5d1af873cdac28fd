// internal/app/system/dbinit/errors.go
package dbinit

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB server error codes used to classify bootstrap failures.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
	codeNamespaceExists      = 48
	codeUserAlreadyExists    = 51003
)

// IsUserExists reports whether err is MongoDB refusing to create a user
// that is already defined on the target database.
func IsUserExists(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeUserAlreadyExists {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, `user "`) && strings.Contains(s, "already exists")
}

// IsNamespaceExists reports whether a collection (or view) already occupies
// the requested name.
func IsNamespaceExists(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeNamespaceExists {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "namespace exists") ||
		(strings.Contains(s, "collection") && strings.Contains(s, "already exists"))
}

// IsUnauthorized reports whether the connection lacked privilege for the command.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeUnauthorized {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not authorized") || strings.Contains(s, "requires authentication")
}

// IsAuthFailed reports whether the supplied credentials were rejected.
func IsAuthFailed(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == codeAuthenticationFailed {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "authentication failed")
}
