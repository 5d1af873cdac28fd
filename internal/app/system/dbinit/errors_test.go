package dbinit

import (
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsUserExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"command error code 51003", mongo.CommandError{Code: 51003, Message: "exists"}, true},
		{"wrapped command error", fmt.Errorf("create user: %w", mongo.CommandError{Code: 51003}), true},
		{"server message", errors.New(`User "appuser@userdb" already exists`), true},
		{"collection exists is not user exists", errors.New("Collection userdb.processed_users already exists."), false},
		{"other code", mongo.CommandError{Code: 13, Message: "not authorized"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserExists(tt.err); got != tt.want {
				t.Errorf("IsUserExists(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsNamespaceExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"command error code 48", mongo.CommandError{Code: 48, Message: "exists"}, true},
		{"namespace exists message", errors.New("namespace exists"), true},
		{"collection message", errors.New("Collection userdb.processed_users already exists."), true},
		{"user exists is not namespace exists", errors.New(`User "appuser@userdb" already exists`), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNamespaceExists(tt.err); got != tt.want {
				t.Errorf("IsNamespaceExists(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"command error code 13", mongo.CommandError{Code: 13}, true},
		{"message", errors.New("not authorized on userdb to execute command"), true},
		{"requires authentication", errors.New("command createUser requires authentication"), true},
		{"generic", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUnauthorized(tt.err); got != tt.want {
				t.Errorf("IsUnauthorized(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsAuthFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"command error code 18", mongo.CommandError{Code: 18}, true},
		{"sasl message", errors.New("auth error: sasl conversation error: (AuthenticationFailed) Authentication failed."), true},
		{"generic", errors.New("server selection timeout"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuthFailed(tt.err); got != tt.want {
				t.Errorf("IsAuthFailed(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
