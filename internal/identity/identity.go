// Package identity defines how the current user is resolved. The actual
// authentication service is an external collaborator; the rest of the
// application only ever sees an opaque user identifier.
package identity

import (
	"context"
	"strings"

	"github.com/outlayhq/outlay/internal/common"
)

// UserContext scopes a store operation to one user. It is always passed
// explicitly; nothing in the application reads the current user from
// ambient state.
type UserContext struct {
	UserID string
}

// NewUserContext creates a UserContext for the given user identifier.
func NewUserContext(userID string) (UserContext, error) {
	if strings.TrimSpace(userID) == "" {
		return UserContext{}, common.ErrSignedOut
	}
	return UserContext{UserID: userID}, nil
}

// Provider resolves the identity of the currently signed-in user.
type Provider interface {
	// CurrentUserID returns the opaque user identifier, or
	// common.ErrSignedOut when no session exists.
	CurrentUserID(ctx context.Context) (string, error)
}

// Static is a Provider with a fixed user identifier. The CLI builds one from
// configuration; tests build one directly.
type Static struct {
	ID string
}

// NewStatic creates a provider that always answers with id.
func NewStatic(id string) Static {
	return Static{ID: id}
}

// CurrentUserID implements Provider.
func (s Static) CurrentUserID(_ context.Context) (string, error) {
	if strings.TrimSpace(s.ID) == "" {
		return "", common.ErrSignedOut
	}
	return s.ID, nil
}
