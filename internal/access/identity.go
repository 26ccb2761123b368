package access

import (
	"context"

	"github.com/s/eduportal/internal/models"
)

// Identity is the caller as seen by the core. It is read-only: only the
// session layer creates it.
type Identity struct {
	User          models.User
	Authenticated bool
}

func (i Identity) UserID() uint {
	if !i.Authenticated {
		return 0
	}
	return i.User.ID
}

func (i Identity) IsAdmin() bool {
	return i.Authenticated && i.User.IsAdmin
}

// Anonymous is the identity of a request without a valid session.
var Anonymous = Identity{}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request identity, Anonymous when none is set.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(ctxKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
