// Package identity carries the signed-in user through a request context.
package identity

import "context"

// User is the authenticated principal of a request.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// FromContext returns the user stored by WithUser.
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// ID returns the current user id, or "" when the context is anonymous.
func ID(ctx context.Context) string {
	u, _ := FromContext(ctx)
	return u.ID
}
