package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller of a request. An empty Shops list
// grants access to every shop.
type Identity struct {
	Subject string
	Role    Role
	Shops   []int64
}

// WithIdentity attaches the caller identity to ctx.
func WithIdentity(ctx context.Context, shops []int64, role Role, subject string) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{Subject: subject, Role: role, Shops: shops})
}

// IdentityFromContext returns the caller identity and whether one was attached.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// ShopsFromContext returns the shop scope of the caller.
func ShopsFromContext(ctx context.Context) []int64 {
	id, _ := IdentityFromContext(ctx)
	return id.Shops
}

// RoleFromContext returns the caller role, empty for anonymous requests.
func RoleFromContext(ctx context.Context) Role {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// SubjectFromContext returns the token subject.
func SubjectFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Subject
}
