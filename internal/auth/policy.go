package auth

import (
	"net/http"
	"strings"
)

const shopsPath = "/api/v1/shops"

// Policy maps API routes to the minimum role they require.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds the route policy with the given unauthenticated paths.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt reports whether the request is served without a token.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole returns the role a request needs; false means the route is not guarded.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path := strings.TrimRight(r.URL.Path, "/")
	switch {
	case path == shopsPath:
		if r.Method == http.MethodPost {
			return RoleAdmin, true
		}
		return RoleViewer, true
	case strings.HasPrefix(path, shopsPath+"/"):
		return shopRouteRole(r.Method, path), true
	case strings.HasPrefix(path, "/api/"):
		if isReadMethod(r.Method) {
			return RoleViewer, true
		}
		return RoleOperator, true
	}
	return "", false
}

// shopRouteRole covers /api/v1/shops/{id}/...: reads need viewer, policy
// changes need admin, every other write needs operator.
func shopRouteRole(method, path string) Role {
	if strings.HasSuffix(path, "/policy") && !isReadMethod(method) {
		return RoleAdmin
	}
	if strings.HasSuffix(path, "/sync") || strings.HasSuffix(path, "/releases/import") {
		return RoleOperator
	}
	if isReadMethod(method) {
		return RoleViewer
	}
	return RoleOperator
}

func isReadMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
