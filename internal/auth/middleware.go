package auth

import (
	"log"
	"net/http"
)

// Middleware authenticates API requests with HS256 bearer tokens and checks
// the role the policy requires for the route.
type Middleware struct {
	Secret []byte
	Policy Policy
	Logger *log.Logger
}

// NewMiddleware constructs an auth middleware.
func NewMiddleware(secret []byte, policy Policy) *Middleware {
	return &Middleware{Secret: secret, Policy: policy, Logger: log.Default()}
}

// Wrap guards next. Exempt paths and routes the policy does not know are
// served without a token.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Policy.IsExempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		required, guarded := m.Policy.RequiredRole(r)
		if !guarded {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := ParseJWT(BearerToken(r.Header.Get("Authorization")), m.Secret)
		if err != nil {
			m.reject(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		role, _ := NormalizeRole(claims.Role)
		if !RoleAtLeast(role, required) {
			m.reject(w, r, http.StatusForbidden, "role "+string(role)+" below "+string(required))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.Shops, role, claims.Subject)))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, status int, reason string) {
	if m.Logger != nil {
		m.Logger.Printf("auth rejected: method=%s path=%s status=%d reason=%s", r.Method, r.URL.Path, status, reason)
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="marketplace-recon"`)
	}
	http.Error(w, http.StatusText(status), status)
}
