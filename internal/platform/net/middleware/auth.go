package middleware

import (
	"net/http"

	pnet "cardduel/internal/platform/net"
)

// AuthPort is the seam a token verifier implements
type AuthPort interface {
	// Parse returns the subject and admin flag from the request or an error
	Parse(r *http.Request) (subject string, admin bool, err error)
}

// Auth rejects requests whose bearer token does not verify
// The verified subject is stored on the request context
func Auth(p AuthPort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				next.ServeHTTP(w, r)
				return
			}
			subject, admin, err := p.Parse(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithSubject(r.Context(), subject, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ServicePort is the seam the trust plane implements for peer authentication
type ServicePort interface {
	// Verify returns the calling service name from the request or an error
	Verify(r *http.Request) (service string, err error)
}

// ServiceAuth rejects requests that do not carry a valid service credential
// Runs before any application handler per the trust plane contract
func ServiceAuth(p ServicePort, write func(w http.ResponseWriter, status int, body any)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc, err := p.Verify(r)
			if err != nil {
				status, body := pnet.Error(err, pnet.RequestID(r.Context()))
				write(w, status, body)
				return
			}
			ctx := pnet.WithService(r.Context(), svc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
