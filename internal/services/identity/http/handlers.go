// Package http mounts the identity endpoints
package http

import (
	"net"
	"net/http"

	pnet "cardduel/internal/platform/net"
	phttp "cardduel/internal/platform/net/http"
	"cardduel/internal/platform/net/middleware"
	dom "cardduel/internal/services/identity/domain"
	"cardduel/internal/services/identity/service"
	"cardduel/internal/services/identity/token"
)

// RegisterRequest creates an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Device   string `json:"device,omitempty" validate:"omitempty,max=100"`
}

// LoginRequest authenticates an account
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Device   string `json:"device,omitempty" validate:"omitempty,max=100"`
}

// RefreshRequest presents a refresh credential
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest optionally names the refresh credential to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// UpdateProfileRequest currently permits only a password change
type UpdateProfileRequest struct {
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// ValidateRequest carries a peer-submitted access token
type ValidateRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// deviceOf captures the caller's descriptor from the request
func deviceOf(r *http.Request, label string) dom.Device {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return dom.Device{UserAgent: r.UserAgent(), IP: ip, Label: label}
}

// Mount registers the client-facing auth routes
func Mount(r phttp.Router, svc *service.Service, auth middleware.AuthPort) {
	phttp.PostJSON(r, "/api/auth/register", func(r *http.Request, in RegisterRequest) (any, error) {
		res, err := svc.Register(r.Context(), in.Username, in.Password, deviceOf(r, in.Device))
		if err != nil {
			return nil, err
		}
		return phttp.Created(res), nil
	})

	phttp.PostJSON(r, "/api/auth/login", func(r *http.Request, in LoginRequest) (any, error) {
		return svc.Login(r.Context(), in.Username, in.Password, deviceOf(r, in.Device))
	})

	phttp.PostJSON(r, "/api/auth/refresh", func(r *http.Request, in RefreshRequest) (any, error) {
		return svc.Refresh(r.Context(), in.RefreshToken)
	})

	r.Group(func(g phttp.Router) {
		g.Use(middleware.Auth(auth, phttp.JSON))

		phttp.PostJSON(g, "/api/auth/logout", func(r *http.Request, in LogoutRequest) (any, error) {
			if err := svc.Logout(r.Context(), pnet.Subject(r.Context()), in.RefreshToken); err != nil {
				return nil, err
			}
			return map[string]string{"message": "logged out"}, nil
		})

		phttp.PostCall(g, "/api/auth/revoke-all", func(r *http.Request) (any, error) {
			if err := svc.RevokeAll(r.Context(), pnet.Subject(r.Context())); err != nil {
				return nil, err
			}
			return map[string]string{"message": "all sessions revoked"}, nil
		})

		phttp.PostCall(g, "/api/auth/validate", func(r *http.Request) (any, error) {
			raw, err := token.FromHeader(r)
			if err != nil {
				return nil, err
			}
			name, _, err := svc.Validate(r.Context(), raw)
			if err != nil {
				return nil, err
			}
			return map[string]any{"valid": true, "username": name}, nil
		})

		phttp.GetJSON(g, "/api/auth/profile", func(r *http.Request) (any, error) {
			return svc.Profile(r.Context(), pnet.Subject(r.Context()))
		})

		phttp.PutJSON(g, "/api/auth/profile", func(r *http.Request, in UpdateProfileRequest) (any, error) {
			if err := svc.ChangePassword(r.Context(), pnet.Subject(r.Context()), in.Password); err != nil {
				return nil, err
			}
			return map[string]string{"message": "password updated"}, nil
		})
	})
}

// MountPeer registers the internal validation surface for the trust plane
func MountPeer(r phttp.Router, svc *service.Service, peers middleware.ServicePort) {
	r.Group(func(g phttp.Router) {
		g.Use(middleware.ServiceAuth(peers, phttp.JSON))

		phttp.PostJSON(g, "/rpc/auth/validate", func(r *http.Request, in ValidateRequest) (any, error) {
			name, admin, err := svc.Validate(r.Context(), in.AccessToken)
			if err != nil {
				return nil, err
			}
			return map[string]any{"valid": true, "username": name, "is_admin": admin}, nil
		})
	})
}
