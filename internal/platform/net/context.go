// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keySubject ctxKey = "subject"
	keyAdmin   ctxKey = "admin"
	keyService ctxKey = "service"
)

// WithRequest annotates context with the request id so chimw.GetReqID can retrieve it
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// WithSubject annotates context with the authenticated end-user subject
func WithSubject(ctx context.Context, subject string, admin bool) context.Context {
	if subject != "" {
		ctx = context.WithValue(ctx, keySubject, subject)
		ctx = context.WithValue(ctx, keyAdmin, admin)
	}
	return ctx
}

// WithService annotates context with the authenticated peer service name
func WithService(ctx context.Context, service string) context.Context {
	if service != "" {
		ctx = context.WithValue(ctx, keyService, service)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// Subject returns the authenticated subject on the context if present
func Subject(ctx context.Context) string {
	if v, ok := ctx.Value(keySubject).(string); ok {
		return v
	}
	return ""
}

// IsAdmin reports whether the authenticated subject carries the admin flag
func IsAdmin(ctx context.Context) bool {
	if v, ok := ctx.Value(keyAdmin).(bool); ok {
		return v
	}
	return false
}

// Service returns the authenticated peer service name on the context if present
func Service(ctx context.Context) string {
	if v, ok := ctx.Value(keyService).(string); ok {
		return v
	}
	return ""
}
