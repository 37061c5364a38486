// Package domain defines the append-only audit log types
package domain

import "time"

// Action codes recorded by the other services
const (
	ActionAccountCreated      = "account_created"
	ActionLoginSuccess        = "login_success"
	ActionLoginFailed         = "login_failed"
	ActionAccountLocked       = "account_locked"
	ActionPasswordChanged     = "password_changed"
	ActionSessionRevoked      = "session_revoked"
	ActionInvitationCreated   = "invitation_created"
	ActionInvitationAccepted  = "invitation_accepted"
	ActionInvitationIgnored   = "invitation_ignored"
	ActionInvitationCancelled = "invitation_cancelled"
	ActionGameStarted         = "game_started"
	ActionGameCompleted       = "game_completed"
	ActionGameAbandoned       = "game_abandoned"
	ActionLogsViewed          = "logs_viewed"
)

// Entry is one audit row; append-only
type Entry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Actor     *string   `json:"actor,omitempty"`
	Details   *string   `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Page is a bounded slice of the log with the total row count
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int64   `json:"total"`
	Offset  int     `json:"offset"`
	Limit   int     `json:"limit"`
}
