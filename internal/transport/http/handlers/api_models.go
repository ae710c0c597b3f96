package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/social-platform-auth/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest defines the account registration payload. Role is accepted
// for wire compatibility with older clients but is never honored.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserSummary describes a minimal view of a user returned by the API.
type UserSummary struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse describes the response returned for a successful
// registration or login.
type AuthResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
	User      UserSummary `json:"user"`
}

// DashboardResponse greets the authenticated user.
type DashboardResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

// UserListResponse wraps the accounts returned by the admin listing.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Total int           `json:"total"`
}

// RoleChangeRequest defines the payload for promoting or demoting a user.
type RoleChangeRequest struct {
	Role string `json:"role" binding:"required"`
}

// AuditEntryPayload describes an audit record in API responses.
type AuditEntryPayload struct {
	ID         string         `json:"id"`
	ActorID    *string        `json:"actor_id,omitempty"`
	ActorEmail *string        `json:"actor_email,omitempty"`
	Action     string         `json:"action"`
	Detail     map[string]any `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// AuditListResponse wraps the audit trail returned to administrators.
type AuditListResponse struct {
	Entries []AuditEntryPayload `json:"entries"`
	Total   int                 `json:"total"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newUserSummary converts a domain user to a summary suitable for API responses.
func newUserSummary(user domain.User) UserSummary {
	summary := UserSummary{
		ID:        user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}

	if user.Name != nil && *user.Name != "" {
		name := *user.Name
		summary.Name = &name
	}

	return summary
}

// newAuditEntryPayload converts a domain audit entry to an API payload.
func newAuditEntryPayload(entry domain.AuditEntry) AuditEntryPayload {
	return AuditEntryPayload{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorEmail: entry.ActorEmail,
		Action:     string(entry.Action),
		Detail:     entry.Detail,
		CreatedAt:  entry.CreatedAt,
	}
}
