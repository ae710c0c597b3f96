package domain

import "time"

// AuditAction enumerates the recorded security event kinds.
type AuditAction string

const (
	AuditUserRegister AuditAction = "USER_REGISTER"
	AuditLoginSuccess AuditAction = "LOGIN_SUCCESS"
	AuditLoginFail    AuditAction = "LOGIN_FAIL"
	AuditRoleChange   AuditAction = "ROLE_CHANGE"
	AuditUserDelete   AuditAction = "USER_DELETE"
)

// AuditEntry is an append-only record of a security-relevant event.
// ActorID is nil when the actor is unknown, e.g. a failed login against an
// unrecognized email. Detail is an opaque structured payload stored as JSON.
type AuditEntry struct {
	ID         string
	ActorID    *string
	ActorEmail *string
	Action     AuditAction
	Detail     map[string]any
	CreatedAt  time.Time
}
