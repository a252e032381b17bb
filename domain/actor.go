package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCandidate, RoleRecruiter, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// Actor is the authenticated identity on whose behalf an operation runs.
type Actor struct {
	ID    uint
	Email string
	Role  Role
}

// Require fails with ErrForbidden unless the actor holds role.
func (a Actor) Require(role Role) error {
	if a.ID == 0 || a.Role != role {
		return fmt.Errorf("%w: %s access required", ErrForbidden, role)
	}
	return nil
}

const (
	AuditApplicationSubmitted = "APPLICATION_SUBMITTED"
	AuditInterviewCompleted   = "INTERVIEW_COMPLETED"
	AuditMetricsGenerated     = "METRICS_GENERATED"
	AuditDataAccess           = "DATA_ACCESS"
	AuditDataDelete           = "DATA_DELETE"
)

// AuditEvent is what the core hands to the audit sink.
type AuditEvent struct {
	ID         string    `json:"id"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	Details    string    `json:"details"`
	Role       Role      `json:"role"`
}

type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EventID    string    `gorm:"size:64;uniqueIndex" json:"event_id"`
	ActorEmail string    `gorm:"size:255;index" json:"actor_email"`
	Action     string    `gorm:"size:64" json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	Details    string    `gorm:"type:text" json:"details"`
	Role       Role      `gorm:"size:32" json:"role"`
}
