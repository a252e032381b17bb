package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hiring-platform/domain"
)

type auditor struct {
	sink AuditSink
}

func (a auditor) record(ctx context.Context, at time.Time, actor domain.Actor, action, details string) {
	if a.sink == nil {
		return
	}
	a.sink.Record(ctx, domain.AuditEvent{
		ID:         uuid.NewString(),
		ActorEmail: actor.Email,
		Action:     action,
		Timestamp:  at,
		Details:    details,
		Role:       actor.Role,
	})
}
