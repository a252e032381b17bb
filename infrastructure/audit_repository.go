package infrastructure

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hiring-platform/domain"
)

type AuditRepository struct {
	DB *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

// Save is idempotent on the event ID so redelivered messages are harmless.
func (r *AuditRepository) Save(ctx context.Context, event domain.AuditEvent) error {
	row := domain.AuditLog{
		EventID:    event.ID,
		ActorEmail: event.ActorEmail,
		Action:     event.Action,
		Timestamp:  event.Timestamp,
		Details:    event.Details,
		Role:       event.Role,
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (r *AuditRepository) ListByActorEmail(ctx context.Context, email string) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	err := r.DB.WithContext(ctx).
		Where("actor_email = ?", email).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&logs).Error
	return logs, err
}

func (r *AuditRepository) ListAll(ctx context.Context) ([]domain.AuditLog, error) {
	var logs []domain.AuditLog
	err := r.DB.WithContext(ctx).
		Order("timestamp DESC").
		Order("id DESC").
		Find(&logs).Error
	return logs, err
}

// DBAuditSink writes audit events synchronously to the database.
type DBAuditSink struct {
	repo   *AuditRepository
	logger *zap.Logger
}

func NewDBAuditSink(repo *AuditRepository, logger *zap.Logger) *DBAuditSink {
	return &DBAuditSink{repo: repo, logger: logger}
}

func (s *DBAuditSink) Record(ctx context.Context, event domain.AuditEvent) {
	if err := s.repo.Save(ctx, event); err != nil {
		s.logger.Error("failed to write audit log",
			zap.String("action", event.Action),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}
