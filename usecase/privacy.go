package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hiring-platform/domain"
)

type CandidateDataExport struct {
	Profile      *domain.CandidateProfile `json:"candidate_profile"`
	Applications []domain.Application     `json:"applications"`
}

// PrivacyUsecase serves data access and erasure requests and the audit
// trail they leave.
type PrivacyUsecase struct {
	repos  Repositories
	audit  auditor
	logger *zap.Logger
	now    func() time.Time
}

func NewPrivacyUsecase(repos Repositories, audit AuditSink, logger *zap.Logger) *PrivacyUsecase {
	return &PrivacyUsecase{repos: repos, audit: auditor{sink: audit}, logger: logger, now: time.Now}
}

func (u *PrivacyUsecase) ExportCandidateData(ctx context.Context, actor domain.Actor) (*CandidateDataExport, error) {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return nil, err
	}
	profile, err := u.repos.Profiles.GetCandidate(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	apps, err := u.repos.Applications.ListByCandidate(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	u.audit.record(ctx, u.now(), actor, domain.AuditDataAccess,
		fmt.Sprintf("Candidate accessed all personal data, created at %s, last updated at %s",
			profile.CreatedAt.Format(time.RFC3339), profile.UpdatedAt.Format(time.RFC3339)))
	return &CandidateDataExport{Profile: profile, Applications: apps}, nil
}

// EraseCandidateData records the request first, then deletes the profile
// with all applications and their scores.
func (u *PrivacyUsecase) EraseCandidateData(ctx context.Context, actor domain.Actor) error {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return err
	}
	profile, err := u.repos.Profiles.GetCandidate(ctx, actor.ID)
	if err != nil {
		return err
	}

	now := u.now()
	u.audit.record(ctx, now, actor, domain.AuditDataDelete,
		fmt.Sprintf("Candidate requested complete data deletion at %s, originally created at %s",
			now.Format(time.RFC3339), profile.CreatedAt.Format(time.RFC3339)))

	if err := u.repos.CandidateData.EraseCandidate(ctx, profile.ID); err != nil {
		return fmt.Errorf("failed to erase candidate %d: %w", profile.ID, err)
	}
	u.logger.Info("candidate data erased", zap.Uint("candidate_id", profile.ID))
	return nil
}

// ListAuditLogs returns the audit trail newest first. A blank email lists
// every entry.
func (u *PrivacyUsecase) ListAuditLogs(ctx context.Context, actor domain.Actor, email string) ([]domain.AuditLog, error) {
	if err := actor.Require(domain.RoleAdmin); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return u.repos.AuditLogs.ListAll(ctx)
	}
	return u.repos.AuditLogs.ListByActorEmail(ctx, email)
}
