package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hiring-platform/domain"
)

type DashboardUsecase struct {
	repos     Repositories
	locker    Locker
	audit     auditor
	recorder  Recorder
	logger    *zap.Logger
	weekStart time.Weekday
	now       func() time.Time
}

func NewDashboardUsecase(repos Repositories, locker Locker, audit AuditSink, recorder Recorder, logger *zap.Logger, weekStart time.Weekday) *DashboardUsecase {
	return &DashboardUsecase{
		repos:     repos,
		locker:    locker,
		audit:     auditor{sink: audit},
		recorder:  recorderOrNoop(recorder),
		logger:    logger,
		weekStart: weekStart,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (u *DashboardUsecase) WithClock(now func() time.Time) *DashboardUsecase {
	u.now = now
	return u
}

// Generate counts the recruiter's applications and stores them in the
// bucket of the current period. Repeated calls within one bucket update the
// same row.
func (u *DashboardUsecase) Generate(ctx context.Context, actor domain.Actor, period domain.Period) (*domain.Dashboard, error) {
	if err := actor.Require(domain.RoleRecruiter); err != nil {
		return nil, err
	}
	recruiter, err := u.repos.Profiles.GetRecruiter(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	now := u.now()
	start, err := domain.PeriodStart(now, period, u.weekStart)
	if err != nil {
		return nil, err
	}

	unlock, err := u.locker.Lock(ctx, fmt.Sprintf("dashboard:%d:%s:%d", recruiter.ID, period, start.Unix()))
	if err != nil {
		return nil, err
	}
	defer unlock()

	total, shortlisted, err := u.repos.Applications.CountForRecruiter(ctx, recruiter.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	d := &domain.Dashboard{
		RecruiterID:           recruiter.ID,
		PeriodStart:           start,
		Period:                period,
		TotalApplications:     int(total),
		ShortlistedCandidates: int(shortlisted),
		GeneratedAt:           now,
	}
	if err := u.repos.Dashboards.Upsert(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save dashboard: %w", err)
	}

	u.audit.record(ctx, now, actor, domain.AuditMetricsGenerated,
		fmt.Sprintf("Generated %s metrics for period starting %s", period, start.Format(time.DateOnly)))
	u.recorder.DashboardGenerated(period)
	u.logger.Info("dashboard generated",
		zap.Uint("recruiter_id", recruiter.ID),
		zap.String("period", string(period)),
		zap.Time("period_start", start),
		zap.Int("total_applications", d.TotalApplications),
		zap.Int("shortlisted", d.ShortlistedCandidates))
	return d, nil
}

// List returns the stored dashboards, optionally narrowed to one period.
func (u *DashboardUsecase) List(ctx context.Context, actor domain.Actor, period string) ([]domain.Dashboard, error) {
	if err := actor.Require(domain.RoleRecruiter); err != nil {
		return nil, err
	}
	var p domain.Period
	if period != "" {
		var err error
		if p, err = domain.ParsePeriod(period); err != nil {
			return nil, err
		}
	}
	return u.repos.Dashboards.ListByRecruiter(ctx, actor.ID, p)
}
