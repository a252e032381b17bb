package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hiring-platform/domain"
)

// Sweep schedules in standard five-field cron syntax.
var sweepSchedules = []struct {
	spec   string
	period domain.Period
}{
	{"0 0 * * *", domain.PeriodDaily},
	{"0 0 * * 1", domain.PeriodWeekly},
	{"0 0 1 * *", domain.PeriodMonthly},
}

// MetricsSweeper regenerates the dashboards of every recruiter on a
// schedule.
type MetricsSweeper struct {
	dashboards *DashboardUsecase
	profiles   ProfileRepository
	cron       *cron.Cron
	logger     *zap.Logger
}

func NewMetricsSweeper(dashboards *DashboardUsecase, profiles ProfileRepository, logger *zap.Logger) *MetricsSweeper {
	return &MetricsSweeper{
		dashboards: dashboards,
		profiles:   profiles,
		cron:       cron.New(),
		logger:     logger,
	}
}

func (s *MetricsSweeper) Start() error {
	for _, sched := range sweepSchedules {
		period := sched.period
		_, err := s.cron.AddFunc(sched.spec, func() {
			if err := s.RunSweep(context.Background(), period); err != nil {
				s.logger.Error("metrics sweep finished with errors", zap.String("period", string(period)), zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s sweep: %w", period, err)
		}
	}
	s.cron.Start()
	s.logger.Info("metrics sweeper started")
	return nil
}

// Stop waits for running sweeps to finish.
func (s *MetricsSweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunSweep generates the period dashboard for every recruiter. A failing
// recruiter does not stop the others; all failures are returned joined.
func (s *MetricsSweeper) RunSweep(ctx context.Context, period domain.Period) error {
	recruiters, err := s.profiles.ListRecruiters(ctx)
	if err != nil {
		return fmt.Errorf("failed to list recruiters: %w", err)
	}

	var errs []error
	for _, r := range recruiters {
		actor := domain.Actor{ID: r.ID, Email: r.Email, Role: domain.RoleRecruiter}
		if _, err := s.dashboards.Generate(ctx, actor, period); err != nil {
			s.logger.Warn("dashboard generation failed",
				zap.Uint("recruiter_id", r.ID),
				zap.String("period", string(period)),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("recruiter %d: %w", r.ID, err))
		}
	}
	s.logger.Info("metrics sweep done",
		zap.String("period", string(period)),
		zap.Int("recruiters", len(recruiters)),
		zap.Int("failed", len(errs)))
	return errors.Join(errs...)
}
