package infrastructure

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hiring-platform/domain"
)

type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

// Upsert writes the dashboard keyed by (recruiter, period, period start) and loads
// the stored ID back into d.
func (r *DashboardRepository) Upsert(ctx context.Context, d *domain.Dashboard) error {
	row := *d
	row.ID = 0
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recruiter_id"}, {Name: "period"}, {Name: "period_start"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_applications", "shortlisted_candidates", "generated_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	var stored domain.Dashboard
	err = r.DB.WithContext(ctx).
		Select("id").
		Where("recruiter_id = ? AND period = ? AND period_start = ?", d.RecruiterID, d.Period, d.PeriodStart).
		First(&stored).Error
	if err != nil {
		return err
	}
	d.ID = stored.ID
	return nil
}

func (r *DashboardRepository) ListByRecruiter(ctx context.Context, recruiterID uint, period domain.Period) ([]domain.Dashboard, error) {
	q := r.DB.WithContext(ctx).Where("recruiter_id = ?", recruiterID)
	if period != "" {
		q = q.Where("period = ?", period)
	}
	var rows []domain.Dashboard
	err := q.Order("period_start DESC").Order("id").Find(&rows).Error
	return rows, err
}
