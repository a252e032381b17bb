package infrastructure

import (
	"context"

	"gorm.io/gorm"

	"hiring-platform/domain"
)

type ApplicationRepository struct {
	DB *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{DB: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	return r.DB.WithContext(ctx).Create(app).Error
}

func (r *ApplicationRepository) Get(ctx context.Context, id uint) (*domain.Application, error) {
	var app domain.Application
	if err := r.DB.WithContext(ctx).First(&app, id).Error; err != nil {
		return nil, notFound(err, "application", id)
	}
	return &app, nil
}

// Save writes the mutable columns only; the resume blob is left alone.
func (r *ApplicationRepository) Save(ctx context.Context, app *domain.Application) error {
	return r.DB.WithContext(ctx).Model(&domain.Application{}).
		Where("id = ?", app.ID).
		Updates(map[string]interface{}{
			"status":    app.Status,
			"ai_score":  app.AIScore,
			"feedback":  app.Feedback,
			"hire_date": app.HireDate,
		}).Error
}

func (r *ApplicationRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.DB.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("id").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID uint) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.DB.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("id").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListByRecruiter(ctx context.Context, recruiterID uint) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.DB.WithContext(ctx).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.recruiter_id = ?", recruiterID).
		Order("applications.id").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) CountForRecruiter(ctx context.Context, recruiterID uint) (total, shortlisted int64, err error) {
	base := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&domain.Application{}).
			Joins("JOIN jobs ON jobs.id = applications.job_id").
			Where("jobs.recruiter_id = ?", recruiterID)
	}
	if err = base().Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = base().Where("applications.status = ?", domain.StatusShortlisted).Count(&shortlisted).Error; err != nil {
		return 0, 0, err
	}
	return total, shortlisted, nil
}
