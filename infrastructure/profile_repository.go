package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hiring-platform/domain"
)

// notFound translates gorm's missing-row error into domain.ErrNotFound.
func notFound(err error, what string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %v", domain.ErrNotFound, what, id)
	}
	return err
}

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) GetCandidate(ctx context.Context, id uint) (*domain.CandidateProfile, error) {
	var c domain.CandidateProfile
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err, "candidate", id)
	}
	return &c, nil
}

func (r *ProfileRepository) GetRecruiter(ctx context.Context, id uint) (*domain.RecruiterProfile, error) {
	var rec domain.RecruiterProfile
	if err := r.DB.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, notFound(err, "recruiter", id)
	}
	return &rec, nil
}

func (r *ProfileRepository) ListRecruiters(ctx context.Context) ([]domain.RecruiterProfile, error) {
	var recs []domain.RecruiterProfile
	err := r.DB.WithContext(ctx).Order("id").Find(&recs).Error
	return recs, err
}

func (r *ProfileRepository) GetJob(ctx context.Context, id uint) (*domain.Job, error) {
	var j domain.Job
	if err := r.DB.WithContext(ctx).First(&j, id).Error; err != nil {
		return nil, notFound(err, "job", id)
	}
	return &j, nil
}

func (r *ProfileRepository) ListJobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.DB.WithContext(ctx).Order("id").Find(&jobs).Error
	return jobs, err
}
