package infrastructure

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"hiring-platform/domain"
)

type InterviewRepository struct {
	DB *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return &InterviewRepository{DB: db}
}

func (r *InterviewRepository) ListByApplication(ctx context.Context, applicationID uint) ([]domain.InterviewResponse, error) {
	var responses []domain.InterviewResponse
	err := r.DB.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("id").
		Find(&responses).Error
	return responses, err
}

func (r *InterviewRepository) Create(ctx context.Context, resp *domain.InterviewResponse) error {
	return r.DB.WithContext(ctx).Create(resp).Error
}

func (r *InterviewRepository) LatestPending(ctx context.Context, applicationID uint) (*domain.InterviewResponse, error) {
	var resp domain.InterviewResponse
	err := r.DB.WithContext(ctx).
		Where("application_id = ? AND candidate_response IS NULL", applicationID).
		Order("id DESC").
		First(&resp).Error
	if err != nil {
		return nil, notFound(err, "pending question for application", applicationID)
	}
	return &resp, nil
}

func (r *InterviewRepository) SaveAnswer(ctx context.Context, id uint, answer string, score int) error {
	res := r.DB.WithContext(ctx).Model(&domain.InterviewResponse{}).
		Where("id = ? AND candidate_response IS NULL", id).
		Updates(map[string]interface{}{
			"candidate_response": answer,
			"ai_score":           score,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: question %d was already answered", domain.ErrStateViolation, id)
	}
	return nil
}
