package infrastructure

import (
	"context"

	"gorm.io/gorm"

	"hiring-platform/domain"
)

type CandidateDataRepository struct {
	DB *gorm.DB
}

func NewCandidateDataRepository(db *gorm.DB) *CandidateDataRepository {
	return &CandidateDataRepository{DB: db}
}

// EraseCandidate deletes the candidate profile, their applications with
// AI data, bias rows and interview responses, and their job scores in one
// transaction.
func (r *CandidateDataRepository) EraseCandidate(ctx context.Context, candidateID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appIDs []uint
		if err := tx.Model(&domain.Application{}).Where("candidate_id = ?", candidateID).Pluck("id", &appIDs).Error; err != nil {
			return err
		}

		if len(appIDs) > 0 {
			for _, model := range []interface{}{&domain.AiData{}, &domain.Bias{}, &domain.InterviewResponse{}} {
				if err := tx.Where("application_id IN ?", appIDs).Delete(model).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("id IN ?", appIDs).Delete(&domain.Application{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("candidate_id = ?", candidateID).Delete(&domain.JobScore{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.CandidateProfile{}, candidateID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "candidate", candidateID)
		}
		return nil
	})
}
