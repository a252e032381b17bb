package infrastructure

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hiring-platform/domain"
)

// ScoreRepository stores the per-application AiData and Bias rows and the
// per-candidate JobScore cache.
type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

// UpsertAIData keeps one row per application.
func (r *ScoreRepository) UpsertAIData(ctx context.Context, data *domain.AiData) error {
	row := *data
	row.ID = 0
	row.UpdatedAt = time.Now()
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"resume_score", "interview_score", "skill_match_score", "personality_score",
			"overall_score", "bias_detection_result", "ai_feedback", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	var stored domain.AiData
	if err := r.DB.WithContext(ctx).Select("id", "updated_at").Where("application_id = ?", data.ApplicationID).First(&stored).Error; err != nil {
		return err
	}
	data.ID, data.UpdatedAt = stored.ID, stored.UpdatedAt
	return nil
}

func (r *ScoreRepository) GetAIData(ctx context.Context, applicationID uint) (*domain.AiData, error) {
	var data domain.AiData
	if err := r.DB.WithContext(ctx).Where("application_id = ?", applicationID).First(&data).Error; err != nil {
		return nil, notFound(err, "ai data for application", applicationID)
	}
	return &data, nil
}

// UpsertBias keeps one row per application.
func (r *ScoreRepository) UpsertBias(ctx context.Context, bias *domain.Bias) error {
	row := *bias
	row.ID = 0
	row.UpdatedAt = time.Now()
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bias_score_gender", "bias_score_age", "predicted_decision", "bias_detected", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	var stored domain.Bias
	if err := r.DB.WithContext(ctx).Select("id").Where("application_id = ?", bias.ApplicationID).First(&stored).Error; err != nil {
		return err
	}
	bias.ID = stored.ID
	return nil
}

func (r *ScoreRepository) GetBias(ctx context.Context, applicationID uint) (*domain.Bias, error) {
	var bias domain.Bias
	if err := r.DB.WithContext(ctx).Where("application_id = ?", applicationID).First(&bias).Error; err != nil {
		return nil, notFound(err, "bias for application", applicationID)
	}
	return &bias, nil
}

func (r *ScoreRepository) ListByCandidate(ctx context.Context, candidateID uint) ([]domain.JobScore, error) {
	var scores []domain.JobScore
	err := r.DB.WithContext(ctx).Where("candidate_id = ?", candidateID).Order("job_id").Find(&scores).Error
	return scores, err
}

// CreateIfAbsent inserts the score unless the (candidate, job) pair exists.
// In that case score is overwritten with the stored row.
func (r *ScoreRepository) CreateIfAbsent(ctx context.Context, score *domain.JobScore) error {
	res := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "candidate_id"}, {Name: "job_id"}},
		DoNothing: true,
	}).Create(score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var stored domain.JobScore
	err := r.DB.WithContext(ctx).
		Where("candidate_id = ? AND job_id = ?", score.CandidateID, score.JobID).
		First(&stored).Error
	if err != nil {
		return err
	}
	*score = stored
	return nil
}
