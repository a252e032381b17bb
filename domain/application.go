package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type ApplicationStatus string

const (
	StatusUnderReview ApplicationStatus = "Under Review"
	StatusFinalReview ApplicationStatus = "FinalReview"
	StatusShortlisted ApplicationStatus = "Shortlisted"
	StatusRejected    ApplicationStatus = "Rejected"
)

// Decided reports whether the application reached a terminal status.
func (s ApplicationStatus) Decided() bool {
	return s == StatusShortlisted || s == StatusRejected
}

type ResumeFileType string

const (
	ResumePDF  ResumeFileType = "pdf"
	ResumeDOCX ResumeFileType = "docx"
	ResumeTXT  ResumeFileType = "txt"
)

// DetectResumeFileType maps a file name to one of the accepted resume types
// by extension.
func DetectResumeFileType(filename string) (ResumeFileType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return ResumePDF, nil
	case ".docx":
		return ResumeDOCX, nil
	case ".txt":
		return ResumeTXT, nil
	}
	return "", fmt.Errorf("%w: unsupported file type: %q", ErrValidation, filename)
}

type Application struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	JobID          uint              `gorm:"index;not null" json:"job_id"`
	CandidateID    uint              `gorm:"index;not null" json:"candidate_id"`
	Resume         []byte            `gorm:"type:longblob" json:"-"`
	ResumeFileType ResumeFileType    `gorm:"size:8" json:"resume_file_type"`
	ResumeText     string            `gorm:"type:longtext" json:"-"`
	Status         ApplicationStatus `gorm:"size:32;index;not null" json:"status"`
	SubmittedAt    time.Time         `json:"submitted_at"`
	AIScore        int               `gorm:"column:ai_score" json:"ai_score"`
	Feedback       string            `gorm:"type:text" json:"feedback"`
	HireDate       *time.Time        `json:"hire_date,omitempty"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// AiData holds the screening and interview scores of one application.
type AiData struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ApplicationID       uint      `gorm:"uniqueIndex;not null" json:"application_id"`
	ResumeScore         int       `json:"resume_score"`
	InterviewScore      int       `json:"interview_score"`
	SkillMatchScore     int       `json:"skill_match_score"`
	PersonalityScore    int       `json:"personality_score"`
	OverallScore        int       `json:"overall_score"`
	BiasDetectionResult string    `gorm:"type:text" json:"bias_detection_result"`
	AIFeedback          string    `gorm:"column:ai_feedback;type:text" json:"ai_feedback"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (AiData) TableName() string { return "ai_data" }

type Bias struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	ApplicationID     uint      `gorm:"uniqueIndex;not null" json:"application_id"`
	BiasScoreGender   float64   `json:"bias_score_gender"`
	BiasScoreAge      float64   `json:"bias_score_age"`
	PredictedDecision int       `json:"predicted_decision"`
	BiasDetected      bool      `json:"bias_detected"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// JobScore memoizes the match score of a candidate for a job. Rows are never
// recomputed once written.
type JobScore struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CandidateID uint      `gorm:"uniqueIndex:idx_candidate_job;not null" json:"candidate_id"`
	JobID       uint      `gorm:"uniqueIndex:idx_candidate_job;not null" json:"job_id"`
	MatchScore  int       `json:"match_score"`
	CreatedAt   time.Time `json:"created_at"`
}
