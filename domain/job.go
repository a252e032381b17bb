package domain

import "time"

type Job struct {
	ID                      uint      `gorm:"primaryKey" json:"id"`
	RecruiterID             uint      `gorm:"index;not null" json:"recruiter_id"`
	Title                   string    `gorm:"size:255;not null" json:"title"`
	Description             string    `gorm:"type:text" json:"description"`
	Location                string    `gorm:"size:255" json:"location"`
	WorkType                string    `gorm:"size:64" json:"work_type"`
	RecruitmentStrategy     string    `gorm:"size:64" json:"recruitment_strategy"`
	RequiredSkills          []string  `gorm:"type:text;serializer:json" json:"required_skills"`
	PreferredQualifications []string  `gorm:"type:text;serializer:json" json:"preferred_qualifications"`
	CreatedAt               time.Time `json:"created_at"`
}

type RecruiterProfile struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	CompanyName string    `gorm:"size:255" json:"company_name"`
	Location    string    `gorm:"size:255" json:"location"`
	CreatedAt   time.Time `json:"created_at"`
}
