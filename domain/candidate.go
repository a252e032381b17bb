package domain

import "time"

const UnknownGender = "Unknown"

// CandidateProfile is the candidate data the scoring formulas and the bias
// feature vector read from.
type CandidateProfile struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Email             string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name              string     `gorm:"size:255" json:"name"`
	Location          string     `gorm:"size:255" json:"location"` // "city, state"
	EducationLevel    string     `gorm:"size:64" json:"education_level"`
	YearsOfExperience int        `json:"years_of_experience"`
	PreferredJobType  string     `gorm:"size:64" json:"preferred_job_type"`
	Skills            []string   `gorm:"type:text;serializer:json" json:"skills"`
	Gender            string     `gorm:"size:32;default:Unknown" json:"gender"`
	Age               int        `json:"age"`
	PreviousCompanies int        `json:"previous_companies"`
	ConsentGiven      bool       `json:"consent_given"`
	ConsentDate       *time.Time `json:"consent_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// GenderOrUnknown never returns an empty string.
func (c *CandidateProfile) GenderOrUnknown() string {
	if c.Gender == "" {
		return UnknownGender
	}
	return c.Gender
}
