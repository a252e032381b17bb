package domain

// Typed contracts of the external scoring services.

type ResumeScreeningRequest struct {
	Resume                  []byte         `validate:"required"`
	FileType                ResumeFileType `validate:"required,oneof=pdf docx txt"`
	RequiredSkills          []string
	PreferredQualifications []string
}

type ResumeScreeningResult struct {
	ResumeScore    int
	Confidence     float64
	RelevanceScore float64
	MatchedSkills  []string
}

type SkillMatchRequest struct {
	CandidateSkills []string `json:"candidate_skills"`
	JobSkills       []string `json:"job_skills"`
}

// BiasFeatures is the candidate/job feature vector sent to bias detection.
type BiasFeatures struct {
	Gender              string `json:"Gender" validate:"required"`
	Age                 int    `json:"Age" validate:"min=0"`
	ExperienceYears     int    `json:"ExperienceYears" validate:"min=0"`
	EducationLevel      int    `json:"EducationLevel" validate:"min=1,max=4"`
	DistanceFromCompany int    `json:"DistanceFromCompany" validate:"min=0,max=100"`
	PersonalityScore    int    `json:"PersonalityScore" validate:"min=0,max=100"`
	SkillScore          int    `json:"SkillScore" validate:"min=0"`
	HiringDecision      int    `json:"HiringDecision" validate:"oneof=0 1"`
	InterviewScore      int    `json:"InterviewScore" validate:"min=0,max=100"`
	PreviousCompanies   int    `json:"PreviousCompanies" validate:"min=0"`
	RecruitmentStrategy string `json:"RecruitmentStrategy"`
}

type BiasResult struct {
	BiasScoreGender   float64
	BiasScoreAge      float64
	PredictedDecision int
	BiasDetected      bool
	// Raw is the response body as received.
	Raw string
}

type QuestionRequest struct {
	JobTitle                string   `json:"job_title" validate:"required"`
	RequiredSkills          []string `json:"required_skills"`
	PreferredQualifications []string `json:"preferred_qualifications"`
	TechnicalCount          int      `json:"technical_count" validate:"min=0"`
	BehavioralCount         int      `json:"behavioral_count" validate:"min=0"`
}

type QuestionResult struct {
	Completed    bool
	Message      string
	Question     string
	QuestionType QuestionType
}

type AnswerEvaluationRequest struct {
	Question     string       `json:"question" validate:"required"`
	Response     string       `json:"response" validate:"required"`
	QuestionType QuestionType `json:"question_type" validate:"required,oneof=technical behavioral"`
}
