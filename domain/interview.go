package domain

import "time"

// RequiredInterviewQuestions is the number of responses an interview must
// hold before it can be completed.
const RequiredInterviewQuestions = 5

// InterviewCompletedMessage is what the question service answers once the
// question budget is spent.
const InterviewCompletedMessage = "Interview completed"

type QuestionType string

const (
	QuestionTechnical  QuestionType = "technical"
	QuestionBehavioral QuestionType = "behavioral"
)

func (t QuestionType) Valid() bool {
	return t == QuestionTechnical || t == QuestionBehavioral
}

type InterviewResponse struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	ApplicationID     uint         `gorm:"index;not null" json:"application_id"`
	Question          string       `gorm:"type:text;not null" json:"question"`
	QuestionType      QuestionType `gorm:"size:16;not null" json:"question_type"`
	CandidateResponse *string      `gorm:"type:text" json:"candidate_response"`
	AIScore           int          `gorm:"column:ai_score" json:"ai_score"`
	CreatedAt         time.Time    `json:"created_at"`
}

// Pending reports whether the question still waits for an answer.
func (r InterviewResponse) Pending() bool {
	return r.CandidateResponse == nil
}

// InterviewTurn is the outcome of asking for the next interview question.
type InterviewTurn struct {
	Completed    bool         `json:"completed"`
	Message      string       `json:"message,omitempty"`
	ResponseID   uint         `json:"response_id,omitempty"`
	Question     string       `json:"question,omitempty"`
	QuestionType QuestionType `json:"question_type,omitempty"`
	Number       int          `json:"number,omitempty"`
}

// CountByType returns how many responses were asked per question type.
func CountByType(responses []InterviewResponse) (technical, behavioral int) {
	for _, r := range responses {
		switch r.QuestionType {
		case QuestionTechnical:
			technical++
		case QuestionBehavioral:
			behavioral++
		}
	}
	return technical, behavioral
}
