package usecase

import (
	"context"

	"hiring-platform/domain"
)

// ScoringGateway talks to the external resume, skill, bias and interview
// services.
type ScoringGateway interface {
	ScreenResume(ctx context.Context, req domain.ResumeScreeningRequest) (*domain.ResumeScreeningResult, error)
	MatchSkills(ctx context.Context, req domain.SkillMatchRequest) (int, error)
	DetectBias(ctx context.Context, features domain.BiasFeatures) (*domain.BiasResult, error)
	NextQuestion(ctx context.Context, req domain.QuestionRequest) (*domain.QuestionResult, error)
	EvaluateAnswer(ctx context.Context, req domain.AnswerEvaluationRequest) (float64, error)
}

type ProfileRepository interface {
	GetCandidate(ctx context.Context, id uint) (*domain.CandidateProfile, error)
	GetRecruiter(ctx context.Context, id uint) (*domain.RecruiterProfile, error)
	ListRecruiters(ctx context.Context) ([]domain.RecruiterProfile, error)
	GetJob(ctx context.Context, id uint) (*domain.Job, error)
	ListJobs(ctx context.Context) ([]domain.Job, error)
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	Get(ctx context.Context, id uint) (*domain.Application, error)
	// Save persists status, score and feedback of an existing application.
	Save(ctx context.Context, app *domain.Application) error
	ListByCandidate(ctx context.Context, candidateID uint) ([]domain.Application, error)
	ListByJob(ctx context.Context, jobID uint) ([]domain.Application, error)
	// ListByRecruiter returns the applications on all of the recruiter's jobs.
	ListByRecruiter(ctx context.Context, recruiterID uint) ([]domain.Application, error)
	// CountForRecruiter counts applications on the recruiter's jobs, in total
	// and with status Shortlisted.
	CountForRecruiter(ctx context.Context, recruiterID uint) (total, shortlisted int64, err error)
}

type InterviewRepository interface {
	// ListByApplication returns responses in creation order.
	ListByApplication(ctx context.Context, applicationID uint) ([]domain.InterviewResponse, error)
	Create(ctx context.Context, resp *domain.InterviewResponse) error
	// LatestPending returns the unanswered response with the highest ID.
	LatestPending(ctx context.Context, applicationID uint) (*domain.InterviewResponse, error)
	SaveAnswer(ctx context.Context, id uint, answer string, score int) error
}

type ScoreRepository interface {
	UpsertAIData(ctx context.Context, data *domain.AiData) error
	GetAIData(ctx context.Context, applicationID uint) (*domain.AiData, error)
	UpsertBias(ctx context.Context, bias *domain.Bias) error
	GetBias(ctx context.Context, applicationID uint) (*domain.Bias, error)
}

type JobScoreRepository interface {
	ListByCandidate(ctx context.Context, candidateID uint) ([]domain.JobScore, error)
	// CreateIfAbsent never overwrites an existing (candidate, job) row.
	CreateIfAbsent(ctx context.Context, score *domain.JobScore) error
}

type DashboardRepository interface {
	Upsert(ctx context.Context, d *domain.Dashboard) error
	// ListByRecruiter filters by period unless it is empty.
	ListByRecruiter(ctx context.Context, recruiterID uint, period domain.Period) ([]domain.Dashboard, error)
}

type CandidateDataRepository interface {
	// EraseCandidate removes the profile and everything hanging off it.
	EraseCandidate(ctx context.Context, candidateID uint) error
}

type AuditLogReader interface {
	ListByActorEmail(ctx context.Context, email string) ([]domain.AuditLog, error)
	ListAll(ctx context.Context) ([]domain.AuditLog, error)
}

// AuditSink is fire-and-forget; implementations log their own failures.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuditEvent)
}

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func
	// releases it.
	Lock(ctx context.Context, key string) (func(), error)
}

type ResumeReader interface {
	ExtractText(data []byte, fileType domain.ResumeFileType) (string, error)
}

// Recorder receives workflow counters. A nil Recorder is allowed.
type Recorder interface {
	ApplicationSubmitted()
	InterviewDecided(status domain.ApplicationStatus)
	DashboardGenerated(period domain.Period)
}

// Repositories groups the persistence ports the use cases share.
type Repositories struct {
	Profiles      ProfileRepository
	Applications  ApplicationRepository
	Interviews    InterviewRepository
	Scores        ScoreRepository
	JobScores     JobScoreRepository
	Dashboards    DashboardRepository
	CandidateData CandidateDataRepository
	AuditLogs     AuditLogReader
}

type noopRecorder struct{}

func (noopRecorder) ApplicationSubmitted()                     {}
func (noopRecorder) InterviewDecided(domain.ApplicationStatus) {}
func (noopRecorder) DashboardGenerated(domain.Period)          {}

func recorderOrNoop(r Recorder) Recorder {
	if r == nil {
		return noopRecorder{}
	}
	return r
}
