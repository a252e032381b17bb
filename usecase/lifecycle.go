package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hiring-platform/domain"
)

const feedbackFormat = "----- AI Evaluation Summary---\n" +
	"Resume Score     : %d/100\n" +
	" - Confidence    : %d%%\n" +
	" - Relevance     : %d%%\n" +
	"Behavioral Score : %d/100\n" +
	"Skills Score     : %d/100\n" +
	"Matched Skills   : %s"

var validate = validator.New()

type SubmitApplicationInput struct {
	JobID    uint   `validate:"required"`
	FileName string `validate:"required"`
	Resume   []byte `validate:"required,min=1"`
}

// ApplicationUsecase drives an application from submission through the
// interview to the final decision.
type ApplicationUsecase struct {
	repos    Repositories
	gateway  ScoringGateway
	reader   ResumeReader
	locker   Locker
	audit    auditor
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewApplicationUsecase(
	repos Repositories,
	gateway ScoringGateway,
	reader ResumeReader,
	locker Locker,
	audit AuditSink,
	recorder Recorder,
	logger *zap.Logger,
) *ApplicationUsecase {
	return &ApplicationUsecase{
		repos:    repos,
		gateway:  gateway,
		reader:   reader,
		locker:   locker,
		audit:    auditor{sink: audit},
		recorder: recorderOrNoop(recorder),
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (u *ApplicationUsecase) WithClock(now func() time.Time) *ApplicationUsecase {
	u.now = now
	return u
}

// Submit stores a new application and screens it synchronously. Screening
// failures leave the application Under Review without AI data.
func (u *ApplicationUsecase) Submit(ctx context.Context, actor domain.Actor, in SubmitApplicationInput) (*domain.Application, error) {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	fileType, err := domain.DetectResumeFileType(in.FileName)
	if err != nil {
		return nil, err
	}

	candidate, err := u.repos.Profiles.GetCandidate(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if !candidate.ConsentGiven {
		return nil, fmt.Errorf("%w: candidate %d has not consented to data processing", domain.ErrValidation, candidate.ID)
	}
	job, err := u.repos.Profiles.GetJob(ctx, in.JobID)
	if err != nil {
		return nil, err
	}

	text, err := u.reader.ExtractText(in.Resume, fileType)
	if err != nil {
		u.logger.Warn("resume text extraction failed",
			zap.Uint("candidate_id", candidate.ID),
			zap.String("file_type", string(fileType)),
			zap.Error(err))
		text = ""
	}

	app := &domain.Application{
		JobID:          job.ID,
		CandidateID:    candidate.ID,
		Resume:         in.Resume,
		ResumeFileType: fileType,
		ResumeText:     text,
		Status:         domain.StatusUnderReview,
		SubmittedAt:    u.now(),
	}
	if err := u.repos.Applications.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to save application: %w", err)
	}

	data, err := u.screen(ctx, app, candidate, job)
	if err != nil {
		return nil, fmt.Errorf("failed to screen application %d: %w", app.ID, err)
	}
	if err := u.repos.Scores.UpsertAIData(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save ai data: %w", err)
	}
	app.AIScore = data.OverallScore
	if err := u.repos.Applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	score := &domain.JobScore{
		CandidateID: candidate.ID,
		JobID:       job.ID,
		MatchScore:  domain.JobMatchScore(candidate, job),
	}
	if err := u.repos.JobScores.CreateIfAbsent(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to save job score: %w", err)
	}

	u.audit.record(ctx, u.now(), actor, domain.AuditApplicationSubmitted,
		fmt.Sprintf("Candidate applied to job %d (application %d)", job.ID, app.ID))
	u.recorder.ApplicationSubmitted()
	u.logger.Info("application submitted",
		zap.Uint("application_id", app.ID),
		zap.Uint("job_id", job.ID),
		zap.Int("overall_score", data.OverallScore))
	return app, nil
}

func (u *ApplicationUsecase) screen(ctx context.Context, app *domain.Application, candidate *domain.CandidateProfile, job *domain.Job) (*domain.AiData, error) {
	screening, err := u.gateway.ScreenResume(ctx, screeningRequest(app, job))
	if err != nil {
		return nil, err
	}

	data := &domain.AiData{
		ApplicationID:  app.ID,
		ResumeScore:    screening.ResumeScore,
		InterviewScore: domain.InterviewScore(nil),
	}

	data.SkillMatchScore, err = u.gateway.MatchSkills(ctx, domain.SkillMatchRequest{
		CandidateSkills: candidate.Skills,
		JobSkills:       job.RequiredSkills,
	})
	if err != nil {
		return nil, err
	}

	data.BiasDetectionResult, err = u.detectBias(ctx, app, candidate, job, nil)
	if err != nil {
		return nil, err
	}

	data.PersonalityScore = domain.PersonalityScore(nil)
	data.OverallScore = domain.OverallScore(data)

	data.AIFeedback, err = u.feedback(ctx, app, job, data)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// detectBias sends the feature vector, upserts the Bias row and returns the
// raw response.
func (u *ApplicationUsecase) detectBias(
	ctx context.Context,
	app *domain.Application,
	candidate *domain.CandidateProfile,
	job *domain.Job,
	responses []domain.InterviewResponse,
) (string, error) {
	hiring := 0
	if app.Status == domain.StatusShortlisted {
		hiring = 1
	}
	features := domain.BiasFeatures{
		Gender:              candidate.GenderOrUnknown(),
		Age:                 candidate.Age,
		ExperienceYears:     candidate.YearsOfExperience,
		EducationLevel:      domain.EducationLevelOrdinal(candidate.EducationLevel),
		DistanceFromCompany: domain.LocationScore(candidate, job),
		PersonalityScore:    domain.PersonalityScore(responses),
		SkillScore:          domain.SkillScore(candidate, job),
		HiringDecision:      hiring,
		InterviewScore:      domain.InterviewScore(responses),
		PreviousCompanies:   candidate.PreviousCompanies,
		RecruitmentStrategy: job.RecruitmentStrategy,
	}

	result, err := u.gateway.DetectBias(ctx, features)
	if err != nil {
		return "", err
	}
	bias := &domain.Bias{
		ApplicationID:     app.ID,
		BiasScoreGender:   result.BiasScoreGender,
		BiasScoreAge:      result.BiasScoreAge,
		PredictedDecision: result.PredictedDecision,
		BiasDetected:      result.BiasDetected,
	}
	if err := u.repos.Scores.UpsertBias(ctx, bias); err != nil {
		return "", fmt.Errorf("failed to save bias: %w", err)
	}
	return result.Raw, nil
}

func (u *ApplicationUsecase) feedback(ctx context.Context, app *domain.Application, job *domain.Job, data *domain.AiData) (string, error) {
	details, err := u.gateway.ScreenResume(ctx, screeningRequest(app, job))
	if err != nil {
		return "", err
	}
	return formatFeedback(data, details), nil
}

func formatFeedback(data *domain.AiData, details *domain.ResumeScreeningResult) string {
	return fmt.Sprintf(feedbackFormat,
		data.ResumeScore,
		int(details.Confidence),
		int(details.RelevanceScore),
		data.InterviewScore,
		data.SkillMatchScore,
		"["+strings.Join(details.MatchedSkills, ", ")+"]")
}

func screeningRequest(app *domain.Application, job *domain.Job) domain.ResumeScreeningRequest {
	return domain.ResumeScreeningRequest{
		Resume:                  app.Resume,
		FileType:                app.ResumeFileType,
		RequiredSkills:          job.RequiredSkills,
		PreferredQualifications: job.PreferredQualifications,
	}
}

func (u *ApplicationUsecase) ListCandidateApplications(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return nil, err
	}
	return u.repos.Applications.ListByCandidate(ctx, actor.ID)
}

// ListJobApplications returns the applications on one job to its recruiter
// or an admin.
func (u *ApplicationUsecase) ListJobApplications(ctx context.Context, actor domain.Actor, jobID uint) ([]domain.Application, error) {
	if actor.Require(domain.RoleAdmin) != nil {
		if err := actor.Require(domain.RoleRecruiter); err != nil {
			return nil, err
		}
	}
	job, err := u.repos.Profiles.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleRecruiter && job.RecruiterID != actor.ID {
		return nil, fmt.Errorf("%w: job %d belongs to another recruiter", domain.ErrForbidden, jobID)
	}
	return u.repos.Applications.ListByJob(ctx, job.ID)
}

func (u *ApplicationUsecase) ListRecruiterApplications(ctx context.Context, actor domain.Actor) ([]domain.Application, error) {
	if err := actor.Require(domain.RoleRecruiter); err != nil {
		return nil, err
	}
	return u.repos.Applications.ListByRecruiter(ctx, actor.ID)
}

func (u *ApplicationUsecase) GetAIData(ctx context.Context, actor domain.Actor, applicationID uint) (*domain.AiData, error) {
	if _, err := u.readableApplication(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return u.repos.Scores.GetAIData(ctx, applicationID)
}

func (u *ApplicationUsecase) GetBias(ctx context.Context, actor domain.Actor, applicationID uint) (*domain.Bias, error) {
	if _, err := u.readableApplication(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return u.repos.Scores.GetBias(ctx, applicationID)
}

func (u *ApplicationUsecase) ListInterviewResponses(ctx context.Context, actor domain.Actor, applicationID uint) ([]domain.InterviewResponse, error) {
	if _, err := u.readableApplication(ctx, actor, applicationID); err != nil {
		return nil, err
	}
	return u.repos.Interviews.ListByApplication(ctx, applicationID)
}

// readableApplication lets the owning candidate, the recruiter of the job
// and admins see an application.
func (u *ApplicationUsecase) readableApplication(ctx context.Context, actor domain.Actor, applicationID uint) (*domain.Application, error) {
	if actor.ID == 0 {
		return nil, fmt.Errorf("%w: missing actor", domain.ErrForbidden)
	}
	app, err := u.repos.Applications.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleAdmin:
		return app, nil
	case domain.RoleCandidate:
		if app.CandidateID == actor.ID {
			return app, nil
		}
	case domain.RoleRecruiter:
		job, err := u.repos.Profiles.GetJob(ctx, app.JobID)
		if err != nil {
			return nil, err
		}
		if job.RecruiterID == actor.ID {
			return app, nil
		}
	}
	return nil, fmt.Errorf("%w: application %d", domain.ErrForbidden, applicationID)
}

// ownedApplication loads an application that must belong to the candidate.
func (u *ApplicationUsecase) ownedApplication(ctx context.Context, actor domain.Actor, applicationID uint) (*domain.Application, error) {
	app, err := u.repos.Applications.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.CandidateID != actor.ID {
		return nil, fmt.Errorf("%w: application %d belongs to another candidate", domain.ErrForbidden, applicationID)
	}
	return app, nil
}
