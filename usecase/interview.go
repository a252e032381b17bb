package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"hiring-platform/domain"
)

func applicationLockKey(applicationID uint) string {
	return fmt.Sprintf("application:%d", applicationID)
}

// screeningData loads the AiData written at submission. Applications whose
// screening failed have none and cannot be interviewed.
func (u *ApplicationUsecase) screeningData(ctx context.Context, applicationID uint) (*domain.AiData, error) {
	data, err := u.repos.Scores.GetAIData(ctx, applicationID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: application %d has not been screened", domain.ErrStateViolation, applicationID)
	}
	return data, err
}

// NextQuestion asks the question service for the next interview question
// and stores it as pending. It refuses while an earlier question is still
// unanswered.
func (u *ApplicationUsecase) NextQuestion(ctx context.Context, actor domain.Actor, applicationID uint) (*domain.InterviewTurn, error) {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return nil, err
	}
	unlock, err := u.locker.Lock(ctx, applicationLockKey(applicationID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	app, err := u.ownedApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusUnderReview {
		return nil, fmt.Errorf("%w: interview is closed for application %d (status %s)", domain.ErrStateViolation, app.ID, app.Status)
	}

	responses, err := u.repos.Interviews.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range responses {
		if r.Pending() {
			return nil, fmt.Errorf("%w: question %d is still awaiting an answer", domain.ErrStateViolation, r.ID)
		}
	}
	if len(responses) >= domain.RequiredInterviewQuestions {
		return &domain.InterviewTurn{Completed: true, Message: domain.InterviewCompletedMessage}, nil
	}

	if _, err := u.screeningData(ctx, app.ID); err != nil {
		return nil, err
	}
	job, err := u.repos.Profiles.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	technical, behavioral := domain.CountByType(responses)
	result, err := u.gateway.NextQuestion(ctx, domain.QuestionRequest{
		JobTitle:                job.Title,
		RequiredSkills:          job.RequiredSkills,
		PreferredQualifications: job.PreferredQualifications,
		TechnicalCount:          technical,
		BehavioralCount:         behavioral,
	})
	if err != nil {
		return nil, err
	}
	if result.Completed {
		return &domain.InterviewTurn{Completed: true, Message: result.Message}, nil
	}

	resp := &domain.InterviewResponse{
		ApplicationID: app.ID,
		Question:      result.Question,
		QuestionType:  result.QuestionType,
		CreatedAt:     u.now(),
	}
	if err := u.repos.Interviews.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("failed to save question: %w", err)
	}

	u.logger.Debug("interview question issued",
		zap.Uint("application_id", app.ID),
		zap.Uint("response_id", resp.ID),
		zap.String("question_type", string(resp.QuestionType)))
	return &domain.InterviewTurn{
		ResponseID:   resp.ID,
		Question:     resp.Question,
		QuestionType: resp.QuestionType,
		Number:       len(responses) + 1,
	}, nil
}

// SubmitAnswer evaluates the answer to the latest pending question and
// stores it on that row only.
func (u *ApplicationUsecase) SubmitAnswer(ctx context.Context, actor domain.Actor, applicationID uint, answer string) (*domain.InterviewResponse, error) {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("%w: answer must not be empty", domain.ErrValidation)
	}
	unlock, err := u.locker.Lock(ctx, applicationLockKey(applicationID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	app, err := u.ownedApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != domain.StatusUnderReview {
		return nil, fmt.Errorf("%w: interview is closed for application %d (status %s)", domain.ErrStateViolation, app.ID, app.Status)
	}

	pending, err := u.repos.Interviews.LatestPending(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	raw, err := u.gateway.EvaluateAnswer(ctx, domain.AnswerEvaluationRequest{
		Question:     pending.Question,
		Response:     answer,
		QuestionType: pending.QuestionType,
	})
	if err != nil {
		return nil, err
	}
	score := domain.ClampScore(int(math.Round(raw)))

	if err := u.repos.Interviews.SaveAnswer(ctx, pending.ID, answer, score); err != nil {
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}
	pending.CandidateResponse = &answer
	pending.AIScore = score
	return pending, nil
}

// CompleteInterview recomputes the scores from the five answered questions
// and decides the application. The status stays Under Review until every
// local precondition holds. An application left in FinalReview by a failed
// scoring call can be completed again.
func (u *ApplicationUsecase) CompleteInterview(ctx context.Context, actor domain.Actor, applicationID uint) (*domain.Application, error) {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return nil, err
	}
	unlock, err := u.locker.Lock(ctx, applicationLockKey(applicationID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	app, err := u.ownedApplication(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status.Decided() {
		return nil, fmt.Errorf("%w: application %d is already %s", domain.ErrStateViolation, app.ID, app.Status)
	}

	responses, err := u.repos.Interviews.ListByApplication(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if len(responses) != domain.RequiredInterviewQuestions {
		return nil, fmt.Errorf("%w: interview not fully completed, expected %d questions, found %d",
			domain.ErrStateViolation, domain.RequiredInterviewQuestions, len(responses))
	}
	for _, r := range responses {
		if r.Pending() {
			return nil, fmt.Errorf("%w: question %d has not been answered", domain.ErrValidation, r.ID)
		}
	}

	candidate, err := u.repos.Profiles.GetCandidate(ctx, app.CandidateID)
	if err != nil {
		return nil, err
	}
	job, err := u.repos.Profiles.GetJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}

	data, err := u.screeningData(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	app.Status = domain.StatusFinalReview
	if err := u.repos.Applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	data.InterviewScore = domain.InterviewScore(responses)
	data.PersonalityScore = domain.PersonalityScore(responses)
	data.OverallScore = domain.OverallScore(data)
	if data.AIFeedback, err = u.feedback(ctx, app, job, data); err != nil {
		return nil, err
	}
	if err := u.repos.Scores.UpsertAIData(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save ai data: %w", err)
	}

	if data.BiasDetectionResult, err = u.detectBias(ctx, app, candidate, job, responses); err != nil {
		return nil, err
	}
	if err := u.repos.Scores.UpsertAIData(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to save ai data: %w", err)
	}

	app.Status = domain.Decide(data.OverallScore)
	app.AIScore = data.OverallScore
	if err := u.repos.Applications.Save(ctx, app); err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	u.audit.record(ctx, u.now(), actor, domain.AuditInterviewCompleted,
		fmt.Sprintf("Interview completed for application %d with overall score %d (%s)", app.ID, data.OverallScore, app.Status))
	u.recorder.InterviewDecided(app.Status)
	u.logger.Info("interview completed",
		zap.Uint("application_id", app.ID),
		zap.Int("overall_score", data.OverallScore),
		zap.String("status", string(app.Status)))
	return app, nil
}
