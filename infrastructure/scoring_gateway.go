package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hiring-platform/domain"
)

const (
	serviceResume    = "resume_screening"
	serviceSkills    = "skill_matching"
	serviceBias      = "bias_detection"
	serviceQuestion  = "question_generation"
	serviceEvaluator = "answer_evaluation"
)

// ScoringGateway is the HTTP client of the external scoring services. Calls
// are not retried or cached.
type ScoringGateway struct {
	resumeURL    string
	biasURL      string
	interviewURL string
	client       *http.Client
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewScoringGateway(cfg *Config, logger *zap.Logger) *ScoringGateway {
	return &ScoringGateway{
		resumeURL:    strings.TrimRight(cfg.ResumeServiceURL, "/"),
		biasURL:      strings.TrimRight(cfg.BiasServiceURL, "/"),
		interviewURL: strings.TrimRight(cfg.InterviewServiceURL, "/"),
		client:       &http.Client{Timeout: cfg.GatewayTimeout},
		validate:     validator.New(),
		logger:       logger,
	}
}

type screenResumeResponse struct {
	ResumeScore    *float64 `json:"resume_score"`
	Confidence     *float64 `json:"confidence"`
	RelevanceScore *float64 `json:"relevance_score"`
	MatchedSkills  []string `json:"matched_skills"`
}

type skillMatchResponse struct {
	SkillMatchScore *float64 `json:"skill_match_score" validate:"required"`
}

type biasRequest struct {
	CandidateData domain.BiasFeatures `json:"candidate_data"`
}

type biasResponse struct {
	BiasScoreGender   *float64 `json:"bias_score_gender" validate:"required"`
	BiasScoreAge      *float64 `json:"bias_score_age" validate:"required"`
	PredictedDecision *float64 `json:"predicted_decision" validate:"required"`
	BiasDetected      *bool    `json:"bias_detected" validate:"required"`
}

type questionResponse struct {
	Message      *string `json:"message"`
	Question     *string `json:"question"`
	QuestionType *string `json:"question_type"`
}

type answerResponse struct {
	OverallScore *float64 `json:"overall_score" validate:"required"`
}

// ScreenResume uploads the resume as multipart form data. A missing
// resume_score counts as 0.
func (g *ScoringGateway) ScreenResume(ctx context.Context, req domain.ResumeScreeningRequest) (*domain.ResumeScreeningResult, error) {
	if err := g.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: resume screening request: %w", domain.ErrValidation, err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("resume", "resume."+string(req.FileType))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(req.Resume); err != nil {
		return nil, fmt.Errorf("failed to write resume: %w", err)
	}
	for _, s := range req.RequiredSkills {
		if err := w.WriteField("required_skills[]", s); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	for _, q := range req.PreferredQualifications {
		if err := w.WriteField("preferred_qualifications[]", q); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	var resp screenResumeResponse
	if _, err := g.post(ctx, serviceResume, g.resumeURL+"/screen_resume", w.FormDataContentType(), &body, &resp); err != nil {
		return nil, err
	}

	result := &domain.ResumeScreeningResult{MatchedSkills: resp.MatchedSkills}
	if resp.ResumeScore != nil {
		result.ResumeScore = int(*resp.ResumeScore)
	}
	if resp.Confidence != nil {
		result.Confidence = *resp.Confidence
	}
	if resp.RelevanceScore != nil {
		result.RelevanceScore = *resp.RelevanceScore
	}
	return result, nil
}

func (g *ScoringGateway) MatchSkills(ctx context.Context, req domain.SkillMatchRequest) (int, error) {
	var resp skillMatchResponse
	if _, err := g.postJSON(ctx, serviceSkills, g.resumeURL+"/match_skills", req, &resp); err != nil {
		return 0, err
	}
	return int(*resp.SkillMatchScore), nil
}

func (g *ScoringGateway) DetectBias(ctx context.Context, features domain.BiasFeatures) (*domain.BiasResult, error) {
	if err := g.validate.Struct(features); err != nil {
		return nil, fmt.Errorf("%w: bias features: %w", domain.ErrValidation, err)
	}

	var resp biasResponse
	raw, err := g.postJSON(ctx, serviceBias, g.biasURL+"/analyze_bias", biasRequest{CandidateData: features}, &resp)
	if err != nil {
		return nil, err
	}
	return &domain.BiasResult{
		BiasScoreGender:   *resp.BiasScoreGender,
		BiasScoreAge:      *resp.BiasScoreAge,
		PredictedDecision: int(*resp.PredictedDecision),
		BiasDetected:      *resp.BiasDetected,
		Raw:               string(raw),
	}, nil
}

// NextQuestion returns Completed when the service answers with a message
// instead of a question.
func (g *ScoringGateway) NextQuestion(ctx context.Context, req domain.QuestionRequest) (*domain.QuestionResult, error) {
	if err := g.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: question request: %w", domain.ErrValidation, err)
	}

	var resp questionResponse
	if _, err := g.postJSON(ctx, serviceQuestion, g.interviewURL+"/generate_question", req, &resp); err != nil {
		return nil, err
	}

	if resp.Question == nil {
		if resp.Message != nil {
			return &domain.QuestionResult{Completed: true, Message: *resp.Message}, nil
		}
		return nil, fmt.Errorf("%w: %s response has neither question nor message", domain.ErrGateway, serviceQuestion)
	}
	if resp.QuestionType == nil || !domain.QuestionType(*resp.QuestionType).Valid() {
		return nil, fmt.Errorf("%w: %s response has no valid question_type", domain.ErrGateway, serviceQuestion)
	}
	return &domain.QuestionResult{
		Question:     *resp.Question,
		QuestionType: domain.QuestionType(*resp.QuestionType),
	}, nil
}

func (g *ScoringGateway) EvaluateAnswer(ctx context.Context, req domain.AnswerEvaluationRequest) (float64, error) {
	if err := g.validate.Struct(req); err != nil {
		return 0, fmt.Errorf("%w: answer evaluation request: %w", domain.ErrValidation, err)
	}

	var resp answerResponse
	if _, err := g.postJSON(ctx, serviceEvaluator, g.interviewURL+"/conduct_interview", req, &resp); err != nil {
		return 0, err
	}
	return *resp.OverallScore, nil
}

func (g *ScoringGateway) postJSON(ctx context.Context, service, url string, payload, out interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return g.post(ctx, service, url, "application/json", bytes.NewReader(jsonData), out)
}

// post sends the request, decodes the body into out and validates it. Every
// failure is reported as domain.ErrGateway.
func (g *ScoringGateway) post(ctx context.Context, service, url, contentType string, body io.Reader, out interface{}) (raw []byte, err error) {
	start := time.Now()
	defer func() {
		observeGatewayCall(service, err, time.Since(start))
		if err != nil {
			g.logger.Warn("scoring service call failed", zap.String("service", service), zap.Error(err))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", domain.ErrGateway, err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to send request to %s: %w", domain.ErrGateway, service, err)
	}
	defer resp.Body.Close()

	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s response: %w", domain.ErrGateway, service, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d: %s", domain.ErrGateway, service, resp.StatusCode, truncate(raw, 512))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s response: %w", domain.ErrGateway, service, err)
	}
	if err := g.validate.Struct(out); err != nil {
		return nil, fmt.Errorf("%w: incomplete %s response: %w", domain.ErrGateway, service, err)
	}
	return raw, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
