package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hiring-platform/domain"
	"hiring-platform/infrastructure"
	"hiring-platform/testhelpers"
	"hiring-platform/usecase"
)

type stubGateway struct{}

func (stubGateway) ScreenResume(context.Context, domain.ResumeScreeningRequest) (*domain.ResumeScreeningResult, error) {
	return &domain.ResumeScreeningResult{ResumeScore: 70, Confidence: 90, RelevanceScore: 80, MatchedSkills: []string{"go"}}, nil
}

func (stubGateway) MatchSkills(context.Context, domain.SkillMatchRequest) (int, error) {
	return 50, nil
}

func (stubGateway) DetectBias(context.Context, domain.BiasFeatures) (*domain.BiasResult, error) {
	return &domain.BiasResult{Raw: `{}`}, nil
}

func (stubGateway) NextQuestion(context.Context, domain.QuestionRequest) (*domain.QuestionResult, error) {
	return &domain.QuestionResult{Question: "Why Go?", QuestionType: domain.QuestionBehavioral}, nil
}

func (stubGateway) EvaluateAnswer(context.Context, domain.AnswerEvaluationRequest) (float64, error) {
	return 64, nil
}

type testServer struct {
	router    *gin.Engine
	candidate domain.Actor
	recruiter domain.Actor
	jobID     uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	logger := zap.NewNop()
	scores := infrastructure.NewScoreRepository(db)
	auditRepo := infrastructure.NewAuditRepository(db)
	repos := usecase.Repositories{
		Profiles:      infrastructure.NewProfileRepository(db),
		Applications:  infrastructure.NewApplicationRepository(db),
		Interviews:    infrastructure.NewInterviewRepository(db),
		Scores:        scores,
		JobScores:     scores,
		Dashboards:    infrastructure.NewDashboardRepository(db),
		CandidateData: infrastructure.NewCandidateDataRepository(db),
		AuditLogs:     auditRepo,
	}
	audit := infrastructure.NewDBAuditSink(auditRepo, logger)
	locker := infrastructure.NewLocalLocker()

	router := gin.New()
	NewHTTPHandler(router, &HTTPHandler{
		Applications: usecase.NewApplicationUsecase(repos, stubGateway{}, infrastructure.NewResumeReader(logger), locker, audit, nil, logger),
		Matching:     usecase.NewMatchingUsecase(repos, logger),
		Dashboards:   usecase.NewDashboardUsecase(repos, locker, audit, nil, logger, time.Monday),
		Privacy:      usecase.NewPrivacyUsecase(repos, audit, logger),
		Logger:       logger,
	})

	rec, job := testhelpers.SeedRecruiterWithJob(t, db, domain.Job{Title: "Backend", RequiredSkills: []string{"go"}})
	c := testhelpers.SeedCandidate(t, db, domain.CandidateProfile{Skills: []string{"go"}, ConsentGiven: true})
	return &testServer{
		router:    router,
		candidate: domain.Actor{ID: c.ID, Email: c.Email, Role: domain.RoleCandidate},
		recruiter: domain.Actor{ID: rec.ID, Email: rec.Email, Role: domain.RoleRecruiter},
		jobID:     job.ID,
	}
}

func (s *testServer) do(t *testing.T, actor *domain.Actor, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if actor != nil {
		req.Header.Set("X-Actor-ID", fmt.Sprint(actor.ID))
		req.Header.Set("X-Actor-Role", string(actor.Role))
		req.Header.Set("X-Actor-Email", actor.Email)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) submitResume(t *testing.T, fileName string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("resume", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("Go developer"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return s.do(t, &s.candidate, http.MethodPost, fmt.Sprintf("/jobs/%d/applications", s.jobID), &body, mw.FormDataContentType())
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nil, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestActorMiddleware(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nil, http.MethodGet, "/candidates/me/applications", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, &domain.Actor{ID: 1, Role: "superuser"}, http.MethodGet, "/candidates/me/applications", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, &s.candidate, http.MethodGet, "/candidates/me/applications", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplicationFlow(t *testing.T) {
	s := newTestServer(t)

	w := s.submitResume(t, "resume.txt")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var app domain.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &app))
	assert.Equal(t, domain.StatusUnderReview, app.Status)

	w = s.do(t, &s.recruiter, http.MethodGet, fmt.Sprintf("/applications/%d/ai-data", app.ID), nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, &s.candidate, http.MethodPost, fmt.Sprintf("/applications/%d/interview/next", app.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var turn domain.InterviewTurn
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &turn))
	assert.Equal(t, 1, turn.Number)

	w = s.do(t, &s.candidate, http.MethodPost, fmt.Sprintf("/applications/%d/interview/next", app.ID), nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, &s.candidate, http.MethodPost, fmt.Sprintf("/applications/%d/interview/answer", app.ID), bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, &s.candidate, http.MethodPost, fmt.Sprintf("/applications/%d/interview/answer", app.ID), bytes.NewBufferString(`{"answer":"It is simple"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	var resp domain.InterviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 64, resp.AIScore)

	w = s.do(t, &s.candidate, http.MethodPost, fmt.Sprintf("/applications/%d/interview/complete", app.ID), nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, &s.candidate, http.MethodGet, "/candidates/me/recommendations", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, &s.candidate, http.MethodDelete, "/candidates/me/data", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, &s.recruiter, http.MethodGet, fmt.Sprintf("/applications/%d/ai-data", app.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitApplication_BadRequests(t *testing.T) {
	s := newTestServer(t)

	w := s.submitResume(t, "resume.odt")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, &s.candidate, http.MethodPost, "/jobs/abc/applications", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, &s.candidate, http.MethodPost, fmt.Sprintf("/jobs/%d/applications", s.jobID), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecruiterApplicationRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.submitResume(t, "resume.txt")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, &s.recruiter, http.MethodGet, fmt.Sprintf("/jobs/%d/applications", s.jobID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var apps []domain.Application
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apps))
	assert.Len(t, apps, 1)

	w = s.do(t, &s.candidate, http.MethodGet, fmt.Sprintf("/jobs/%d/applications", s.jobID), nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, &s.recruiter, http.MethodGet, "/jobs/999/applications", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, &s.recruiter, http.MethodGet, "/recruiters/me/applications", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apps))
	assert.Len(t, apps, 1)
}

func TestDashboardRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, &s.recruiter, http.MethodPost, "/recruiters/me/dashboard?period=weekly", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, &s.recruiter, http.MethodPost, "/recruiters/me/dashboard?period=yearly", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, &s.candidate, http.MethodPost, "/recruiters/me/dashboard?period=daily", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, &s.recruiter, http.MethodGet, "/recruiters/me/dashboard?period=weekly", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []domain.Dashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 1)
}

func TestAuditLogRoute(t *testing.T) {
	s := newTestServer(t)
	admin := domain.Actor{ID: 1, Email: "admin@example.com", Role: domain.RoleAdmin}

	w := s.do(t, &s.candidate, http.MethodGet, "/candidates/me/data", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, &s.candidate, http.MethodGet, "/admin/audit-logs?email="+s.candidate.Email, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, &admin, http.MethodGet, "/admin/audit-logs", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []domain.AuditLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.NotEmpty(t, all)

	w = s.do(t, &admin, http.MethodGet, "/admin/audit-logs?email="+s.candidate.Email, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var logs []domain.AuditLog
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditDataAccess, logs[0].Action)
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &HTTPHandler{Logger: zap.NewNop()}

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: job 1", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad period", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: admin access required", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("%w: already decided", domain.ErrStateViolation), http.StatusConflict},
		{fmt.Errorf("%w: timeout", domain.ErrGateway), http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.want), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.writeError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "disk full")
			}
		})
	}
}
