package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hiring-platform/domain"
	"hiring-platform/infrastructure"
	"hiring-platform/testhelpers"
	"hiring-platform/usecase"
)

// fakeGateway answers with fixed scores and records what it was sent.
type fakeGateway struct {
	mu sync.Mutex

	resumeScore   int
	confidence    float64
	relevance     float64
	matchedSkills []string
	skillScore    int
	answerScore   float64

	screenCalls   int
	questionCalls int
	biasRequests  []domain.BiasFeatures
	evaluated     []domain.AnswerEvaluationRequest

	screenErr error
	biasErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		resumeScore:   80,
		confidence:    87.5,
		relevance:     64.9,
		matchedSkills: []string{"go", "sql"},
		skillScore:    60,
		answerScore:   75,
	}
}

func (g *fakeGateway) ScreenResume(_ context.Context, req domain.ResumeScreeningRequest) (*domain.ResumeScreeningResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.screenCalls++
	if g.screenErr != nil {
		return nil, g.screenErr
	}
	return &domain.ResumeScreeningResult{
		ResumeScore:    g.resumeScore,
		Confidence:     g.confidence,
		RelevanceScore: g.relevance,
		MatchedSkills:  g.matchedSkills,
	}, nil
}

func (g *fakeGateway) MatchSkills(context.Context, domain.SkillMatchRequest) (int, error) {
	return g.skillScore, nil
}

func (g *fakeGateway) DetectBias(_ context.Context, features domain.BiasFeatures) (*domain.BiasResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.biasRequests = append(g.biasRequests, features)
	if g.biasErr != nil {
		return nil, g.biasErr
	}
	return &domain.BiasResult{
		BiasScoreGender:   0.1,
		BiasScoreAge:      0.2,
		PredictedDecision: 1,
		Raw:               `{"bias_detected": false}`,
	}, nil
}

// NextQuestion asks three technical questions, then two behavioral ones.
func (g *fakeGateway) NextQuestion(_ context.Context, req domain.QuestionRequest) (*domain.QuestionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.questionCalls++
	switch {
	case req.TechnicalCount < 3:
		return &domain.QuestionResult{Question: "Explain channels", QuestionType: domain.QuestionTechnical}, nil
	case req.BehavioralCount < 2:
		return &domain.QuestionResult{Question: "Describe a conflict", QuestionType: domain.QuestionBehavioral}, nil
	}
	return &domain.QuestionResult{Completed: true, Message: domain.InterviewCompletedMessage}, nil
}

func (g *fakeGateway) EvaluateAnswer(_ context.Context, req domain.AnswerEvaluationRequest) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evaluated = append(g.evaluated, req)
	return g.answerScore, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *recordingSink) Record(_ context.Context, event domain.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Action)
	}
	return out
}

type testEnv struct {
	db         *gorm.DB
	repos      usecase.Repositories
	gateway    *fakeGateway
	audit      *recordingSink
	apps       *usecase.ApplicationUsecase
	dashboards *usecase.DashboardUsecase
	clock      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	scores := infrastructure.NewScoreRepository(db)
	repos := usecase.Repositories{
		Profiles:      infrastructure.NewProfileRepository(db),
		Applications:  infrastructure.NewApplicationRepository(db),
		Interviews:    infrastructure.NewInterviewRepository(db),
		Scores:        scores,
		JobScores:     scores,
		Dashboards:    infrastructure.NewDashboardRepository(db),
		CandidateData: infrastructure.NewCandidateDataRepository(db),
		AuditLogs:     infrastructure.NewAuditRepository(db),
	}

	env := &testEnv{
		db:      db,
		repos:   repos,
		gateway: newFakeGateway(),
		audit:   &recordingSink{},
		clock:   time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.clock }
	logger := zap.NewNop()
	locker := infrastructure.NewLocalLocker()

	env.apps = usecase.NewApplicationUsecase(repos, env.gateway, infrastructure.NewResumeReader(logger), locker, env.audit, nil, logger).WithClock(now)
	env.dashboards = usecase.NewDashboardUsecase(repos, locker, env.audit, nil, logger, time.Monday).WithClock(now)
	return env
}

// seedJob creates a recruiter with one job in Austin.
func (e *testEnv) seedJob(t *testing.T) (*domain.RecruiterProfile, *domain.Job) {
	t.Helper()
	return testhelpers.SeedRecruiterWithJob(t, e.db, domain.Job{
		Title:                   "Backend Engineer",
		Location:                "Austin, TX",
		RecruitmentStrategy:     "Moderate",
		RequiredSkills:          []string{"go", "sql", "k8s"},
		PreferredQualifications: []string{"BSc"},
	})
}

func (e *testEnv) seedCandidate(t *testing.T) (*domain.CandidateProfile, domain.Actor) {
	t.Helper()
	c := testhelpers.SeedCandidate(t, e.db, domain.CandidateProfile{
		Name:              "Jane Doe",
		Location:          "Austin, TX",
		EducationLevel:    "Bachelor's",
		YearsOfExperience: 4,
		PreferredJobType:  "full-time",
		Skills:            []string{"go", "sql"},
		Age:               31,
		PreviousCompanies: 2,
		ConsentGiven:      true,
	})
	return c, domain.Actor{ID: c.ID, Email: c.Email, Role: domain.RoleCandidate}
}

func (e *testEnv) submit(t *testing.T, actor domain.Actor, jobID uint) *domain.Application {
	t.Helper()
	app, err := e.apps.Submit(context.Background(), actor, usecase.SubmitApplicationInput{
		JobID:    jobID,
		FileName: "resume.txt",
		Resume:   []byte("Go developer with SQL experience"),
	})
	require.NoError(t, err)
	return app
}

// answerAll runs the interview until five questions are answered.
func (e *testEnv) answerAll(t *testing.T, actor domain.Actor, applicationID uint) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < domain.RequiredInterviewQuestions; i++ {
		turn, err := e.apps.NextQuestion(ctx, actor, applicationID)
		require.NoError(t, err)
		require.False(t, turn.Completed)
		_, err = e.apps.SubmitAnswer(ctx, actor, applicationID, "my answer")
		require.NoError(t, err)
	}
}
