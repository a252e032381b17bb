package usecase_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hiring-platform/domain"
	"hiring-platform/usecase"
)

func TestRecommend_UsesCacheAndRanks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec, cachedJob := env.seedJob(t)
	candidate, actor := env.seedCandidate(t)
	matching := usecase.NewMatchingUsecase(env.repos, zap.NewNop())

	require.NoError(t, env.repos.JobScores.CreateIfAbsent(ctx, &domain.JobScore{
		CandidateID: candidate.ID,
		JobID:       cachedJob.ID,
		MatchScore:  99,
	}))

	var jobs []domain.Job
	for i := 1; i <= 6; i++ {
		job := domain.Job{
			RecruiterID:    rec.ID,
			Title:          fmt.Sprintf("Job %d", i),
			Location:       "Austin, TX",
			RequiredSkills: []string{"go"},
		}
		require.NoError(t, env.db.Create(&job).Error)
		jobs = append(jobs, job)
	}
	want := domain.JobMatchScore(candidate, &jobs[0])

	recs, err := matching.Recommend(ctx, actor)
	require.NoError(t, err)
	require.Len(t, recs, usecase.RecommendationLimit)

	assert.Equal(t, cachedJob.ID, recs[0].Job.ID)
	assert.Equal(t, 99, recs[0].MatchScore)
	for i, r := range recs[1:] {
		assert.Equal(t, jobs[i].ID, r.Job.ID)
		assert.Equal(t, want, r.MatchScore)
	}

	cached, err := env.repos.JobScores.ListByCandidate(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Len(t, cached, 7)

	// cached rows survive profile changes
	require.NoError(t, env.db.Model(candidate).Update("years_of_experience", 0).Error)
	again, err := matching.Recommend(ctx, actor)
	require.NoError(t, err)
	require.Len(t, again, len(recs))
	for i := range recs {
		assert.Equal(t, recs[i].Job.ID, again[i].Job.ID)
		assert.Equal(t, recs[i].MatchScore, again[i].MatchScore)
	}
}

func TestRecommend_CandidateOnly(t *testing.T) {
	env := newTestEnv(t)
	rec, _ := env.seedJob(t)
	matching := usecase.NewMatchingUsecase(env.repos, zap.NewNop())

	_, err := matching.Recommend(context.Background(), domain.Actor{ID: rec.ID, Role: domain.RoleRecruiter})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = matching.Recommend(context.Background(), domain.Actor{ID: 404, Role: domain.RoleCandidate})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecommend_SubmitSeedsCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, job := env.seedJob(t)
	candidate, actor := env.seedCandidate(t)
	env.submit(t, actor, job.ID)

	require.NoError(t, env.db.Model(candidate).Update("location", "Boston, MA").Error)

	recs, err := usecase.NewMatchingUsecase(env.repos, zap.NewNop()).Recommend(ctx, actor)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, domain.JobMatchScore(candidate, job), recs[0].MatchScore)
}
