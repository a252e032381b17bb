package usecase

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"hiring-platform/domain"
)

// RecommendationLimit caps the number of recommended jobs.
const RecommendationLimit = 5

type JobRecommendation struct {
	Job        domain.Job `json:"job"`
	MatchScore int        `json:"match_score"`
}

type MatchingUsecase struct {
	repos  Repositories
	logger *zap.Logger
}

func NewMatchingUsecase(repos Repositories, logger *zap.Logger) *MatchingUsecase {
	return &MatchingUsecase{repos: repos, logger: logger}
}

// Recommend ranks every job for the candidate using cached match scores,
// computing and caching only the missing ones.
func (u *MatchingUsecase) Recommend(ctx context.Context, actor domain.Actor) ([]JobRecommendation, error) {
	if err := actor.Require(domain.RoleCandidate); err != nil {
		return nil, err
	}
	candidate, err := u.repos.Profiles.GetCandidate(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	jobs, err := u.repos.Profiles.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	cached, err := u.repos.JobScores.ListByCandidate(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}

	scores := make(map[uint]int, len(cached))
	for _, s := range cached {
		scores[s.JobID] = s.MatchScore
	}

	computed := 0
	recs := make([]JobRecommendation, 0, len(jobs))
	for _, job := range jobs {
		score, ok := scores[job.ID]
		if !ok {
			entry := &domain.JobScore{
				CandidateID: candidate.ID,
				JobID:       job.ID,
				MatchScore:  domain.JobMatchScore(candidate, &job),
			}
			if err := u.repos.JobScores.CreateIfAbsent(ctx, entry); err != nil {
				return nil, fmt.Errorf("failed to cache job score: %w", err)
			}
			score = entry.MatchScore
			computed++
		}
		recs = append(recs, JobRecommendation{Job: job, MatchScore: score})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		return recs[i].Job.ID < recs[j].Job.ID
	})
	if len(recs) > RecommendationLimit {
		recs = recs[:RecommendationLimit]
	}

	u.logger.Debug("job recommendations",
		zap.Uint("candidate_id", candidate.ID),
		zap.Int("jobs", len(jobs)),
		zap.Int("computed", computed))
	return recs, nil
}
