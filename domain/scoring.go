package domain

import (
	"math"
	"strings"
)

// ShortlistThreshold is the lowest overall score that is shortlisted.
const ShortlistThreshold = 50

// BasePersonalityScore is used until behavioral answers exist.
const BasePersonalityScore = 70

func EducationBonus(level string) float64 {
	switch level {
	case "PhD":
		return 1.0
	case "Master's":
		return 0.8
	case "Bachelor's":
		return 0.6
	default:
		return 0.4
	}
}

// EducationLevelOrdinal encodes the education level for the bias service.
func EducationLevelOrdinal(level string) int {
	switch level {
	case "Bachelor's":
		return 2
	case "Master's":
		return 3
	case "PhD":
		return 4
	default:
		return 1
	}
}

// MetroArea returns the first comma-delimited token of a location.
func MetroArea(location string) string {
	metro, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(metro)
}

// SameMetroArea compares metro areas case-insensitively. Two empty metro
// areas match.
func SameMetroArea(a, b string) bool {
	return strings.EqualFold(MetroArea(a), MetroArea(b))
}

func LocationScore(c *CandidateProfile, j *Job) int {
	if SameMetroArea(c.Location, j.Location) {
		return 100
	}
	switch strings.ToLower(strings.TrimSpace(c.PreferredJobType)) {
	case "full-time":
		return 80
	case "contract", "hybrid":
		return 70
	case "remote", "part-time":
		return 60
	default:
		return 40
	}
}

// SkillOverlapRatio is |candidate ∩ required| / |required| over distinct
// skills, or 0 when nothing is required.
func SkillOverlapRatio(candidateSkills, requiredSkills []string) float64 {
	required := make(map[string]struct{}, len(requiredSkills))
	for _, s := range requiredSkills {
		required[s] = struct{}{}
	}
	if len(required) == 0 {
		return 0
	}

	matched := make(map[string]struct{})
	for _, s := range candidateSkills {
		if _, ok := required[s]; ok {
			matched[s] = struct{}{}
		}
	}
	return float64(len(matched)) / float64(len(required))
}

func experienceFactor(years int) float64 {
	return math.Min(float64(years)/5.0, 1.0)
}

// JobMatchScore weights skills 40, experience 30, location 20 and education
// 10, truncating each component, and clamps the sum to [0,100].
func JobMatchScore(c *CandidateProfile, j *Job) int {
	score := 0
	score += int(SkillOverlapRatio(c.Skills, j.RequiredSkills) * 40)
	score += int(experienceFactor(c.YearsOfExperience) * 30)
	score += int(float64(LocationScore(c, j)) * 0.20)
	score += int(EducationBonus(c.EducationLevel) * 10)
	return clamp(score, 0, 100)
}

// SkillScore feeds the bias feature vector. A job without required skills
// contributes a zero overlap instead of dividing by zero.
func SkillScore(c *CandidateProfile, j *Job) int {
	ratio := SkillOverlapRatio(c.Skills, j.RequiredSkills)
	return int((ratio*0.6 + experienceFactor(c.YearsOfExperience)*0.25 + EducationBonus(c.EducationLevel)*0.15) * 100)
}

func InterviewScore(responses []InterviewResponse) int {
	sum, n := 0, 0
	for _, r := range responses {
		if r.QuestionType.Valid() {
			sum += r.AIScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

func PersonalityScore(responses []InterviewResponse) int {
	sum, n := 0, 0
	for _, r := range responses {
		if r.QuestionType == QuestionBehavioral {
			sum += r.AIScore
			n++
		}
	}
	if n == 0 {
		return BasePersonalityScore
	}
	return sum / n
}

func OverallScore(d *AiData) int {
	return int(math.Round(
		float64(d.ResumeScore)*0.3 +
			float64(d.InterviewScore)*0.3 +
			float64(d.SkillMatchScore)*0.3 +
			float64(d.PersonalityScore)*0.1))
}

// Decide maps an overall score to the final application status.
func Decide(overall int) ApplicationStatus {
	if overall >= ShortlistThreshold {
		return StatusShortlisted
	}
	return StatusRejected
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampScore bounds an externally supplied score to [0,100].
func ClampScore(v int) int {
	return clamp(v, 0, 100)
}
