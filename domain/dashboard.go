package domain

import (
	"fmt"
	"strings"
	"time"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	}
	return "", fmt.Errorf("%w: invalid period %q, supported values: daily, weekly, monthly", ErrValidation, s)
}

// PeriodStart truncates now to the start of its period bucket in now's
// location: midnight for daily, weekStart at midnight for weekly and the
// first of the month for monthly.
func PeriodStart(now time.Time, period Period, weekStart time.Weekday) (time.Time, error) {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch period {
	case PeriodDaily:
		return midnight, nil
	case PeriodWeekly:
		back := (int(midnight.Weekday()) - int(weekStart) + 7) % 7
		return midnight.AddDate(0, 0, -back), nil
	case PeriodMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid period %q", ErrValidation, period)
}

// Dashboard holds recruiter metrics for one period bucket; it is unique on
// (RecruiterID, Period, PeriodStart).
type Dashboard struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	RecruiterID           uint      `gorm:"uniqueIndex:idx_recruiter_period;not null" json:"recruiter_id"`
	PeriodStart           time.Time `gorm:"uniqueIndex:idx_recruiter_period;not null" json:"period_start"`
	Period                Period    `gorm:"uniqueIndex:idx_recruiter_period;size:16;not null" json:"period"`
	TotalApplications     int       `json:"total_applications"`
	ShortlistedCandidates int       `json:"shortlisted_candidates"`
	GeneratedAt           time.Time `json:"generated_at"`
}

func (Dashboard) TableName() string { return "dashboard_metrics" }
