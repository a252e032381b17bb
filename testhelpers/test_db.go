package testhelpers

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hiring-platform/domain"
)

var models = []interface{}{
	&domain.CandidateProfile{},
	&domain.RecruiterProfile{},
	&domain.Job{},
	&domain.Application{},
	&domain.AiData{},
	&domain.Bias{},
	&domain.InterviewResponse{},
	&domain.JobScore{},
	&domain.Dashboard{},
	&domain.AuditLog{},
}

// SetupTestDB creates an isolated in-memory SQLite database for tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// a single connection keeps shared-cache SQLite free of table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// SeedRecruiterWithJob inserts a recruiter owning one job.
func SeedRecruiterWithJob(t *testing.T, db *gorm.DB, job domain.Job) (*domain.RecruiterProfile, *domain.Job) {
	t.Helper()

	n := countRows(t, db, &domain.RecruiterProfile{}) + 1
	rec := &domain.RecruiterProfile{Email: fmt.Sprintf("recruiter-%d@example.com", n), CompanyName: "Acme"}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("failed to seed recruiter: %v", err)
	}
	job.RecruiterID = rec.ID
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}
	return rec, &job
}

// SeedCandidate inserts a candidate profile with a unique default email.
func SeedCandidate(t *testing.T, db *gorm.DB, c domain.CandidateProfile) *domain.CandidateProfile {
	t.Helper()

	if c.Email == "" {
		c.Email = fmt.Sprintf("candidate-%d@example.com", countRows(t, db, &domain.CandidateProfile{})+1)
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("failed to seed candidate: %v", err)
	}
	return &c
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}
