package infrastructure

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hiring-platform/domain"
)

func NewMySQLConnection(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DBDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	if cfg.SeedDemoData {
		if err := SeedDemoData(db, log); err != nil {
			return nil, err
		}
	}

	log.Info("connected to MySQL and migrated schema")
	return db, nil
}

// AutoMigrate creates or updates the tables of every domain model.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
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
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedDemoData inserts one recruiter with two jobs and one consenting
// candidate into an empty database.
func SeedDemoData(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&domain.Job{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count jobs: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		recruiter := domain.RecruiterProfile{
			Email:       "recruiter@example.com",
			CompanyName: "Acme Analytics",
			Location:    "Boston, MA",
		}
		if err := tx.Create(&recruiter).Error; err != nil {
			return fmt.Errorf("failed to seed recruiter: %w", err)
		}

		jobs := []domain.Job{
			{
				RecruiterID:             recruiter.ID,
				Title:                   "Backend Engineer",
				Description:             "Build the services behind our hiring products: REST APIs, MySQL, message queues.",
				Location:                "Boston, MA",
				WorkType:                "full-time",
				RecruitmentStrategy:     "Aggressive",
				RequiredSkills:          []string{"Go", "MySQL", "RabbitMQ", "REST"},
				PreferredQualifications: []string{"Bachelor's in Computer Science", "Experience with distributed systems"},
			},
			{
				RecruiterID:             recruiter.ID,
				Title:                   "Data Analyst",
				Description:             "Turn recruiting data into dashboards and insights.",
				Location:                "New York, NY",
				WorkType:                "hybrid",
				RecruitmentStrategy:     "Moderate",
				RequiredSkills:          []string{"SQL", "Python", "Statistics"},
				PreferredQualifications: []string{"Experience with BI tools"},
			},
		}
		if err := tx.Create(&jobs).Error; err != nil {
			return fmt.Errorf("failed to seed jobs: %w", err)
		}

		consentAt := time.Now()
		candidate := domain.CandidateProfile{
			Email:             "candidate@example.com",
			Name:              "Alex Doe",
			Location:          "Boston, MA",
			EducationLevel:    "Master's",
			YearsOfExperience: 4,
			PreferredJobType:  "full-time",
			Skills:            []string{"Go", "MySQL", "Docker"},
			Gender:            domain.UnknownGender,
			Age:               29,
			PreviousCompanies: 2,
			ConsentGiven:      true,
			ConsentDate:       &consentAt,
		}
		if err := tx.Create(&candidate).Error; err != nil {
			return fmt.Errorf("failed to seed candidate: %w", err)
		}

		log.Info("seeded demo data", zap.Int("jobs", len(jobs)))
		return nil
	})
}
