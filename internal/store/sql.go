package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/ats-matcher/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

// JobRecord mirrors the jobs table.
type JobRecord struct {
	ID               string         `gorm:"primaryKey;size:64"`
	Title            string         `gorm:"size:255"`
	Description      string         `gorm:"type:text"`
	Requirements     datatypes.JSON `gorm:"type:json"`
	Responsibilities string         `gorm:"type:text"`
	Status           string         `gorm:"size:32;index"`
	CreatedAt        time.Time
}

func (JobRecord) TableName() string { return "jobs" }

// CandidateRecord mirrors the candidates table.
type CandidateRecord struct {
	ID                string         `gorm:"primaryKey;size:64"`
	FirstName         string         `gorm:"size:128"`
	LastName          string         `gorm:"size:128"`
	Email             string         `gorm:"size:255"`
	Bio               string         `gorm:"type:text"`
	EducationLevel    string         `gorm:"size:64"`
	EmploymentHistory datatypes.JSON `gorm:"type:json"`
	Certifications    datatypes.JSON `gorm:"type:json"`
	CreatedAt         time.Time
}

func (CandidateRecord) TableName() string { return "candidates" }

type SQLConfig struct {
	Dialect string `mapstructure:"dialect"`
	DSN     string `mapstructure:"dsn"`
	Debug   bool   `mapstructure:"-"`
}

// SQLStore reads jobs and candidates through gorm.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenSQL connects to the database. Schema management is left to the operator.
func OpenSQL(cfg SQLConfig, logger *zap.Logger) (*SQLStore, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("sql dsn is required")
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Dialect)) {
	case DialectPostgres, "":
		dialector = postgres.Open(cfg.DSN)
	case DialectMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DialectSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}

	logLevel := gormlogger.Silent
	if cfg.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Dialect, err)
	}

	return NewSQLStore(db, logger), nil
}

func NewSQLStore(db *gorm.DB, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) FetchPublishedJobs(ctx context.Context) ([]models.Job, error) {
	var records []JobRecord
	if err := s.db.WithContext(ctx).
		Where("status = ?", models.JobStatusPublished).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("fetching published jobs: %w", err)
	}

	jobs := make([]models.Job, 0, len(records))
	for _, r := range records {
		job, err := r.toModel()
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	s.logger.Debug("fetched published jobs", zap.Int("count", len(jobs)))
	return jobs, nil
}

func (s *SQLStore) FetchAllCandidates(ctx context.Context) ([]models.CandidateProfile, error) {
	var records []CandidateRecord
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}

	candidates := make([]models.CandidateProfile, 0, len(records))
	for _, r := range records {
		c, err := r.toModel()
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	s.logger.Debug("fetched candidates", zap.Int("count", len(candidates)))
	return candidates, nil
}

func (s *SQLStore) GetJob(ctx context.Context, id string) (models.Job, error) {
	var record JobRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.JobStatusPublished).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("fetching job %s: %w", id, err)
	}
	return record.toModel()
}

func (r JobRecord) toModel() (models.Job, error) {
	job := models.Job{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		Responsibilities: r.Responsibilities,
		Status:           r.Status,
	}
	if err := decodeJSONColumn(r.Requirements, &job.Requirements); err != nil {
		return models.Job{}, fmt.Errorf("job %s requirements: %w", r.ID, err)
	}
	return job, nil
}

func (r CandidateRecord) toModel() (models.CandidateProfile, error) {
	c := models.CandidateProfile{
		ID:             r.ID,
		Name:           strings.TrimSpace(r.FirstName + " " + r.LastName),
		Email:          r.Email,
		Bio:            r.Bio,
		EducationLevel: r.EducationLevel,
	}
	if err := decodeJSONColumn(r.EmploymentHistory, &c.EmploymentHistory); err != nil {
		return models.CandidateProfile{}, fmt.Errorf("candidate %s employment history: %w", r.ID, err)
	}
	if err := decodeJSONColumn(r.Certifications, &c.Certifications); err != nil {
		return models.CandidateProfile{}, fmt.Errorf("candidate %s certifications: %w", r.ID, err)
	}
	return c, nil
}

func decodeJSONColumn(column datatypes.JSON, target any) error {
	if len(column) == 0 || string(column) == "null" {
		return nil
	}
	return json.Unmarshal(column, target)
}
