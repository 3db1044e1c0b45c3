// Package gormstore implements the repository interfaces on a relational
// database through gorm. Postgres is the production dialect; mysql and sqlite
// are supported for alternative deployments, local development and tests.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"mjnutrafit/coaching-api/internal/domain"
	"mjnutrafit/coaching-api/internal/repository"
)

// Supported values of database.driver handled by this package.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Options controls how Open connects.
type Options struct {
	Driver   string
	DSN      string
	Attempts int // connection attempts before giving up, default 1
	Logger   *logrus.Logger
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres, "":
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open connects to the database, retrying with exponential backoff.
func Open(opts Options) (*gorm.DB, error) {
	dial, err := dialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	cfg := &gorm.Config{TranslateError: true}
	if opts.Logger != nil {
		cfg.Logger = gormlogger.New(opts.Logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	} else {
		cfg.Logger = gormlogger.Discard
	}

	var db *gorm.DB
	for i := 1; i <= opts.Attempts; i++ {
		db, err = gorm.Open(dial, cfg)
		if err == nil {
			sqlDB, dbErr := db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					configurePool(opts.Driver, sqlDB)
					return db, nil
				}
			} else {
				err = dbErr
			}
		}
		if i == opts.Attempts {
			break
		}
		wait := time.Duration(1<<uint(i-1)) * time.Second
		if wait > 10*time.Second {
			wait = 10 * time.Second
		}
		if opts.Logger != nil {
			opts.Logger.WithError(err).WithField("attempt", i).Warn("database connection failed, retrying")
		}
		time.Sleep(wait)
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", opts.Attempts, err)
}

type poolSetter interface {
	SetMaxOpenConns(int)
	SetMaxIdleConns(int)
	SetConnMaxLifetime(time.Duration)
}

func configurePool(driver string, db poolSetter) {
	if driver == DriverSQLite {
		// A single connection keeps an in-memory database alive and shared.
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)
}

// AutoMigrate creates or alters the four tables.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&domain.User{},
		&domain.Plan{},
		&domain.ProgressLog{},
		&domain.Feedback{},
	)
}

// New bundles gorm-backed repositories sharing db.
func New(db *gorm.DB) *repository.Store {
	return &repository.Store{
		Users:    NewUserRepository(db),
		Plans:    NewPlanRepository(db),
		Progress: NewProgressRepository(db),
		Feedback: NewFeedbackRepository(db),
		Reports:  NewReportRepository(db),
		Migrate: func(ctx context.Context) error {
			return AutoMigrate(ctx, db)
		},
		Close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case isDuplicate(err):
		return repository.ErrDuplicateKey
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "1062")
}
