package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/orbitlabs/orbit-assess/internal/platform/logger"
)

// StoreService owns the persistence store handle. The engine is local
// first: with no DSN configured it opens (or creates) a SQLite file
// database. A Postgres DSN switches drivers without touching any
// caller.
type StoreService struct {
	db  *gorm.DB
	log *logger.Logger
}

type StoreConfig struct {
	// SQLitePath is the database file path, or ":memory:" for an
	// in-process store. Used when DSN is empty.
	SQLitePath string
	// DSN selects Postgres when non-empty.
	DSN string
}

func NewStoreService(cfg StoreConfig, logg *logger.Logger) (*StoreService, error) {
	serviceLog := logg.With("service", "StoreService")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var (
		handle *gorm.DB
		err    error
	)
	gormCfg := &gorm.Config{Logger: gormLog}
	if cfg.DSN != "" {
		handle, err = gorm.Open(postgres.Open(cfg.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
	} else {
		path := cfg.SQLitePath
		if path == "" {
			path = "orbit-assess.db"
		}
		if path == ":memory:" {
			path = "file::memory:?cache=shared"
		}
		handle, err = gorm.Open(sqlite.Open(path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store at %q: %w", path, err)
		}
		// SQLite leaves foreign keys off per connection.
		if err := handle.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return &StoreService{db: handle, log: serviceLog}, nil
}

func (s *StoreService) DB() *gorm.DB { return s.db }

func (s *StoreService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
