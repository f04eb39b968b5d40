package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Store backends selectable through STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Settings is the process configuration read from the environment.
type Settings struct {
	Port        string
	DSN         string
	Store       string
	JWTSecret   string
	LogLevel    string
	Environment string
	SeedDemo    bool
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads .env when present and then the environment.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using system environment variables")
	}

	s := Settings{
		Port:        getEnv("PORT", "8080"),
		DSN:         os.Getenv("DB_DSN"),
		Store:       strings.ToLower(getEnv("STORE", StorePostgres)),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
		SeedDemo:    getEnv("SEED_DEMO", "false") == "true",
	}
	switch s.Store {
	case StorePostgres:
		if s.DSN == "" {
			return s, fmt.Errorf("config: DB_DSN is required when STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return s, fmt.Errorf("config: unknown STORE %q", s.Store)
	}
	if s.JWTSecret == "" {
		return s, fmt.Errorf("config: JWT_SECRET is required")
	}
	return s, nil
}

// InitLogger sets the global zerolog level and, outside production, a
// human-readable console writer.
func InitLogger(s Settings) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(s.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if s.Environment == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "sitecore").Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return log.Logger
}

// gormConfig is shared by Connect and the migrations. Unique violations come
// back as gorm.ErrDuplicatedKey. Relations are not migrated as foreign keys:
// deleting a project leaves manpower, materials and reports pointing at it.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	}
}

// Connect opens Postgres, runs migrations and stores the handle in DB.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	DB = db
	return db, nil
}
