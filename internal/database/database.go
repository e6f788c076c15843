package database

import (
	"fmt"
	"os"

	"blog-enhancer/internal/models"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	LogSQL   bool
}

// LoadConfig loads database configuration from environment variables
func LoadConfig() Config {
	return Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "blog_enhancer"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		LogSQL:   getEnv("DB_LOG_SQL", "") == "true",
	}
}

// DSN builds the postgres connection string, omitting an empty password
func (c Config) DSN() string {
	if c.Password == "" {
		return fmt.Sprintf(
			"host=%s port=%s user=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.DBName, c.SSLMode,
		)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Connect establishes a connection to the PostgreSQL database
func Connect(config Config, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Warn
	if config.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to connect to database")
	}

	log.Info("connected to database",
		zap.String("host", config.Host),
		zap.String("database", config.DBName))
	return db, nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	if db == nil {
		return eris.New("database connection not established")
	}

	if err := models.AutoMigrate(db); err != nil {
		return eris.Wrap(err, "failed to run migrations")
	}
	return nil
}

// Close closes the database connection
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
