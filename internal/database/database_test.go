package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_LOG_SQL"} {
		t.Setenv(key, "")
	}

	config := LoadConfig()

	assert.Equal(t, "localhost", config.Host)
	assert.Equal(t, "5432", config.Port)
	assert.Equal(t, "blog_enhancer", config.DBName)
	assert.False(t, config.LogSQL)
}

func TestDSN(t *testing.T) {
	config := Config{Host: "db", Port: "5433", User: "app", DBName: "articles", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=app dbname=articles sslmode=disable", config.DSN())

	config.Password = "secret"
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=articles sslmode=disable", config.DSN())
}

func TestMigrateWithoutConnection(t *testing.T) {
	assert.Error(t, Migrate(nil))
	assert.NoError(t, Close(nil))
}
