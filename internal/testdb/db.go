// Package testdb provides database helpers for tests: an in-memory SQLite
// database for unit tests and a disposable Postgres container for
// integration tests.
package testdb

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/database"
)

// TestDB wraps a test database instance
type TestDB struct {
	DB        *gorm.DB
	Config    *config.Config
	Container testcontainers.Container
}

// Close cleans up the test database
func (td *TestDB) Close() error {
	if td.Container != nil {
		return td.Container.Terminate(context.Background())
	}
	return nil
}

// Setup creates an in-memory SQLite database with the full schema applied.
// Each call gets its own database, so tests stay independent.
func Setup(t *testing.T) *gorm.DB {
	t.Helper()
	_ = os.Setenv("ENV", "test")

	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared",
		JWTSecret:  "test-secret",
	}

	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SetupPostgres starts a throwaway Postgres container and returns a
// connected, migrated database. Skipped when Docker is unavailable
// (set SKIP_INTEGRATION=1 to skip explicitly).
func SetupPostgres(t *testing.T) *TestDB {
	t.Helper()
	if os.Getenv("SKIP_INTEGRATION") != "" {
		t.Skip("integration tests disabled")
	}
	_ = os.Setenv("ENV", "test")

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections"),
			wait.ForListeningPort("5432/tcp"),
		),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := &config.Config{
		DBDriver:   "postgres",
		DBHost:     host,
		DBPort:     port.Port(),
		DBUser:     "test",
		DBPassword: "test",
		DBName:     "test",
		DBSSLMode:  "disable",
		JWTSecret:  "test-secret",
	}

	db, err := database.New(cfg)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	testDB := &TestDB{DB: db, Config: cfg, Container: container}
	t.Cleanup(func() {
		if err := testDB.Close(); err != nil {
			t.Logf("Error cleaning up test database: %v", err)
		}
	})
	return testDB
}
