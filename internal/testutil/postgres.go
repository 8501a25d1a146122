// Package testutil provides test helpers including container management.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fennwald/emberquest/internal/config"
	"github.com/fennwald/emberquest/internal/storage/postgres"
)

// PostgresContainer wraps a testcontainers PostgreSQL instance.
type PostgresContainer struct {
	container testcontainers.Container
	Pool      *postgres.Pool
	RawPool   *pgxpool.Pool
	Config    config.DatabaseConfig
}

// NewPostgresContainer starts a PostgreSQL test container and returns
// a connected Pool.
//
// Precondition: Docker must be available.
// Postcondition: Returns a running container with a connected pool,
// or fails the test.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("starting postgres container: %v [%s]", err, time.Since(start))
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("getting container host: %v", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("getting mapped port: %v", err)
	}

	dbCfg := config.DatabaseConfig{
		Host:            host,
		Port:            mappedPort.Int(),
		User:            "test",
		Password:        "test",
		Name:            "test",
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
	}

	pool, err := postgres.NewPool(ctx, dbCfg)
	if err != nil {
		t.Fatalf("connecting to test postgres: %v [%s]", err, time.Since(start))
	}

	t.Logf("postgres container started [%s]", time.Since(start))

	pc := &PostgresContainer{
		container: container,
		Pool:      pool,
		RawPool:   pool.DB(),
		Config:    dbCfg,
	}

	t.Cleanup(func() {
		pool.Close()
		_ = container.Terminate(ctx)
	})

	return pc
}

// ApplyMigrations runs the schema creation SQL directly for tests.
// This avoids requiring the migrate tool in the test environment.
//
// Precondition: Pool must be connected.
// Postcondition: The characters, battle_sessions, and battle_history
// tables exist in the test database.
func (pc *PostgresContainer) ApplyMigrations(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	schema := `
		CREATE TABLE IF NOT EXISTS characters (
			id                 BIGSERIAL PRIMARY KEY,
			user_id            BIGINT NOT NULL UNIQUE,
			name               VARCHAR(64) NOT NULL,
			level              INT NOT NULL DEFAULT 1,
			experience         INT NOT NULL DEFAULT 0,
			experience_to_next INT NOT NULL DEFAULT 100,
			hp                 INT NOT NULL,
			max_hp             INT NOT NULL,
			mp                 INT NOT NULL,
			max_mp             INT NOT NULL,
			sp                 INT NOT NULL,
			max_sp             INT NOT NULL,
			attack             INT NOT NULL,
			defense            INT NOT NULL,
			agility            INT NOT NULL,
			evasion            INT NOT NULL,
			magic_attack       INT NOT NULL,
			accuracy           INT NOT NULL,
			gold               INT NOT NULL DEFAULT 0,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS battle_sessions (
			id              BIGSERIAL PRIMARY KEY,
			user_id         BIGINT NOT NULL,
			battle_id       UUID NOT NULL UNIQUE,
			character_state JSONB NOT NULL,
			monster_state   JSONB NOT NULL,
			battle_log      JSONB NOT NULL DEFAULT '[]'::jsonb,
			turn            INT NOT NULL DEFAULT 1,
			location        VARCHAR(64) NOT NULL,
			status          VARCHAR(16) NOT NULL DEFAULT 'active',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_battle_sessions_one_active
			ON battle_sessions (user_id) WHERE status = 'active';
		CREATE TABLE IF NOT EXISTS battle_history (
			id            BIGSERIAL PRIMARY KEY,
			battle_id     UUID NOT NULL UNIQUE,
			user_id       BIGINT NOT NULL,
			character_id  BIGINT NOT NULL,
			monster_id    VARCHAR(64) NOT NULL,
			location      VARCHAR(64) NOT NULL,
			result        VARCHAR(16) NOT NULL,
			turns         INT NOT NULL,
			experience    INT NOT NULL,
			gold_delta    INT NOT NULL,
			levels_gained INT NOT NULL,
			ended_at      TIMESTAMPTZ NOT NULL
		);
	`

	_, err := pc.RawPool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("applying migrations: %v", err)
	}
	t.Logf("migrations applied [%s]", time.Since(start))
}

// NewPool starts a postgres container, applies the schema, and returns a
// ready pgx pool. Cleanup is registered on t.
//
// Precondition: Docker must be available.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pc := NewPostgresContainer(t)
	pc.ApplyMigrations(t)
	return pc.RawPool
}

// DSN returns the connection string for the test database.
func (pc *PostgresContainer) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pc.Config.User, pc.Config.Password,
		pc.Config.Host, pc.Config.Port,
		pc.Config.Name, pc.Config.SSLMode,
	)
}
