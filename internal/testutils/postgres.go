// Package testutils starts throwaway infrastructure for integration tests.
package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ChuloWay/gamification-system/internal/db/bundb"
	"github.com/ChuloWay/gamification-system/internal/dbmigrate"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
)

// appTables lists every application table, children first.
var appTables = []string{"participant_achievements", "participant_badges", "achievements", "badges", "participants"}

// Postgres is a migrated database running in a container.
type Postgres struct {
	DB  *bun.DB
	DSN string
}

// NewPostgres starts postgres:16-alpine, applies all migrations and registers
// cleanup with t. Tests calling it are skipped in -short mode.
func NewPostgres(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := bundb.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := dbmigrate.Migrate(ctx, db, "", logger); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return &Postgres{DB: db, DSN: dsn}
}

// Truncate empties every application table.
func (p *Postgres) Truncate(t *testing.T) {
	t.Helper()
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(appTables, ", "))
	if _, err := p.DB.ExecContext(context.Background(), query); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// InsertParticipant writes a bare participant row with the given score.
func (p *Postgres) InsertParticipant(t *testing.T, name string, score int64) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := p.DB.QueryRowContext(context.Background(), `
		INSERT INTO participants (id, name, email, password_hash, score)
		VALUES (gen_random_uuid(), ?, ?, 'x', ?)
		RETURNING id
	`, name, strings.ToLower(name)+"@example.com", score).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert participant: %v", err)
	}
	return id
}
