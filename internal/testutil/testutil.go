// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/penshort/roster/internal/database"
	"github.com/penshort/roster/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420421

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema reverts and reapplies every migration.
func ResetSchema(t testing.TB, databaseURL string) {
	t.Helper()
	if err := database.Reset(databaseURL); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

var seq atomic.Int64

// UniqueEmail returns an address no other call in this process returns.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@example.com", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates a user with sensible defaults and a fresh id.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	first := "Test"
	return &model.User{
		ID:       model.NewID(),
		Email:    UniqueEmail("user"),
		IsActive: true,
		Phone:    "555-0100",
		First:    &first,
	}
}

// NewTestReceiver creates a receiver pointing at user, or at nothing when
// user is nil.
func NewTestReceiver(t testing.TB, user *model.User) *model.Receiver {
	t.Helper()
	r := &model.Receiver{ID: model.NewID()}
	if user != nil {
		id := user.ID
		r.ReceiverID = &id
	}
	return r
}
