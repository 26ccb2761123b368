//go:build integration

// Package testdb starts a throwaway Postgres for integration tests.
package testdb

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/s/eduportal/internal/database"
)

type DBHandle struct {
	SQL  *sql.DB
	Gorm *gorm.DB
	stop func(context.Context) error
}

func (h *DBHandle) Close() {
	if h.Gorm != nil {
		if db, err := h.Gorm.DB(); err == nil {
			_ = db.Close()
		}
	}
	if h.SQL != nil {
		_ = h.SQL.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
}

// Start runs postgres in a container and applies the embedded migrations.
func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("eduportal"),
		postgres.WithUsername("eduportal"),
		postgres.WithPassword("eduportal"),
		tc.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(time.Minute)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "starting postgres container")
	}
	h := &DBHandle{stop: pg.Terminate}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		h.Close()
		return nil, errors.Wrap(err, "connection string")
	}
	if h.SQL, err = sql.Open("postgres", uri); err != nil {
		h.Close()
		return nil, errors.Wrap(err, "opening database")
	}
	if err := h.SQL.PingContext(ctx); err != nil {
		h.Close()
		return nil, errors.Wrap(err, "ping")
	}
	if err := database.RunGoose(ctx, "up", h.SQL); err != nil {
		h.Close()
		return nil, err
	}

	// goose работает через lib/pq, а gorm - через pgx, как в проде.
	if h.Gorm, err = database.Connect(uri, zap.NewNop()); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// New starts a database for t and terminates it on cleanup.
func New(t testing.TB) *DBHandle {
	t.Helper()
	h, err := Start(context.Background())
	if err != nil {
		t.Fatalf("testdb: %v", err)
	}
	t.Cleanup(h.Close)
	return h
}
