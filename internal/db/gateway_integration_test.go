package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/internetofwater/nldi-go/internal/db"
)

// TestGateway_WithSession_RealPostGIS exercises the gateway against a real
// postgis/postgis container: acquire, run a trivial query, release, and
// confirm the pool returns to idle. Skipped in -short runs (no Docker in
// the fast unit-test loop).
func TestGateway_WithSession_RealPostGIS(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker; skipped in -short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx, "postgis/postgis:16-3.4",
		tcpostgres.WithDatabase("nldi"),
		tcpostgres.WithUsername("nldi"),
		tcpostgres.WithPassword("nldi"),
		testcontainers.WithWaitStrategyAndDeadline(90*time.Second, nil),
	)
	if err != nil {
		t.Fatalf("start postgis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	gw, err := db.Open(ctx, dsn, 4, 5*time.Second)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer gw.Close()

	if err := gw.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	var one int
	err = db.WithSession(ctx, gw, func(ctx context.Context, s db.Session) error {
		return s.QueryRow(ctx, "SELECT 1").Scan(&one)
	})
	if err != nil {
		t.Fatalf("WithSession: %v", err)
	}
	if one != 1 {
		t.Fatalf("got %d, want 1", one)
	}

	if stats := gw.Stats(); stats.AcquiredConns != 0 {
		t.Fatalf("AcquiredConns after release = %d, want 0", stats.AcquiredConns)
	}
}
