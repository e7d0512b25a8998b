//go:build integration
// +build integration

// Package pgtest starts a disposable PostgreSQL for integration tests.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Apurer/storefront-tracking/internal/platform/migrations"
	platformpostgres "github.com/Apurer/storefront-tracking/internal/platform/postgres"
)

// Start runs postgres:15-alpine, applies the schema and registers cleanup on t.
func Start(t *testing.T) *platformpostgres.Connection {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(context.Background()) })

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	require.NoError(t, migrations.Run(conn.DB))
	return conn
}
