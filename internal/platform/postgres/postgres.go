package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connection couples the pgx pool with the GORM handle built on top of it.
type Connection struct {
	Pool *pgxpool.Pool
	DB   *gorm.DB
}

// Close releases the database/sql wrapper and the underlying pool.
func (c *Connection) Close() {
	if c == nil {
		return
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// Connect dials PostgreSQL through a pgx pool, verifies connectivity and opens GORM over it.
func Connect(ctx context.Context, dsn string) (*Connection, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, err
	}
	return &Connection{Pool: pool, DB: db}, nil
}

// ConnectFromEnv dials PostgreSQL using POSTGRES_DSN and returns the connection plus a cleanup function.
// When POSTGRES_DSN is missing or the connection fails, it logs and returns nil with a no-op cleanup.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger) (*Connection, func()) {
	return ConnectDSN(ctx, os.Getenv("POSTGRES_DSN"), logger)
}

// ConnectDSN behaves like ConnectFromEnv for an explicit DSN.
func ConnectDSN(ctx context.Context, dsn string, logger *slog.Logger) (*Connection, func()) {
	if strings.TrimSpace(dsn) == "" {
		if logger != nil {
			logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		}
		return nil, func() {}
	}
	conn, err := Connect(ctx, dsn)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("postgres connection established", slog.Int("maxConns", int(conn.Pool.Config().MaxConns)))
	}
	return conn, conn.Close
}
