// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"loandesk/internal/common/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresClient owns the lead and staff connection pool. Repositories take
// DB directly; the migrator needs the plain *sql.DB from SQL.
type PostgresClient struct {
	DB *sqlx.DB
}

// NewPostgres opens the pool without dialing. appName shows up in
// pg_stat_activity so intake and API traffic can be told apart from tools.
func NewPostgres(cfg config.PostgresConfig, appName string) (*PostgresClient, error) {
	dsn := cfg.GetDSN()
	if appName != "" {
		dsn += fmt.Sprintf(" application_name='%s'", strings.ReplaceAll(appName, "'", ""))
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres %s/%s: %w", cfg.Host, cfg.Database, err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

func (c *PostgresClient) SQL() *sql.DB {
	return c.DB.DB
}
