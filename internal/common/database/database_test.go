package database

import (
	"context"
	"io/fs"
	"testing"
	"time"

	"loandesk/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()

	client := &PostgresClient{DB: sqlx.NewDb(db, "postgres")}
	require.NoError(t, client.Ping(context.Background()))
	assert.Same(t, db, client.SQL())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr(), LeadTTL: 90}, "")
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 90*time.Second, client.LeadTTL())

	addr := mr.Addr()
	mr.Close()
	err := client.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}

func TestPostgresClient_CloseNil(t *testing.T) {
	var client *PostgresClient
	assert.NoError(t, client.Close())
}

func TestNewElasticsearch(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{"http://localhost:9200"}})
	require.NoError(t, err)
	assert.NotNil(t, client.Client)
}

func TestMigrations_AreEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Len(t, files, 4)

	body, err := fs.ReadFile(migrationsFS, "migrations/00004_create_leads.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "idx_leads_provider_lead_id")
	assert.NotContains(t, string(body), "UNIQUE INDEX")
}
