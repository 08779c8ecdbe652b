package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := newPostgresStore(mock)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	s.newID = func() uuid.UUID { return uuid.MustParse("6f1c2a3e-5b7d-4c8e-9a0b-1c2d3e4f5a6b") }
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS page_reports").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_MigrateError(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS page_reports").WillReturnError(errors.New("permission denied"))

	err := s.migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestPostgresStore_Put(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	report := &models.PageReport{URL: "https://shop.example/p/1", Title: "Kettle", Links: []string{}}
	artifacts := []Artifact{
		{Name: "a.html", ContentType: ContentTypeHTML, Data: []byte("<p>hi</p>")},
		{Name: "a.json", ContentType: ContentTypeJSON, Data: []byte("{}")},
	}

	reportJSON, err := json.Marshal(report)
	require.NoError(t, err)
	refsJSON, err := json.Marshal([]artifactRef{
		{Name: "a.html", ContentType: ContentTypeHTML, Size: 9},
		{Name: "a.json", ContentType: ContentTypeJSON, Size: 2},
	})
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO page_reports").
		WithArgs(
			uuid.MustParse("6f1c2a3e-5b7d-4c8e-9a0b-1c2d3e4f5a6b"),
			"https://shop.example/p/1",
			"Kettle",
			reportJSON,
			refsJSON,
			time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.Put(context.Background(), report, artifacts))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutError(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	mock.ExpectExec("INSERT INTO page_reports").WillReturnError(errors.New("connection reset"))

	err := s.Put(context.Background(), &models.PageReport{URL: "https://shop.example/"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert report")
	assert.Equal(t, "postgres", s.Name())
}

func TestNewPostgresStore_Validation(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), config.PostgresConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dsn is not set")

	_, err = NewPostgresStore(context.Background(), config.PostgresConfig{DSN: "postgres://%zz"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse dsn")
}
