package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/config"
	"github.com/raushankrgupta/product-page-extractor/models"
)

const postgresConnectTimeout = 10 * time.Second

const createReportsTable = `CREATE TABLE IF NOT EXISTS page_reports (
	id         UUID PRIMARY KEY,
	url        TEXT NOT NULL,
	title      TEXT NOT NULL,
	report     JSONB NOT NULL,
	artifacts  JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

const insertReport = `INSERT INTO page_reports (id, url, title, report, artifacts, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore records each report as a row in page_reports
type PostgresStore struct {
	db    execer
	now   func() time.Time
	newID func() uuid.UUID
}

// NewPostgresStore opens a pool, pings it and makes sure the table exists
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, eris.New("postgres: dsn is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse dsn")
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}

	ctx, cancel := context.WithTimeout(ctx, postgresConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	s := newPostgresStore(pool)
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	zap.L().Info("connected to postgres", zap.String("table", "page_reports"))
	return s, nil
}

func newPostgresStore(db execer) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now, newID: uuid.New}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createReportsTable); err != nil {
		return eris.Wrap(err, "postgres: create page_reports")
	}
	return nil
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Put(ctx context.Context, report *models.PageReport, artifacts []Artifact) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: encode report")
	}
	refs := make([]artifactRef, len(artifacts))
	for i, a := range artifacts {
		refs[i] = artifactRef{Name: a.Name, ContentType: a.ContentType, Size: len(a.Data)}
	}
	refsJSON, err := json.Marshal(refs)
	if err != nil {
		return eris.Wrap(err, "postgres: encode artifacts")
	}

	id := s.newID()
	if _, err := s.db.Exec(ctx, insertReport, id, report.URL, report.Title, reportJSON, refsJSON, s.now().UTC()); err != nil {
		return eris.Wrap(err, "postgres: insert report")
	}
	zap.L().Info("stored report", zap.String("sink", "postgres"), zap.String("id", id.String()))
	return nil
}

// Close releases the pool
func (s *PostgresStore) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}
