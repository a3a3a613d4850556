// Package postgres provides a Postgres-backed archive store.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/twir-walkthroughs/internal/walkthrough"
)

const defaultTable = "walkthrough_issues"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for the archive table.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Begin(context.Context) (pgx.Tx, error)
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Close()
}

// ArchiveStore keeps one row per issue with its articles as JSON.
type ArchiveStore struct {
	pool  pool
	table string
}

// New creates a Postgres-backed ArchiveStore and ensures its table exists.
func New(ctx context.Context, cfg Config) (*ArchiveStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage.postgres.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store, err := NewWithPool(p, cfg.Table)
	if err != nil {
		p.Close()
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return store, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(p pool, table string) (*ArchiveStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &ArchiveStore{pool: p, table: table}, nil
}

// EnsureSchema creates the archive table when missing.
func (s *ArchiveStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	issue_url TEXT PRIMARY KEY,
	articles JSONB NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *ArchiveStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Load reads every issue row. An empty table reports false.
func (s *ArchiveStore) Load(ctx context.Context) (walkthrough.Archive, bool, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT issue_url, articles FROM %s", s.table))
	if err != nil {
		return nil, false, fmt.Errorf("query archive: %w", err)
	}
	defer rows.Close()

	archive := walkthrough.Archive{}
	for rows.Next() {
		var (
			issue string
			raw   []byte
		)
		if err := rows.Scan(&issue, &raw); err != nil {
			return nil, false, fmt.Errorf("scan archive row: %w", err)
		}
		articles := []walkthrough.Article{}
		if err := json.Unmarshal(raw, &articles); err != nil {
			return nil, false, fmt.Errorf("decode articles for %s: %w", issue, err)
		}
		archive[issue] = articles
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate archive rows: %w", err)
	}
	if len(archive) == 0 {
		return nil, false, nil
	}
	return archive, true, nil
}

// Save replaces the table contents with the archive in one transaction.
func (s *ArchiveStore) Save(ctx context.Context, archive walkthrough.Archive) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return fmt.Errorf("clear archive: %w", err)
	}
	insert := fmt.Sprintf("INSERT INTO %s (issue_url, articles) VALUES ($1, $2)", s.table)
	for _, issue := range archive.Issues() {
		articles := archive[issue]
		if articles == nil {
			articles = []walkthrough.Article{}
		}
		payload, mErr := json.Marshal(articles)
		if mErr != nil {
			err = fmt.Errorf("marshal articles for %s: %w", issue, mErr)
			return err
		}
		if _, err = tx.Exec(ctx, insert, issue, payload); err != nil {
			return fmt.Errorf("insert %s: %w", issue, err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit archive tx: %w", err)
	}
	return nil
}
