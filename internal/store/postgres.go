package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Dekic648/segmentator/internal/session"
	"github.com/Dekic648/segmentator/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS segmentator_sessions (
	name       TEXT PRIMARY KEY,
	id         TEXT NOT NULL,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// uniqueViolation is the SQLSTATE for a duplicate primary key.
const uniqueViolation = "23505"

// PostgresStore keeps each session as a JSONB document keyed by name.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and ensures the sessions table exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Create(ctx context.Context, s *session.Session) error {
	if err := utils.CheckName(s.Name); err != nil {
		return err
	}
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO segmentator_sessions (name, id, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		s.Name, s.ID, doc, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%q: %w", s.Name, ErrExists)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (p *PostgresStore) Save(ctx context.Context, s *session.Session) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tag, err := p.pool.Exec(ctx,
		`UPDATE segmentator_sessions SET doc = $2, updated_at = $3 WHERE name = $1`,
		s.Name, doc, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%q: %w", s.Name, ErrNotFound)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, name string) (*session.Session, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT doc FROM segmentator_sessions WHERE name = $1`, name).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	return session.Decode(doc)
}

// List decodes each document; the summary needs row and group counts.
func (p *PostgresStore) List(ctx context.Context) ([]session.Summary, error) {
	rows, err := p.pool.Query(ctx, `SELECT doc FROM segmentator_sessions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()
	var out []session.Summary
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s, err := session.Decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, s.Summarize())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

func (p *PostgresStore) Delete(ctx context.Context, name string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM segmentator_sessions WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
