package sentimentapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"StockLens/internal/sentiment"
)

// SQLiteStore persists analyses in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets lookups proceed while an upsert is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			symbol        TEXT PRIMARY KEY,
			emotion       TEXT NOT NULL,
			conclusion    TEXT NOT NULL,
			positive_news TEXT NOT NULL DEFAULT '[]',
			negative_news TEXT NOT NULL DEFAULT '[]',
			updated_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_updated ON analyses(updated_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Seed inserts entries whose symbol is not stored yet; existing rows are left untouched.
func (s *SQLiteStore) Seed(ctx context.Context, entries map[string]sentiment.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for symbol, a := range entries {
		pos, neg, err := encodeNews(a)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO analyses
			(symbol, emotion, conclusion, positive_news, negative_news, updated_at)
			VALUES (?,?,?,?,?,?)`,
			symbol, a.Emotion, a.Conclusion, pos, neg, now,
		); err != nil {
			return fmt.Errorf("seed %s: %w", symbol, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Upsert(ctx context.Context, symbol string, a sentiment.Analysis) error {
	pos, neg, err := encodeNews(a)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO analyses
		(symbol, emotion, conclusion, positive_news, negative_news, updated_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(symbol) DO UPDATE SET
			emotion = excluded.emotion,
			conclusion = excluded.conclusion,
			positive_news = excluded.positive_news,
			negative_news = excluded.negative_news,
			updated_at = excluded.updated_at`,
		symbol, a.Emotion, a.Conclusion, pos, neg, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", symbol, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, symbol string) (sentiment.Analysis, bool, error) {
	var (
		a        sentiment.Analysis
		pos, neg string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT emotion, conclusion, positive_news, negative_news FROM analyses WHERE symbol = ?`,
		symbol,
	).Scan(&a.Emotion, &a.Conclusion, &pos, &neg)
	if errors.Is(err, sql.ErrNoRows) {
		return sentiment.Analysis{}, false, nil
	}
	if err != nil {
		return sentiment.Analysis{}, false, fmt.Errorf("query %s: %w", symbol, err)
	}
	if err := json.Unmarshal([]byte(pos), &a.PositiveNews); err != nil {
		return sentiment.Analysis{}, false, fmt.Errorf("decode positive_news for %s: %w", symbol, err)
	}
	if err := json.Unmarshal([]byte(neg), &a.NegativeNews); err != nil {
		return sentiment.Analysis{}, false, fmt.Errorf("decode negative_news for %s: %w", symbol, err)
	}
	return a, true, nil
}

func (s *SQLiteStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM analyses ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		out = append(out, symbol)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func encodeNews(a sentiment.Analysis) (pos, neg string, err error) {
	p, err := json.Marshal(orEmpty(a.PositiveNews))
	if err != nil {
		return "", "", fmt.Errorf("encode positive_news: %w", err)
	}
	n, err := json.Marshal(orEmpty(a.NegativeNews))
	if err != nil {
		return "", "", fmt.Errorf("encode negative_news: %w", err)
	}
	return string(p), string(n), nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
