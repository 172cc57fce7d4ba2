package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/assessment-relay/internal/domain"
	"github.com/ashureev/assessment-relay/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements ResultStore using SQLite.
// Timestamps are stored as unix milliseconds.
type SQLiteStore struct {
	db    *sql.DB
	ttl   time.Duration
	now   func() time.Time
	retry shared.RetryPolicy
}

// NewSQLite opens (or creates) the database at dbPath.
func NewSQLite(dbPath string, ttl time.Duration, opts ...Option) (*SQLiteStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL lets the sweeper delete while requests read.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	o := buildOptions(opts)
	s := &SQLiteStore{db: db, ttl: ttl, now: o.now, retry: o.retry}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS results (
		email TEXT PRIMARY KEY,
		guardian_name TEXT NOT NULL,
		child_name TEXT NOT NULL DEFAULT '',
		child_age TEXT NOT NULL,
		answers_json TEXT,
		score INTEGER NOT NULL,
		tier TEXT NOT NULL,
		tier_label TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_results_created ON results(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Put replaces every column of the row for r.Email.
func (s *SQLiteStore) Put(ctx context.Context, r *domain.StoredResult) error {
	rec, err := prepare(r, s.now())
	if err != nil {
		return err
	}

	var answers interface{}
	if rec.Answers != nil {
		b, err := json.Marshal(rec.Answers)
		if err != nil {
			return fmt.Errorf("encode answers: %w", err)
		}
		answers = string(b)
	}

	query := `
	INSERT INTO results (email, guardian_name, child_name, child_age, answers_json,
		score, tier, tier_label, message, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(email) DO UPDATE SET
		guardian_name = excluded.guardian_name,
		child_name = excluded.child_name,
		child_age = excluded.child_age,
		answers_json = excluded.answers_json,
		score = excluded.score,
		tier = excluded.tier,
		tier_label = excluded.tier_label,
		message = excluded.message,
		created_at = excluded.created_at`

	err = shared.RetryOnConflict(ctx, s.retry, "upsert result", func() error {
		_, err := s.db.ExecContext(ctx, query,
			rec.Email, rec.GuardianName, rec.ChildName, rec.ChildAge, answers,
			rec.Score, string(rec.Tier), rec.TierLabel, rec.Message, rec.CreatedAt.UnixMilli(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert result: %w", err)
	}
	return nil
}

// Get returns the row for email if it was written less than TTL ago.
func (s *SQLiteStore) Get(ctx context.Context, email string) (*domain.StoredResult, error) {
	threshold := s.now().Add(-s.ttl).UnixMilli()
	query := `
		SELECT email, guardian_name, child_name, child_age, answers_json,
		       score, tier, tier_label, message, created_at
		FROM results WHERE email = ? AND created_at > ?`

	row := s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email), threshold)

	var rec domain.StoredResult
	var answers sql.NullString
	var tier string
	var createdAt int64

	err := row.Scan(
		&rec.Email, &rec.GuardianName, &rec.ChildName, &rec.ChildAge, &answers,
		&rec.Score, &tier, &rec.TierLabel, &rec.Message, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan result row: %w", err)
	}

	if answers.Valid {
		if err := json.Unmarshal([]byte(answers.String), &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers: %w", err)
		}
	}
	rec.Tier = domain.Tier(tier)
	rec.CreatedAt = time.UnixMilli(createdAt)
	return &rec, nil
}

// Sweep deletes expired rows in a single statement.
func (s *SQLiteStore) Sweep(ctx context.Context) (int64, error) {
	threshold := s.now().Add(-s.ttl).UnixMilli()

	var deleted int64
	err := shared.RetryOnConflict(ctx, s.retry, "sweep results", func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE created_at <= ?`, threshold)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("sweep expired results: %w", err)
	}
	if deleted > 0 {
		slog.Debug("Swept expired results", "backend", BackendSQLite, "count", deleted)
	}
	return deleted, nil
}

// TTL returns the expiry window.
func (s *SQLiteStore) TTL() time.Duration { return s.ttl }

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
