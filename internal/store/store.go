// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m4dpr0f/cjsr-sub002/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for race history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS races (
			id INTEGER PRIMARY KEY,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			tier TEXT NOT NULL,
			prompt_chars INTEGER NOT NULL,
			entrants INTEGER NOT NULL,
			position INTEGER NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			errors INTEGER NOT NULL,
			reward INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_races_ended_at ON races(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_races_mode ON races(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRace stores one finished race.
func (s *Store) InsertRace(ctx context.Context, result model.RaceResult) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO races (ended_at, mode, tier, prompt_chars, entrants, position, wpm, accuracy, errors, reward, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.EndedAt.Format(time.RFC3339Nano),
		result.Mode,
		result.Tier,
		result.PromptChars,
		result.Entrants,
		result.Position,
		result.WPM,
		result.Accuracy,
		result.Errors,
		result.Reward,
		result.DurationMs,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRaces returns race aggregates filtered and ordered oldest first.
func (s *Store) ListRaces(ctx context.Context, filter model.Filter) ([]model.RaceAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, filter.Mode)
	}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, mode, position, wpm, accuracy, reward, duration_ms
		FROM races
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var races []model.RaceAggregate
	for rows.Next() {
		var agg model.RaceAggregate
		var endedAt string
		if err := rows.Scan(&agg.RaceID, &endedAt, &agg.Mode, &agg.Position, &agg.WPM, &agg.Accuracy, &agg.Reward, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		races = append(races, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(races) > filter.Last {
		races = races[len(races)-filter.Last:]
	}
	return races, nil
}

// TotalExperience sums the reward column over all stored races.
func (s *Store) TotalExperience(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT SUM(reward) FROM races`).Scan(&total)
	if err != nil {
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Int64, nil
}
