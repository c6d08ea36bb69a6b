// Package storage provides a SQLite-backed persister for the pairing
// history. Records, their per-screen assignments and the affinity table
// live in separate tables so they can be inspected with plain SQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/runger/frostwall/internal/pairing/history"
)

const (
	// walCheckpointInterval is how often the WAL file is checkpointed
	// while the store is open.
	walCheckpointInterval = 5 * time.Minute
)

// SQLiteStore persists pairing history in SQLite. It implements
// history.Persister.
type SQLiteStore struct {
	db        *sql.DB
	logger    *slog.Logger
	stopCh    chan struct{} // signals background goroutines to stop
	stoppedCh chan struct{} // signals background goroutines have stopped
	closeOnce sync.Once
	closeErr  error
}

var _ history.Persister = (*SQLiteStore)(nil)

// DefaultDBPath returns the default database path under the user cache
// directory.
func DefaultDBPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get cache directory: %w", err)
	}
	return filepath.Join(dir, "frostwall", "pairing_history.db"), nil
}

// NewSQLiteStore opens (creating if needed) the database at dbPath. An
// empty path uses DefaultDBPath. The database is opened in WAL mode.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{
		db:        db,
		logger:    slog.Default(),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}

	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	go store.walCheckpointLoop()

	return store, nil
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			<-s.stoppedCh
		}
		if s.db != nil {
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}

// DB returns the underlying connection.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Load implements history.Persister. A database that has never been saved
// to reports history.ErrNotFound.
func (s *SQLiteStore) Load(ctx context.Context) (*history.Document, error) {
	var savedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT saved_at_unix_ms FROM history_meta WHERE id = 1`).Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, history.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history metadata: %w", err)
	}

	doc := &history.Document{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, event_id, ts_unix, duration_secs, manual
		FROM pairing_records
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairing records: %w", err)
	}
	bySeq := make(map[int64]int)
	for rows.Next() {
		var (
			seq      int64
			ev       history.PairingEvent
			duration sql.NullInt64
			manual   int
		)
		if err := rows.Scan(&seq, &ev.ID, &ev.Timestamp, &duration, &manual); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: pairing record: %v", history.ErrCorrupt, err)
		}
		if duration.Valid {
			d := duration.Int64
			ev.Duration = &d
		}
		ev.Manual = manual != 0
		ev.Wallpapers = make(map[string]string)
		bySeq[seq] = len(doc.Records)
		doc.Records = append(doc.Records, ev)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate pairing records: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT record_seq, screen, path FROM pairing_assignments`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairing assignments: %w", err)
	}
	for rows.Next() {
		var (
			seq          int64
			screen, path string
		)
		if err := rows.Scan(&seq, &screen, &path); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: pairing assignment: %v", history.ErrCorrupt, err)
		}
		if i, ok := bySeq[seq]; ok {
			doc.Records[i].Wallpapers[screen] = path
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate pairing assignments: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT wallpaper_a, wallpaper_b, score, pair_count, avg_duration_secs
		FROM affinity_scores
		ORDER BY wallpaper_a, wallpaper_b
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query affinity scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a history.AffinityScore
		if err := rows.Scan(&a.WallpaperA, &a.WallpaperB, &a.Score, &a.PairCount, &a.AvgDurationSecs); err != nil {
			return nil, fmt.Errorf("%w: affinity score: %v", history.ErrCorrupt, err)
		}
		doc.AffinityScores = append(doc.AffinityScores, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate affinity scores: %w", err)
	}

	return doc, nil
}

// Save implements history.Persister. The document replaces the stored one
// in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, doc *history.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range []string{
		`DELETE FROM pairing_assignments`,
		`DELETE FROM pairing_records`,
		`DELETE FROM affinity_scores`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear pairing history: %w", err)
		}
	}

	recordStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pairing_records (event_id, ts_unix, duration_secs, manual)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer recordStmt.Close()

	assignStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pairing_assignments (record_seq, screen, path)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare assignment insert: %w", err)
	}
	defer assignStmt.Close()

	for i := range doc.Records {
		ev := &doc.Records[i]
		var duration any
		if ev.Duration != nil {
			duration = *ev.Duration
		}
		res, err := recordStmt.ExecContext(ctx, ev.ID, ev.Timestamp, duration, boolToInt(ev.Manual))
		if err != nil {
			return fmt.Errorf("failed to insert pairing record: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read record id: %w", err)
		}
		for screen, path := range ev.Wallpapers {
			if _, err := assignStmt.ExecContext(ctx, seq, screen, path); err != nil {
				return fmt.Errorf("failed to insert pairing assignment: %w", err)
			}
		}
	}

	affinityStmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO affinity_scores
			(wallpaper_a, wallpaper_b, score, pair_count, avg_duration_secs)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare affinity insert: %w", err)
	}
	defer affinityStmt.Close()

	for _, a := range doc.AffinityScores {
		if _, err := affinityStmt.ExecContext(ctx, a.WallpaperA, a.WallpaperB, a.Score, a.PairCount, a.AvgDurationSecs); err != nil {
			return fmt.Errorf("failed to insert affinity score: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO history_meta (id, saved_at_unix_ms) VALUES (1, ?)
	`, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to record save time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pairing history: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// walCheckpointLoop periodically checkpoints the WAL file to keep it from
// growing while a long-lived preview session holds the store open.
func (s *SQLiteStore) walCheckpointLoop() {
	defer close(s.stoppedCh)

	ticker := time.NewTicker(walCheckpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
				s.logger.Warn("WAL checkpoint failed", "error", err)
			}
		}
	}
}

// migrate brings the schema up to date.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	currentVersion := 0
	row := s.db.QueryRowContext(ctx, `
		SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1
	`)
	if err := row.Scan(&currentVersion); err != nil {
		if errors.Is(err, sql.ErrNoRows) || isTableNotFoundError(err) {
			currentVersion = 0
		} else {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
		{version: 2, sql: migrationV2},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d failed: %w", m.version, err)
		}

		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms)
			VALUES (?, ?)
		`, m.version, time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// isTableNotFoundError checks if the error indicates a missing table.
func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "no such table") || strings.Contains(msg, "does not exist")
}

// migrationV1 creates the pairing schema.
const migrationV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS pairing_records (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  event_id TEXT NOT NULL DEFAULT '',
  ts_unix INTEGER NOT NULL,
  duration_secs INTEGER,
  manual INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS pairing_assignments (
  record_seq INTEGER NOT NULL REFERENCES pairing_records(seq) ON DELETE CASCADE,
  screen TEXT NOT NULL,
  path TEXT NOT NULL,
  PRIMARY KEY (record_seq, screen)
);

CREATE TABLE IF NOT EXISTS affinity_scores (
  wallpaper_a TEXT NOT NULL,
  wallpaper_b TEXT NOT NULL,
  score REAL NOT NULL,
  pair_count INTEGER NOT NULL,
  avg_duration_secs REAL NOT NULL,
  PRIMARY KEY (wallpaper_a, wallpaper_b)
);
`

// migrationV2 adds save tracking and lookup indexes.
const migrationV2 = `
CREATE TABLE IF NOT EXISTS history_meta (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  saved_at_unix_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pairing_records_ts ON pairing_records(ts_unix DESC);
CREATE INDEX IF NOT EXISTS idx_pairing_assignments_path ON pairing_assignments(path);
CREATE INDEX IF NOT EXISTS idx_affinity_scores_b ON affinity_scores(wallpaper_b);
`
