// Package store provides SQLite-backed persistence for monitoring records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/msmahdinejad/smart-monitoring-system/internal/models"
)

// Store is an append-only record sink with ring-buffer retention: once the
// configured maximum is exceeded, the oldest records are deleted.
type Store struct {
	db         *sql.DB
	maxRecords int
}

// New opens (or creates) the database and runs migrations. maxRecords <= 0
// disables retention cleanup.
func New(dbPath string, maxRecords int) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	// WAL mode for concurrent readers alongside the single writer
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db, maxRecords: maxRecords}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Int("max_records", maxRecords).Msg("Record store initialized")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		session_id TEXT NOT NULL,
		baseline_path TEXT NOT NULL,
		current_path TEXT NOT NULL,
		video_path TEXT,
		monitoring_type TEXT NOT NULL,
		prompt_style TEXT NOT NULL,
		custom_context TEXT,
		prompt_used TEXT NOT NULL,
		ai_response TEXT NOT NULL,
		status TEXT NOT NULL,
		confidence REAL DEFAULT 0.0,
		threat_level INTEGER DEFAULT 0,
		summary TEXT,
		keywords TEXT,
		has_video BOOLEAN DEFAULT FALSE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_timestamp ON records(timestamp);
	CREATE INDEX IF NOT EXISTS idx_records_session_id ON records(session_id);
	CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
	CREATE INDEX IF NOT EXISTS idx_records_threat_level ON records(threat_level);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save appends one record. HasVideo is derived at save time: true iff the
// video path is set and the artifact exists. Retention runs after append.
func (s *Store) Save(ctx context.Context, rec *models.Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	rec.HasVideo = false
	if rec.VideoPath != "" {
		if _, err := os.Stat(rec.VideoPath); err == nil {
			rec.HasVideo = true
		}
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO records (
			timestamp, session_id, baseline_path, current_path, video_path,
			monitoring_type, prompt_style, custom_context, prompt_used,
			ai_response, status, confidence, threat_level, summary, keywords, has_video
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format("2006-01-02 15:04:05.000"), rec.SessionID,
		rec.BaselinePath, rec.CurrentPath, nullable(rec.VideoPath),
		rec.MonitoringType, rec.PromptStyle, rec.CustomContext, rec.PromptUsed,
		rec.AIResponse, rec.Status, rec.Confidence, rec.ThreatLevel,
		rec.Summary, rec.Keywords, rec.HasVideo,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}

	if s.maxRecords > 0 {
		if err := s.cleanup(ctx); err != nil {
			log.Warn().Err(err).Msg("Record retention cleanup failed")
		}
	}
	return nil
}

// List returns the most recent limit records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, session_id, baseline_path, current_path,
		       COALESCE(video_path, ''), monitoring_type, prompt_style,
		       COALESCE(custom_context, ''), prompt_used, ai_response, status,
		       confidence, threat_level, COALESCE(summary, ''),
		       COALESCE(keywords, ''), has_video, created_at
		FROM records
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var rec models.Record
		var ts string
		if err := rows.Scan(
			&rec.ID, &ts, &rec.SessionID, &rec.BaselinePath, &rec.CurrentPath,
			&rec.VideoPath, &rec.MonitoringType, &rec.PromptStyle,
			&rec.CustomContext, &rec.PromptUsed, &rec.AIResponse, &rec.Status,
			&rec.Confidence, &rec.ThreatLevel, &rec.Summary,
			&rec.Keywords, &rec.HasVideo, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if parsed, err := time.Parse("2006-01-02 15:04:05.000", ts); err == nil {
			rec.Timestamp = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Count returns the total number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// cleanup deletes the oldest records beyond the retention ceiling.
func (s *Store) cleanup(ctx context.Context) error {
	total, err := s.Count(ctx)
	if err != nil {
		return err
	}
	if total <= s.maxRecords {
		return nil
	}

	excess := total - s.maxRecords
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM records
		WHERE id IN (
			SELECT id FROM records
			ORDER BY timestamp ASC
			LIMIT ?
		)`, excess)
	if err != nil {
		return err
	}

	log.Info().Int("deleted", excess).Msg("Cleaned up old records")
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
