package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/biaslens/internal/domain"
	"github.com/ashureev/biaslens/internal/shared"
	_ "modernc.org/sqlite"
)

// DefaultListLimit bounds ListAnalyses when the caller passes a non-positive limit.
const DefaultListLimit = 50

// SQLiteStore implements AnalysisRepository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed analysis repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// modernc.org/sqlite applies _pragma parameters on every new connection.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS job_analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT,
		job_description TEXT NOT NULL,
		biased_terms TEXT NOT NULL,
		bias_type TEXT NOT NULL,
		bias_explanation TEXT NOT NULL,
		inclusive_alternative TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_job_analyses_conversation ON job_analyses(conversation_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveAnalysis inserts a record and sets its ID to the new row ID.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, record *domain.AnalysisRecord) error {
	terms := record.BiasedTerms
	if terms == nil {
		terms = []string{}
	}
	termsJSON, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("marshal biased terms: %w", err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var conversationID interface{}
	if record.ConversationID != "" {
		conversationID = record.ConversationID
	}

	query := `
	INSERT INTO job_analyses (
		conversation_id, job_description, biased_terms, bias_type,
		bias_explanation, inclusive_alternative, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	var result sql.Result
	err = shared.RetryOnConflict(ctx, 3, 50*time.Millisecond, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, query,
			conversationID, record.JobDescription, string(termsJSON), string(record.BiasType),
			record.BiasExplanation, record.InclusiveAlternative, record.CreatedAt.Unix(),
		)
		return execErr
	})
	if err != nil {
		if shared.IsSQLiteConflictError(err) {
			return fmt.Errorf("insert analysis: %w: %w", ErrConflict, err)
		}
		return fmt.Errorf("insert analysis: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	record.ID = id
	return nil
}

// ListAnalyses returns the most recent records, newest first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]domain.AnalysisRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
		SELECT id, conversation_id, job_description, biased_terms, bias_type,
		       bias_explanation, inclusive_alternative, created_at
		FROM job_analyses ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close analyses rows", "error", closeErr)
		}
	}()

	records := []domain.AnalysisRecord{}
	for rows.Next() {
		var rec domain.AnalysisRecord
		var conversationID sql.NullString
		var termsJSON, biasType string
		var createdAt int64

		if err := rows.Scan(
			&rec.ID, &conversationID, &rec.JobDescription, &termsJSON, &biasType,
			&rec.BiasExplanation, &rec.InclusiveAlternative, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		if err := json.Unmarshal([]byte(termsJSON), &rec.BiasedTerms); err != nil {
			return nil, fmt.Errorf("decode biased terms for analysis %d: %w", rec.ID, err)
		}

		rec.ConversationID = conversationID.String
		rec.BiasType = domain.BiasCategory(biasType)
		rec.CreatedAt = time.Unix(createdAt, 0).UTC()
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}

	return records, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
