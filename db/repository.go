// Package db provides database utilities including repository methods for CRUD operations.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ProjectState represents a record in the project_states table.
// One row per project, holding the latest generation result and evaluation
// reports as JSON documents. Writes are last-write-wins upserts.
type ProjectState struct {
	ProjectID        string    // Project identifier (primary key)
	GenerationResult string    // JSON-encoded latest GenerationResult incl. provenance
	QualityReport    string    // JSON-encoded perceived-quality report
	PhysicalReport   string    // JSON-encoded manufacturability report
	UpdatedAt        time.Time // Timestamp of the last upsert
}

// GenerationRecord represents a record in the generation_history table.
// This is the append-only audit trail of every served generation request.
type GenerationRecord struct {
	ID             int64     // Auto-incremented primary key
	CorrelationID  string    // Unique identifier for tracing one request
	ProjectID      string    // Owning project, empty for ad-hoc requests
	Method         string    // Generation method (text-to-image, sketch-guided, image-to-image)
	Source         string    // Serving source (huggingface*, local-fallback)
	Model          string    // Model that served the request
	UsedFallback   bool      // Whether any fallback was involved
	FallbackReason string    // Human-readable fallback explanation
	ModelAttempts  []string  // Models attempted, in order
	ImageCount     int       // Number of images delivered
	DurationMS     int       // End-to-end duration in milliseconds
	CreatedAt      time.Time // Timestamp when record was created
}

// ErrorLogEntry represents a record in the error_log table.
// This captures backend failures surfaced during generation.
type ErrorLogEntry struct {
	ID            int64     // Auto-incremented primary key
	CorrelationID string    // Optional correlation ID linking to a generation record
	ErrorType     string    // Category of error (e.g., "backend_error", "credentials_error")
	Model         string    // Model involved, if any
	Message       string    // Error description
	CreatedAt     time.Time // Timestamp when error was logged
}

// Repository provides CRUD operations for the database tables.
// It wraps a Database instance and provides type-safe methods
// for inserting and querying records.
//
// The Repository is designed to work with both synchronous and
// asynchronous writes via the AsyncWriter: state upserts are always
// synchronous (the caller needs the durability guarantee), history and
// error-log appends go through the async writer when one is running.
type Repository struct {
	db          *Database
	asyncWriter *AsyncWriter
}

// NewRepository creates a new Repository instance.
// The asyncWriter parameter is optional; if nil, all writes will be synchronous.
func NewRepository(db *Database, asyncWriter *AsyncWriter) *Repository {
	return &Repository{
		db:          db,
		asyncWriter: asyncWriter,
	}
}

// UpsertProjectState writes the latest state for one project with
// last-write-wins semantics. Always synchronous.
func (r *Repository) UpsertProjectState(ctx context.Context, state ProjectState) error {
	if r.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if state.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}

	query := `
		INSERT INTO project_states (
			project_id, generation_result, quality_report, physical_report, updated_at
		) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(project_id) DO UPDATE SET
			generation_result = excluded.generation_result,
			quality_report    = excluded.quality_report,
			physical_report   = excluded.physical_report,
			updated_at        = CURRENT_TIMESTAMP`

	_, err := r.db.Exec(query,
		state.ProjectID,
		nullString(state.GenerationResult),
		nullString(state.QualityReport),
		nullString(state.PhysicalReport),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert project state: %w", err)
	}

	return nil
}

// GetProjectState retrieves the latest state for one project.
// Returns (nil, nil) when the project has no stored state.
func (r *Repository) GetProjectState(ctx context.Context, projectID string) (*ProjectState, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	query := `
		SELECT project_id, COALESCE(generation_result, ''),
			   COALESCE(quality_report, ''), COALESCE(physical_report, ''),
			   updated_at
		FROM project_states
		WHERE project_id = ?`

	var state ProjectState
	var updatedAt string
	err := r.db.QueryRow(query, projectID).Scan(
		&state.ProjectID,
		&state.GenerationResult,
		&state.QualityReport,
		&state.PhysicalReport,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project state: %w", err)
	}

	// Parse SQLite datetime
	state.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updatedAt)
	return &state, nil
}

// InsertGenerationHistory appends one generation record.
// If an asyncWriter is configured, the write is queued asynchronously.
// Returns the inserted record ID (0 for async writes).
func (r *Repository) InsertGenerationHistory(ctx context.Context, record GenerationRecord) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	attempts, err := json.Marshal(record.ModelAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to encode model attempts: %w", err)
	}

	query := `
		INSERT INTO generation_history (
			correlation_id, project_id, method, source, model,
			used_fallback, fallback_reason, model_attempts,
			image_count, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	args := []interface{}{
		record.CorrelationID,
		nullString(record.ProjectID),
		record.Method,
		record.Source,
		record.Model,
		record.UsedFallback,
		nullString(record.FallbackReason),
		string(attempts),
		record.ImageCount,
		record.DurationMS,
	}

	// Use async writer if available
	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		op := asyncInsertOp{
			query: query,
			args:  args,
		}
		if r.asyncWriter.Write(op) {
			return 0, nil // Async write queued successfully
		}
		// Fall through to sync write if channel is full
	}

	// Synchronous write
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generation history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// generationHistoryColumns is the shared SELECT list for generation records.
const generationHistoryColumns = `
	SELECT id, correlation_id, COALESCE(project_id, ''), method, source, model,
		   used_fallback, COALESCE(fallback_reason, ''), COALESCE(model_attempts, '[]'),
		   image_count, duration_ms, created_at
	FROM generation_history`

// QueryRecentHistory retrieves the most recent generation records.
// Results are ordered by created_at DESC.
func (r *Repository) QueryRecentHistory(ctx context.Context, limit int) ([]GenerationRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 10 // Default limit
	}

	query := generationHistoryColumns + `
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	return scanGenerationRecords(rows)
}

// QueryHistoryByProject retrieves generation records for one project.
func (r *Repository) QueryHistoryByProject(ctx context.Context, projectID string, limit int) ([]GenerationRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 10
	}

	query := generationHistoryColumns + `
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.Query(query, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation history: %w", err)
	}
	defer rows.Close()

	return scanGenerationRecords(rows)
}

// scanGenerationRecords materializes rows from the shared SELECT list.
func scanGenerationRecords(rows *sql.Rows) ([]GenerationRecord, error) {
	var records []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var attempts string
		var createdAt string

		err := rows.Scan(
			&rec.ID,
			&rec.CorrelationID,
			&rec.ProjectID,
			&rec.Method,
			&rec.Source,
			&rec.Model,
			&rec.UsedFallback,
			&rec.FallbackReason,
			&attempts,
			&rec.ImageCount,
			&rec.DurationMS,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation history row: %w", err)
		}

		if err := json.Unmarshal([]byte(attempts), &rec.ModelAttempts); err != nil {
			return nil, fmt.Errorf("failed to decode model attempts: %w", err)
		}

		// Parse SQLite datetime
		rec.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation history rows: %w", err)
	}

	return records, nil
}

// InsertErrorLog appends one error log entry.
// If an asyncWriter is configured, the write is queued asynchronously.
// Returns the inserted record ID (0 for async writes).
func (r *Repository) InsertErrorLog(ctx context.Context, entry ErrorLogEntry) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	query := `
		INSERT INTO error_log (
			correlation_id, error_type, model, message
		) VALUES (?, ?, ?, ?)`

	args := []interface{}{
		nullString(entry.CorrelationID),
		entry.ErrorType,
		nullString(entry.Model),
		entry.Message,
	}

	// Use async writer if available
	if r.asyncWriter != nil && r.asyncWriter.IsStarted() {
		op := asyncInsertOp{
			query: query,
			args:  args,
		}
		if r.asyncWriter.Write(op) {
			return 0, nil // Async write queued successfully
		}
		// Fall through to sync write if channel is full
	}

	// Synchronous write
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert error log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return id, nil
}

// QueryRecentErrorLogs retrieves the most recent error log entries.
// Results are ordered by created_at DESC.
func (r *Repository) QueryRecentErrorLogs(ctx context.Context, limit int) ([]ErrorLogEntry, error) {
	if r.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	if limit <= 0 {
		limit = 10 // Default limit
	}

	query := `
		SELECT id, COALESCE(correlation_id, ''), error_type, COALESCE(model, ''),
			   message, created_at
		FROM error_log
		ORDER BY created_at DESC, id DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query error logs: %w", err)
	}
	defer rows.Close()

	var entries []ErrorLogEntry
	for rows.Next() {
		var entry ErrorLogEntry
		var createdAt string

		err := rows.Scan(
			&entry.ID,
			&entry.CorrelationID,
			&entry.ErrorType,
			&entry.Model,
			&entry.Message,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan error log row: %w", err)
		}

		entry.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating error log rows: %w", err)
	}

	return entries, nil
}

// asyncInsertOp is an internal type for async insert operations.
type asyncInsertOp struct {
	query string
	args  []interface{}
}

// CreateAsyncWriteHandler creates a WriteHandler for the Repository.
// This handler processes asyncInsertOp operations.
func (r *Repository) CreateAsyncWriteHandler() WriteHandler {
	return func(op WriteOperation) error {
		insertOp, ok := op.Data.(asyncInsertOp)
		if !ok {
			return fmt.Errorf("invalid operation type: expected asyncInsertOp")
		}

		_, err := r.db.Exec(insertOp.query, insertOp.args...)
		return err
	}
}

// nullString converts an empty string to sql.NullString for NULL storage.
func nullString(s string) interface{} {
	if s == "" {
		return sql.NullString{String: "", Valid: false}
	}
	return s
}

// CountGenerationHistory returns the total count of generation records.
func (r *Repository) CountGenerationHistory(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM generation_history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generation history: %w", err)
	}

	return count, nil
}

// CountErrorLogs returns the total count of error log entries.
func (r *Repository) CountErrorLogs(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("database connection is nil")
	}

	var count int64
	err := r.db.QueryRow("SELECT COUNT(*) FROM error_log").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count error logs: %w", err)
	}

	return count, nil
}
