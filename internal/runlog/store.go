package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store persists batch runs and per-file outcomes backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("ledger path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: trimmed}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts a new run row.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            id, started_at, input_path, output_dir, output_format,
            early_model_dir, late_model_dir, timepoint_switch,
            scale_z, scale_y, scale_x
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.InputPath,
		run.OutputDir,
		run.OutputFormat,
		run.EarlyModelDir,
		nullableString(run.LateModelDir),
		run.TimepointSwitch,
		run.ScaleZ,
		run.ScaleY,
		run.ScaleX,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordFile appends a per-file outcome to the run.
func (s *Store) RecordFile(ctx context.Context, rec FileRecord) error {
	if strings.TrimSpace(rec.RunID) == "" {
		return errors.New("run id is required")
	}
	var timeIndex any
	if rec.TimeIndex != nil {
		timeIndex = *rec.TimeIndex
	}
	var objectCount any
	if rec.ObjectCount != nil {
		objectCount = *rec.ObjectCount
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO run_files (
            run_id, input_path, output_path, time_index, model_stage,
            status, error_kind, error_message, object_count, duration_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.InputPath,
		rec.OutputPath,
		timeIndex,
		nullableString(rec.ModelStage),
		string(rec.Status),
		nullableString(rec.ErrorKind),
		nullableString(rec.ErrorMessage),
		objectCount,
		rec.Duration.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}
	return nil
}

// FinishRun stamps the run's completion time and aggregate counts.
func (s *Store) FinishRun(ctx context.Context, runID string, processed, failed, skipped int) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET finished_at = ?, processed = ?, failed = ?, skipped = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		processed,
		failed,
		skipped,
		runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: run %q not found", runID)
	}
	return nil
}

// GetRun fetches a run by identifier. Returns nil when absent.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, started_at, finished_at, input_path, output_dir, output_format,
            early_model_dir, late_model_dir, timepoint_switch,
            scale_z, scale_y, scale_x, processed, failed, skipped
         FROM runs WHERE id = ?`,
		runID,
	)

	var run Run
	var startedAt string
	var finishedAt sql.NullString
	var lateDir sql.NullString
	err := row.Scan(
		&run.ID, &startedAt, &finishedAt, &run.InputPath, &run.OutputDir, &run.OutputFormat,
		&run.EarlyModelDir, &lateDir, &run.TimepointSwitch,
		&run.ScaleZ, &run.ScaleY, &run.ScaleX, &run.Processed, &run.Failed, &run.Skipped,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedAt.Valid {
		parsed, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		run.FinishedAt = &parsed
	}
	if lateDir.Valid {
		run.LateModelDir = lateDir.String
	}
	return &run, nil
}

// WasCompleted reports whether a previous run already produced outputPath
// from inputPath successfully. The resume flag uses this to skip inputs.
func (s *Store) WasCompleted(ctx context.Context, inputPath, outputPath string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM run_files WHERE input_path = ? AND output_path = ? AND status = ?`,
		inputPath,
		outputPath,
		string(StatusCompleted),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query completed files: %w", err)
	}
	return count > 0, nil
}

// FileRecords returns the per-file outcomes for a run in insertion order.
func (s *Store) FileRecords(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, input_path, output_path, time_index, model_stage,
            status, error_kind, error_message, object_count, duration_ms
         FROM run_files WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		var timeIndex sql.NullInt64
		var modelStage, errorKind, errorMessage sql.NullString
		var objectCount sql.NullInt64
		var durationMS int64
		if err := rows.Scan(
			&rec.RunID, &rec.InputPath, &rec.OutputPath, &timeIndex, &modelStage,
			&rec.Status, &errorKind, &errorMessage, &objectCount, &durationMS,
		); err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		if timeIndex.Valid {
			index := int(timeIndex.Int64)
			rec.TimeIndex = &index
		}
		if objectCount.Valid {
			count := int(objectCount.Int64)
			rec.ObjectCount = &count
		}
		rec.ModelStage = modelStage.String
		rec.ErrorKind = errorKind.String
		rec.ErrorMessage = errorMessage.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file records: %w", err)
	}
	return records, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
