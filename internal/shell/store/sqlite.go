package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}
	// An in-memory database lives and dies with its connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Submission Operations
// =============================================================================

// submissionRow represents a submission row in the database.
type submissionRow struct {
	ID           string `db:"id"`
	Application  string `db:"application"`
	Namespace    string `db:"namespace"`
	Deployment   string `db:"deployment"`
	Objects      string `db:"objects"`
	Status       string `db:"status"`
	ErrorMessage string `db:"error_message"`
	CreatedAt    string `db:"created_at"`
}

func (s *SQLiteStore) RecordSubmission(ctx context.Context, sub *Submission) error {
	objects := sub.Objects
	if objects == nil {
		objects = []string{}
	}
	objectsJSON, err := json.Marshal(objects)
	if err != nil {
		return NewStoreError("RecordSubmission", "submission", sub.ID, "failed to serialize objects", ErrInvalidData)
	}

	query := `
		INSERT INTO submissions (
			id, application, namespace, deployment, objects, status, error_message, created_at
		) VALUES (
			:id, :application, :namespace, :deployment, :objects, :status, :error_message, :created_at
		)`

	row := submissionRow{
		ID:           sub.ID,
		Application:  sub.Application,
		Namespace:    sub.Namespace,
		Deployment:   sub.Deployment,
		Objects:      string(objectsJSON),
		Status:       string(sub.Status),
		ErrorMessage: sub.Error,
		CreatedAt:    sub.CreatedAt.UTC().Format(timeLayout),
	}

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return NewStoreError("RecordSubmission", "submission", sub.ID, "submission already exists", ErrDuplicateID)
		}
		return NewStoreError("RecordSubmission", "submission", sub.ID, err.Error(), err)
	}
	return nil
}

func (s *SQLiteStore) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	var row submissionRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM submissions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetSubmission", "submission", id, "submission not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetSubmission", "submission", id, err.Error(), err)
	}
	return rowToSubmission(&row)
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context, opts ListOptions) ([]Submission, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM submissions ORDER BY created_at DESC LIMIT ? OFFSET ?`

	var rows []submissionRow
	if err := s.db.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListSubmissions", "submission", "", err.Error(), err)
	}
	return rowsToSubmissions(rows)
}

func (s *SQLiteStore) ListSubmissionsByApplication(ctx context.Context, application string, opts ListOptions) ([]Submission, error) {
	opts = opts.Normalize()
	query := `SELECT * FROM submissions WHERE application = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`

	var rows []submissionRow
	if err := s.db.SelectContext(ctx, &rows, query, application, opts.Limit, opts.Offset); err != nil {
		return nil, NewStoreError("ListSubmissionsByApplication", "submission", "", err.Error(), err)
	}
	return rowsToSubmissions(rows)
}

func rowsToSubmissions(rows []submissionRow) ([]Submission, error) {
	submissions := make([]Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := rowToSubmission(&row)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *sub)
	}
	return submissions, nil
}

func rowToSubmission(row *submissionRow) (*Submission, error) {
	var objects []string
	if err := json.Unmarshal([]byte(row.Objects), &objects); err != nil {
		return nil, NewStoreError("rowToSubmission", "submission", row.ID, "failed to parse objects", ErrInvalidData)
	}
	createdAt, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToSubmission", "submission", row.ID, "failed to parse created_at", ErrInvalidData)
	}

	return &Submission{
		ID:          row.ID,
		Application: row.Application,
		Namespace:   row.Namespace,
		Deployment:  row.Deployment,
		Objects:     objects,
		Status:      Status(row.Status),
		Error:       row.ErrorMessage,
		CreatedAt:   createdAt,
	}, nil
}
