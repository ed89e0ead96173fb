package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fevergolang/internal/model"
)

var (
	// ErrDuplicateJob marks an insert whose print id already exists. The
	// insert is a single statement, so the first record is left untouched.
	ErrDuplicateJob = errors.New("duplicate print id")
	// ErrJobNotFound marks a point lookup for an unknown print id.
	ErrJobNotFound = errors.New("print not found")
)

// DefaultListLimit bounds ListPrints when the caller passes no limit.
const DefaultListLimit = 30

// Store is the append-only audit log of print jobs, backed by sqlite.
type Store struct {
	db *sql.DB
}

// Open connects to the database named by uri and runs migrations. The uri is
// either a bare file path or a dataset-style "sqlite:" form.
func Open(ctx context.Context, uri string) (*Store, error) {
	path := sqlitePath(uri)
	if path == "" {
		return nil, fmt.Errorf("open store: empty database uri")
	}
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func sqlitePath(uri string) string {
	for _, prefix := range []string{"sqlite:///", "sqlite://", "sqlite:"} {
		if rest, ok := strings.CutPrefix(uri, prefix); ok {
			return rest
		}
	}
	return uri
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the connection, the startup self-check before serving.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prints (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            print_id TEXT NOT NULL,
            username TEXT NOT NULL,
            print_type INTEGER NOT NULL,
            artifact_path TEXT NOT NULL,
            tags TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL
        )`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_prints_print_id ON prints(print_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// GeneratePrintID returns a fresh random hex identifier. Uniqueness is not
// pre-checked; the unique index on insert is the enforcement point.
func GeneratePrintID(length int) string {
	if length <= 0 {
		length = 10
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	for len(id) < length {
		id += strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return id[:length]
}

// InsertPrint durably records a job. A print_id collision fails the whole
// insert with ErrDuplicateJob.
func (s *Store) InsertPrint(ctx context.Context, job model.PrintJob) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO prints (print_id, username, print_type, artifact_path, tags, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, job.ID, job.Username, job.Type.Code(), job.ArtifactPath, job.Tags, job.CreatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrDuplicateJob, job.ID)
		}
		return err
	}
	return nil
}

// GetPrint is a point lookup by print id.
func (s *Store) GetPrint(ctx context.Context, printID string) (model.PrintJob, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT print_id, username, print_type, artifact_path, tags, created_at
        FROM prints WHERE print_id = ?
    `, printID)
	job, err := scanPrint(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PrintJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, printID)
	}
	return job, err
}

// ListPrints returns up to limit jobs, most recent first. Order follows the
// insertion-order rowid, not the timestamp, so clock skew cannot reorder it.
func (s *Store) ListPrints(ctx context.Context, limit int) ([]model.PrintJob, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT print_id, username, print_type, artifact_path, tags, created_at
        FROM prints ORDER BY id DESC LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []model.PrintJob{}
	for rows.Next() {
		job, err := scanPrint(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrint(row rowScanner) (model.PrintJob, error) {
	var job model.PrintJob
	var code int
	if err := row.Scan(&job.ID, &job.Username, &code, &job.ArtifactPath, &job.Tags, &job.CreatedAt); err != nil {
		return model.PrintJob{}, err
	}
	job.Type = model.PrintTypeFromCode(code)
	return job, nil
}
