package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/listat/internal/model"
)

// FileName is the database file inside the data directory.
const FileName = "listat.db"

// Store provides SQLite-based storage for batch history.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the store in dbDir.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath, now: time.Now}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		period TEXT NOT NULL,
		created_at TEXT NOT NULL,
		source_count INTEGER NOT NULL,
		failed_count INTEGER NOT NULL,
		dates TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_batches_period ON batches(period);
	CREATE INDEX IF NOT EXISTS idx_batches_created ON batches(created_at);

	-- One row per source of a batch, in configuration order
	CREATE TABLE IF NOT EXISTS batch_sources (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id INTEGER NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		source TEXT NOT NULL,
		url TEXT,
		fetched_at TEXT,
		payload_hash TEXT,
		records TEXT NOT NULL,
		dropped_lines INTEGER DEFAULT 0,
		error TEXT,
		UNIQUE(batch_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_sources_hash ON batch_sources(payload_hash);
	`
	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// PayloadHash returns the hex SHA3-256 digest of payload.
func PayloadHash(payload string) string {
	sum := sha3.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// BatchSummary describes a stored batch.
type BatchSummary struct {
	ID          int64
	Period      model.Period
	CreatedAt   time.Time
	SourceCount int
	FailedCount int

	// Dates are the batch's date tokens in ascending order.
	Dates []string
}

// Batch is a stored batch with the series of every source.
type Batch struct {
	BatchSummary

	Sources []StoredSource
}

// StoredSource is one source row of a batch.
type StoredSource struct {
	SourceID     string
	URL          string
	FetchedAt    time.Time
	PayloadHash  string
	DroppedLines int
	Error        string
	Series       model.SourceSeries
}

// Series returns the series of every source in configuration order.
func (b *Batch) Series() []model.SourceSeries {
	series := make([]model.SourceSeries, len(b.Sources))
	for i, src := range b.Sources {
		series[i] = src.Series
	}
	return series
}

// SaveBatch stores reports as one batch and returns its ID. dates are the
// sorted date tokens of the aggregated table.
func (s *Store) SaveBatch(ctx context.Context, period model.Period, dates []string, reports []*model.SourceReport) (id int64, err error) {
	datesJSON, err := json.Marshal(dates)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize dates: %w", err)
	}

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO batches (period, created_at, source_count, failed_count, dates)
	VALUES (?, ?, ?, ?, ?)
	`,
		period.String(),
		s.now().UTC().Format(time.RFC3339Nano),
		len(reports),
		failed,
		string(datesJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save batch: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get batch id: %w", err)
	}

	for i, r := range reports {
		recordsJSON, err := json.Marshal(r.Series.Records)
		if err != nil {
			return 0, fmt.Errorf("failed to serialize records of %s: %w", r.SourceID, err)
		}
		var fetchedAt string
		if !r.FetchedAt.IsZero() {
			fetchedAt = r.FetchedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO batch_sources (batch_id, position, source, url, fetched_at, payload_hash, records, dropped_lines, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id, i, r.SourceID, r.URL, fetchedAt, r.PayloadHash,
			string(recordsJSON), r.DroppedLines, r.ErrorMessage,
		); err != nil {
			return 0, fmt.Errorf("failed to save source %s: %w", r.SourceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return id, nil
}

// ListBatches returns stored batches, newest first. An empty period lists
// every period. limit <= 0 means no limit.
func (s *Store) ListBatches(ctx context.Context, period model.Period, limit int) ([]BatchSummary, error) {
	query := `
	SELECT id, period, created_at, source_count, failed_count, dates
	FROM batches
	WHERE (? = '' OR period = ?)
	ORDER BY id DESC
	`
	args := []any{period.String(), period.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var results []BatchSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, summary)
	}
	return results, rows.Err()
}

// LoadBatch returns the batch with id.
func (s *Store) LoadBatch(ctx context.Context, id int64) (*Batch, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT id, period, created_at, source_count, failed_count, dates
	FROM batches WHERE id = ?
	`, id)
	summary, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrBatchNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return s.loadSources(ctx, summary)
}

// LatestBatch returns the newest batch of period.
func (s *Store) LatestBatch(ctx context.Context, period model.Period) (*Batch, error) {
	summaries, err := s.ListBatches(ctx, period, 1)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: no %s batch", ErrBatchNotFound, period)
	}
	return s.loadSources(ctx, summaries[0])
}

func (s *Store) loadSources(ctx context.Context, summary BatchSummary) (*Batch, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT source, url, fetched_at, payload_hash, records, dropped_lines, error
	FROM batch_sources WHERE batch_id = ? ORDER BY position
	`, summary.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	batch := &Batch{BatchSummary: summary}
	for rows.Next() {
		var (
			src                                StoredSource
			url, fetchedAt, hash, errorMessage sql.NullString
			recordsJSON                        string
		)
		if err := rows.Scan(&src.SourceID, &url, &fetchedAt, &hash, &recordsJSON, &src.DroppedLines, &errorMessage); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		var records []model.Record
		if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
			return nil, fmt.Errorf("failed to parse records of %s: %w", src.SourceID, err)
		}
		src.URL = url.String
		src.FetchedAt = parseTimestamp(fetchedAt.String)
		src.PayloadHash = hash.String
		src.Error = errorMessage.String
		src.Series = model.NewSourceSeries(src.SourceID, records)
		batch.Sources = append(batch.Sources, src)
	}
	return batch, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (BatchSummary, error) {
	var (
		summary   BatchSummary
		period    string
		createdAt string
		datesJSON string
	)
	if err := row.Scan(&summary.ID, &period, &createdAt, &summary.SourceCount, &summary.FailedCount, &datesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return summary, err
		}
		return summary, fmt.Errorf("failed to scan batch: %w", err)
	}
	summary.Period = model.Period(period)
	summary.CreatedAt = parseTimestamp(createdAt)
	if err := json.Unmarshal([]byte(datesJSON), &summary.Dates); err != nil {
		return summary, fmt.Errorf("failed to parse dates: %w", err)
	}
	return summary, nil
}

// timestampFormats contains the timestamp formats the store may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time if no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
