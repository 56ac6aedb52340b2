// Package history persists one row per completed scan. It backs the
// back-office scan listing and the periodic digest reports.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/repradar/repradar/internal/models"
	"github.com/sirupsen/logrus"
)

const schema = `
CREATE TABLE IF NOT EXISTS scans (
	id          TEXT PRIMARY KEY,
	brand       TEXT NOT NULL,
	total_found INTEGER NOT NULL,
	risk_score  INTEGER NOT NULL,
	sentiment   TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at);
CREATE INDEX IF NOT EXISTS idx_scans_brand ON scans(brand);
`

// Store is a SQLite-backed scan history.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path. WAL mode and a busy
// timeout keep concurrent request handlers from tripping over each other.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores the summary of a completed scan and returns the persisted
// record with its generated id.
func (s *Store) Record(result *models.ScanResult) (*models.ScanRecord, error) {
	record := &models.ScanRecord{
		ID:         uuid.NewString(),
		Brand:      result.Brand,
		TotalFound: result.TotalFound,
		RiskScore:  result.RiskScore,
		Sentiment:  result.Sentiment,
		CreatedAt:  result.ScannedAt,
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO scans (id, brand, total_found, risk_score, sentiment, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.Brand, record.TotalFound, record.RiskScore,
		string(record.Sentiment), record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording scan for %q: %w", result.Brand, err)
	}

	return record, nil
}

// Recent returns up to limit scans, newest first.
func (s *Store) Recent(limit int) ([]models.ScanRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, brand, total_found, risk_score, sentiment, created_at
		 FROM scans ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent scans: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Since returns all scans recorded at or after t, newest first.
func (s *Store) Since(t time.Time) ([]models.ScanRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, brand, total_found, risk_score, sentiment, created_at
		 FROM scans WHERE created_at >= ? ORDER BY created_at DESC`, t)
	if err != nil {
		return nil, fmt.Errorf("listing scans since %s: %w", t.Format(time.RFC3339), err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Prune deletes scans older than the cutoff and reports how many went.
func (s *Store) Prune(olderThan time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM scans WHERE created_at < ?`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("pruning scan history: %w", err)
	}

	removed, _ := res.RowsAffected()
	if removed > 0 {
		logrus.Infof("Pruned %d scan records older than %s", removed, olderThan.Format(time.RFC3339))
	}
	return removed, nil
}

func scanRows(rows *sql.Rows) ([]models.ScanRecord, error) {
	records := make([]models.ScanRecord, 0)
	for rows.Next() {
		var rec models.ScanRecord
		var sentiment string
		if err := rows.Scan(&rec.ID, &rec.Brand, &rec.TotalFound, &rec.RiskScore,
			&sentiment, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("reading scan row: %w", err)
		}
		rec.Sentiment = models.Sentiment(sentiment)
		records = append(records, rec)
	}
	return records, rows.Err()
}
