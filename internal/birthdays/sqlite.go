// Package birthdays stores registered birthdays and greets people on the day
package birthdays

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/codegangsta/chartbot/internal/dates"
	"github.com/codegangsta/chartbot/internal/types"
)

// SQLiteStore keeps one birthday per handle
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (or creates) the birthday database at dbPath
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS birthdays (
		handle TEXT PRIMARY KEY,
		birthday TEXT NOT NULL,
		month INTEGER NOT NULL,
		day INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_birthdays_month_day ON birthdays(month, day);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put registers a birthday, replacing any earlier one for the same handle
func (s *SQLiteStore) Put(ctx context.Context, rec types.BirthdayRecord) error {
	if rec.Handle == "" {
		return fmt.Errorf("birthday without a handle")
	}
	now := s.now().Unix()
	query := `
		INSERT INTO birthdays (handle, birthday, month, day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			birthday = excluded.birthday,
			month = excluded.month,
			day = excluded.day,
			updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		rec.Handle, rec.Date.String(), int(rec.Date.Month), rec.Date.Day, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert birthday: %w", err)
	}
	return nil
}

// BornOn returns everyone born on the given month and day, in any year
func (s *SQLiteStore) BornOn(ctx context.Context, month time.Month, day int) ([]types.BirthdayRecord, error) {
	return s.query(ctx, `SELECT handle, birthday FROM birthdays WHERE month = ? AND day = ? ORDER BY handle`, int(month), day)
}

// List returns every stored birthday ordered by handle
func (s *SQLiteStore) List(ctx context.Context) ([]types.BirthdayRecord, error) {
	return s.query(ctx, `SELECT handle, birthday FROM birthdays ORDER BY handle`)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]types.BirthdayRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query birthdays: %w", err)
	}
	defer rows.Close()

	var records []types.BirthdayRecord
	for rows.Next() {
		var handle, birthday string
		if err := rows.Scan(&handle, &birthday); err != nil {
			return nil, fmt.Errorf("scan birthday row: %w", err)
		}
		d, err := dates.Parse(birthday)
		if err != nil {
			return nil, fmt.Errorf("stored birthday for %s: %w", handle, err)
		}
		records = append(records, types.BirthdayRecord{Handle: handle, Date: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate birthdays: %w", err)
	}
	return records, nil
}
