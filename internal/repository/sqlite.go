// Package repository provides persistence for media references, reviewers,
// and the in-memory conversation state.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/anketa/internal/domain"
)

// SQLiteStore keeps media references and reviewers in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS media_refs (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reviewers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Databases created before media edits were timestamped lack the column.
	return s.ensureColumn("media_refs", "updated_at", "ALTER TABLE media_refs ADD COLUMN updated_at DATETIME")
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// LoadMedia returns every stored media reference.
func (s *SQLiteStore) LoadMedia(ctx context.Context) (map[domain.MediaKey]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM media_refs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.MediaKey]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[domain.MediaKey(key)] = value
	}
	return out, rows.Err()
}

// SaveMedia upserts one media reference.
func (s *SQLiteStore) SaveMedia(ctx context.Context, key domain.MediaKey, ref string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO media_refs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(key), ref, time.Now())
	return err
}

// ListReviewers returns reviewers in registration order. The first one is primary.
func (s *SQLiteStore) ListReviewers(ctx context.Context) ([]domain.UserID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM reviewers ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []domain.UserID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, domain.UserID(id))
	}
	return ids, rows.Err()
}

// AddReviewer registers a reviewer.
func (s *SQLiteStore) AddReviewer(ctx context.Context, id domain.UserID) error {
	if id <= 0 {
		return domain.ErrInvalidUserID
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO reviewers (user_id) VALUES (?)`, int64(id))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return domain.ErrReviewerExists
	}
	return err
}

// RemoveReviewer unregisters a reviewer. The primary reviewer cannot be removed.
func (s *SQLiteStore) RemoveReviewer(ctx context.Context, id domain.UserID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var primary int64
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM reviewers ORDER BY id ASC LIMIT 1`).Scan(&primary)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrReviewerNotFound
	}
	if err != nil {
		return err
	}
	if primary == int64(id) {
		return domain.ErrPrimaryReviewer
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM reviewers WHERE user_id = ?`, int64(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrReviewerNotFound
	}
	return tx.Commit()
}

// SeedReviewers registers ids, in order, when no reviewer exists yet.
func (s *SQLiteStore) SeedReviewers(ctx context.Context, ids []domain.UserID) error {
	existing, err := s.ListReviewers(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, id := range ids {
		if err := s.AddReviewer(ctx, id); err != nil && !errors.Is(err, domain.ErrReviewerExists) {
			return fmt.Errorf("failed to seed reviewer %s: %w", id, err)
		}
	}
	return nil
}
