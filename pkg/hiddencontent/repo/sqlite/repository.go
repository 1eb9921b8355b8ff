package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// Repository implements hiddencontent.Repository on a single SQLite file.
type Repository struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// foreign_keys is per connection, so it goes in the DSN
	db, err := sql.Open("sqlite", path+"?mode=rwc&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	r := &Repository{db: db, dbPath: path}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := r.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return r, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.dbPath
}

func (r *Repository) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		author_id INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_type ON pages(type);

	CREATE TABLE IF NOT EXISTS page_meta (
		page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		meta_key TEXT NOT NULL,
		meta_value TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		PRIMARY KEY (page_id, meta_key)
	);
	`

	_, err := r.db.ExecContext(context.Background(), schema)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

type scanner interface {
	Scan(dest ...any) error
}

const pageColumns = `id, type, title, body, author_id, status, created_at, updated_at`

func scanPage(row scanner) (*hiddencontent.Page, error) {
	var page hiddencontent.Page
	var pageType, status, createdAt, updatedAt string
	if err := row.Scan(&page.ID, &pageType, &page.Title, &page.Body, &page.AuthorID,
		&status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	page.Type = hiddencontent.PostType(pageType)
	page.Status = hiddencontent.PageStatus(status)
	page.CreatedAt = parseTime(createdAt)
	page.UpdatedAt = parseTime(updatedAt)
	return &page, nil
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *hiddencontent.Page) error {
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now

	var id any
	if page.ID != 0 {
		id = page.ID
	}

	result, err := r.db.ExecContext(ctx, `
	INSERT INTO pages (`+pageColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(page.Type), page.Title, page.Body, page.AuthorID,
		string(page.Status), formatTime(page.CreatedAt), formatTime(page.UpdatedAt))
	if err != nil {
		if isPrimaryKeyConflict(err) {
			return hiddencontent.ErrPageExists
		}
		return fmt.Errorf("failed to insert page: %w", err)
	}

	if page.ID == 0 {
		page.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read page id: %w", err)
		}
	}
	return nil
}

func isPrimaryKeyConflict(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
		return true
	}
	return false
}

func (r *Repository) GetPage(ctx context.Context, id int64) (*hiddencontent.Page, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, hiddencontent.ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return page, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *hiddencontent.Page) error {
	page.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
	UPDATE pages SET type = ?, title = ?, body = ?, author_id = ?, status = ?, updated_at = ?
	WHERE id = ?`,
		string(page.Type), page.Title, page.Body, page.AuthorID,
		string(page.Status), formatTime(page.UpdatedAt), page.ID)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}
	return requireAffected(result)
}

func (r *Repository) DeletePage(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return hiddencontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) ListPages(ctx context.Context, postType hiddencontent.PostType) ([]*hiddencontent.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE 1=1`
	args := make([]interface{}, 0)

	if postType != "" {
		query += " AND type = ?"
		args = append(args, string(postType))
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []*hiddencontent.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// Metadata operations

func (r *Repository) GetPageMeta(ctx context.Context, pageID int64, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT meta_value FROM page_meta WHERE page_id = ? AND meta_key = ?`,
		pageID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get page meta: %w", err)
	}
	return value, true, nil
}

func (r *Repository) SetPageMeta(ctx context.Context, pageID int64, key, value string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages WHERE id = ?`, pageID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check page: %w", err)
	}
	if exists == 0 {
		return hiddencontent.ErrPageNotFound
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO page_meta (page_id, meta_key, meta_value, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(page_id, meta_key) DO UPDATE SET
		meta_value = excluded.meta_value,
		updated_at = excluded.updated_at`,
		pageID, key, value, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to set page meta: %w", err)
	}

	return tx.Commit()
}
