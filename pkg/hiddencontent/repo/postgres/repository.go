package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/hidden-content/pkg/hiddencontent"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements hiddencontent.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the tables if they do not exist. When schema is set it is
// created first; the connection's search_path must already point at it.
func (r *Repository) Migrate(ctx context.Context, schema string) error {
	if schema != "" {
		if _, err := r.db.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return r.handlePostgresError("create schema", err)
		}
	}
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return hiddencontent.ErrPageNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return hiddencontent.ErrPageExists
		case "23503": // foreign_key_violation
			return hiddencontent.ErrPageNotFound
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const pageColumns = `id, type, title, body, author_id, status, created_at, updated_at`

func scanPage(row pgx.Row) (*hiddencontent.Page, error) {
	var page hiddencontent.Page
	var pageType, status string
	if err := row.Scan(&page.ID, &pageType, &page.Title, &page.Body, &page.AuthorID,
		&status, &page.CreatedAt, &page.UpdatedAt); err != nil {
		return nil, err
	}
	page.Type = hiddencontent.PostType(pageType)
	page.Status = hiddencontent.PageStatus(status)
	return &page, nil
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *hiddencontent.Page) error {
	now := time.Now().UTC()
	if page.CreatedAt.IsZero() {
		page.CreatedAt = now
	}
	page.UpdatedAt = now

	if page.ID != 0 {
		query := `
			INSERT INTO pages (` + pageColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		_, err := r.db.Exec(ctx, query,
			page.ID, string(page.Type), page.Title, page.Body, page.AuthorID,
			string(page.Status), page.CreatedAt, page.UpdatedAt)
		if err != nil {
			return r.handlePostgresError("create page", err)
		}
		return nil
	}

	query := `
		INSERT INTO pages (type, title, body, author_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.db.QueryRow(ctx, query,
		string(page.Type), page.Title, page.Body, page.AuthorID,
		string(page.Status), page.CreatedAt, page.UpdatedAt).Scan(&page.ID)
	if err != nil {
		return r.handlePostgresError("create page", err)
	}
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id int64) (*hiddencontent.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	page, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.handlePostgresError("get page", err)
	}
	return page, nil
}

func (r *Repository) UpdatePage(ctx context.Context, page *hiddencontent.Page) error {
	page.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE pages SET
			type = $2, title = $3, body = $4, author_id = $5, status = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		page.ID, string(page.Type), page.Title, page.Body, page.AuthorID,
		string(page.Status), page.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update page", err)
	}
	if tag.RowsAffected() == 0 {
		return hiddencontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) DeletePage(ctx context.Context, id int64) error {
	// page_meta rows go with ON DELETE CASCADE
	tag, err := r.db.Exec(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete page", err)
	}
	if tag.RowsAffected() == 0 {
		return hiddencontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) ListPages(ctx context.Context, postType hiddencontent.PostType) ([]*hiddencontent.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE ($1 = '' OR type = $1) ORDER BY id`

	rows, err := r.db.Query(ctx, query, string(postType))
	if err != nil {
		return nil, r.handlePostgresError("list pages", err)
	}
	defer rows.Close()

	var pages []*hiddencontent.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// Metadata operations

func (r *Repository) GetPageMeta(ctx context.Context, pageID int64, key string) (string, bool, error) {
	query := `SELECT meta_value FROM page_meta WHERE page_id = $1 AND meta_key = $2`

	var value string
	err := r.db.QueryRow(ctx, query, pageID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, r.handlePostgresError("get page meta", err)
	}
	return value, true, nil
}

func (r *Repository) SetPageMeta(ctx context.Context, pageID int64, key, value string) error {
	query := `
		INSERT INTO page_meta (page_id, meta_key, meta_value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (page_id, meta_key) DO UPDATE SET
			meta_value = EXCLUDED.meta_value,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query, pageID, key, value, time.Now().UTC())
	if err != nil {
		return r.handlePostgresError("set page meta", err)
	}
	return nil
}
