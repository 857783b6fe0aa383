// AngelaMos | 2026
// repository.go

package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/postgate/internal/core"
)

type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

func (o Order) sql() string {
	if o == OldestFirst {
		return "created_at ASC, id ASC"
	}
	return "created_at DESC, id DESC"
}

type Repository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	// GetByIDForUpdate locks the row until the enclosing transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*Post, error)
	UpdateContent(ctx context.Context, post *Post) error
	UpdateStatus(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, status Status, order Order) ([]Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]Post, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	// WithTx runs fn against a repository bound to one transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db   core.DBTX
	conn *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

const postColumns = `id, title, content, author_id, status, created_at, updated_at`

func (r *repository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}

	return core.InTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) Create(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, title, content, author_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, post, query,
		post.ID,
		post.Title,
		post.Content,
		post.AuthorID,
		post.Status.String(),
	)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Post, error) {
	return r.get(ctx, id, "")
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id string) (*Post, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *repository) get(ctx context.Context, id, lock string) (*Post, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1` + lock

	var post Post
	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// UpdateContent writes title, content and status together, since an
// edit may also move the post back to PENDING.
func (r *repository) UpdateContent(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET title = $2, content = $3, status = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &post.UpdatedAt, query,
		post.ID,
		post.Title,
		post.Content,
		post.Status.String(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &post.UpdatedAt, query, post.ID, post.Status.String())
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post status: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update post status: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("delete post: %w", core.ErrNotFound)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete post: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListByStatus(
	ctx context.Context,
	status Status,
	order Order,
) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE status = $1 ORDER BY ` + order.sql()

	posts := []Post{}
	if err := r.db.SelectContext(ctx, &posts, query, status.String()); err != nil {
		return nil, fmt.Errorf("list posts by status: %w", err)
	}

	return posts, nil
}

func (r *repository) ListByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	posts := []Post{}
	if !validID(authorID) {
		return posts, nil
	}

	query := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1 ORDER BY ` + NewestFirst.sql()

	if err := r.db.SelectContext(ctx, &posts, query, authorID); err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}

	return posts, nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	query := `SELECT status, COUNT(*) AS total FROM posts GROUP BY status`

	var rows []struct {
		Status Status `db:"status"`
		Total  int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count posts by status: %w", err)
	}

	counts := make(map[Status]int, len(Statuses()))
	for _, s := range Statuses() {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
