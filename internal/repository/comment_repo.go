package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"catframe/internal/models"
	"catframe/internal/repository/db"
)

type CommentRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewCommentRepository(conn *sql.DB, dialect db.Dialect) *CommentRepository {
	return &CommentRepository{db: conn, dialect: dialect}
}

var _ CommentRepo = (*CommentRepository)(nil)

const (
	commentSelect = `SELECT c.id, c.text, c.movie_id, c.user_id, c.created_at, u.id, u.username, u.is_admin
		FROM comments c JOIN users u ON u.id = c.user_id`

	insertCommentSQL       = `INSERT INTO comments (text, movie_id, user_id, created_at) VALUES (?, ?, ?, ?) RETURNING id`
	selectCommentByIDSQL   = commentSelect + ` WHERE c.id = ?`
	listCommentsByMovieSQL = commentSelect + ` WHERE c.movie_id = ? ORDER BY c.id DESC LIMIT ? OFFSET ?`
	deleteCommentSQL       = `DELETE FROM comments WHERE id = ?`
)

func scanComment(s rowScanner) (*models.Comment, error) {
	var c models.Comment
	if err := s.Scan(&c.ID, &c.Text, &c.MovieID, &c.UserID, &c.CreatedAt,
		&c.User.ID, &c.User.Username, &c.User.IsAdmin); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

// Create inserts c, setting ID and, when unset, CreatedAt. The author projection is left as is.
func (r *CommentRepository) Create(ctx context.Context, c *models.Comment) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertCommentSQL),
		c.Text, c.MovieID, c.UserID, c.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert comment on movie %d: %w", c.MovieID, err)
	}
	c.ID = id
	return nil
}

// Get fetches a comment with its author. Returns (nil, nil) if not found.
func (r *CommentRepository) Get(ctx context.Context, id int64) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, r.dialect.Rebind(selectCommentByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select comment %d: %w", id, err)
	}
	return c, nil
}

// ListByMovie returns a movie's comments newest first.
func (r *CommentRepository) ListByMovie(ctx context.Context, movieID int64, offset, limit int) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(listCommentsByMovieSQL), movieID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments of movie %d: %w", movieID, err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0, 16)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments of movie %d: %w", movieID, err)
	}
	return out, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteCommentSQL), id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return nil
}
