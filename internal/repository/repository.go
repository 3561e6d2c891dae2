package repository

import (
	"context"
	"database/sql"
	"errors"

	"catframe/internal/models"
	"catframe/internal/repository/db"
)

var (
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned by writes that target a missing row.
	ErrNotFound = errors.New("not found")
)

// UserRepo is the credential store. Finders return (nil, nil) when no row matches.
type UserRepo interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	// Save inserts when u.ID is zero (assigning u.ID) and updates otherwise.
	Save(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
}

type MovieRepo interface {
	Create(ctx context.Context, m *models.Movie) error
	Get(ctx context.Context, id int64) (*models.Movie, error)
	List(ctx context.Context, q MovieQuery) ([]models.Movie, error)
	Update(ctx context.Context, m models.Movie) error
	Delete(ctx context.Context, id int64) error
}

type CommentRepo interface {
	Create(ctx context.Context, c *models.Comment) error
	Get(ctx context.Context, id int64) (*models.Comment, error)
	ListByMovie(ctx context.Context, movieID int64, offset, limit int) ([]models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type Repository struct {
	Users    UserRepo
	Movies   MovieRepo
	Comments CommentRepo
}

func NewRepository(conn *sql.DB, dialect db.Dialect) *Repository {
	return &Repository{
		Users:    NewUserRepository(conn, dialect),
		Movies:   NewMovieRepository(conn, dialect),
		Comments: NewCommentRepository(conn, dialect),
	}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// expectAffected maps a zero-row write to ErrNotFound.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
