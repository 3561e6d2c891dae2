package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"catframe/internal/models"
	"catframe/internal/repository/db"
)

// MovieQuery is a normalized listing request. Zero-valued filters are ignored.
type MovieQuery struct {
	Title    string
	Director string
	Genre    string
	MinYear  *int
	MaxYear  *int
	Offset   int
	Limit    int
}

type MovieRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewMovieRepository(conn *sql.DB, dialect db.Dialect) *MovieRepository {
	return &MovieRepository{db: conn, dialect: dialect}
}

var _ MovieRepo = (*MovieRepository)(nil)

const (
	movieColumns = `id, name, photo, duration, release_year, description, banner_url, director, genre`

	insertMovieSQL = `INSERT INTO movies (name, photo, duration, release_year, description, banner_url, director, genre)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	updateMovieSQL = `UPDATE movies SET name = ?, photo = ?, duration = ?, release_year = ?, description = ?,
		banner_url = ?, director = ?, genre = ? WHERE id = ?`
	selectMovieByIDSQL = `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`
	deleteMovieSQL     = `DELETE FROM movies WHERE id = ?`
)

func scanMovie(s rowScanner) (*models.Movie, error) {
	var (
		m                                           models.Movie
		photo, description, banner, director, genre sql.NullString
		duration, year                              sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.Name, &photo, &duration, &year, &description, &banner, &director, &genre); err != nil {
		return nil, err
	}
	m.Photo = stringPtr(photo)
	m.Duration = intPtr(duration)
	m.ReleaseYear = intPtr(year)
	m.Description = stringPtr(description)
	m.BannerURL = stringPtr(banner)
	m.Director = stringPtr(director)
	m.Genre = stringPtr(genre)
	return &m, nil
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func intPtr(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

// escapeLike quotes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (r *MovieRepository) movieArgs(m models.Movie) []any {
	return []any{
		m.Name,
		nullableString(m.Photo),
		nullableInt(m.Duration),
		nullableInt(m.ReleaseYear),
		nullableString(m.Description),
		nullableString(m.BannerURL),
		nullableString(m.Director),
		nullableString(m.Genre),
	}
}

// Create inserts m and sets its ID.
func (r *MovieRepository) Create(ctx context.Context, m *models.Movie) error {
	var id int64
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertMovieSQL), r.movieArgs(*m)...).Scan(&id); err != nil {
		return fmt.Errorf("insert movie %q: %w", m.Name, err)
	}
	m.ID = id
	return nil
}

// Get fetches a movie by id. Returns (nil, nil) if not found.
func (r *MovieRepository) Get(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, r.dialect.Rebind(selectMovieByIDSQL), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select movie %d: %w", id, err)
	}
	return m, nil
}

// List returns movies matching q, newest release first, then by name.
func (r *MovieRepository) List(ctx context.Context, q MovieQuery) ([]models.Movie, error) {
	var (
		conds []string
		args  []any
	)

	like := func(col, v string) {
		if v = strings.TrimSpace(v); v != "" {
			conds = append(conds, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(strings.ToLower(v))+"%")
		}
	}
	like("name", q.Title)
	like("director", q.Director)
	like("genre", q.Genre)

	if q.MinYear != nil {
		conds = append(conds, "release_year >= ?")
		args = append(args, *q.MinYear)
	}
	if q.MaxYear != nil {
		conds = append(conds, "release_year <= ?")
		args = append(args, *q.MaxYear)
	}

	query := `SELECT ` + movieColumns + ` FROM movies`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY release_year DESC, name ASC LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	out := make([]models.Movie, 0, 16)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return out, nil
}

// Update overwrites every column of the movie identified by m.ID.
func (r *MovieRepository) Update(ctx context.Context, m models.Movie) error {
	args := append(r.movieArgs(m), m.ID)
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(updateMovieSQL), args...)
	if err != nil {
		return fmt.Errorf("update movie %d: %w", m.ID, err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("update movie %d: %w", m.ID, err)
	}
	return nil
}

// Delete removes a movie and, by cascade, its comments.
func (r *MovieRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteMovieSQL), id)
	if err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("delete movie %d: %w", id, err)
	}
	return nil
}
