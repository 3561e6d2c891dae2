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

type UserRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewUserRepository(conn *sql.DB, dialect db.Dialect) *UserRepository {
	return &UserRepository{db: conn, dialect: dialect}
}

// Ensure implementation of UserRepo interface at compile time.
var _ UserRepo = (*UserRepository)(nil)

const (
	userColumns = `id, username, password_hash, is_admin, reset_token, reset_token_expires_at, created_at`

	insertUserSQL = `INSERT INTO users (username, password_hash, is_admin, reset_token, reset_token_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	updateUserSQL = `UPDATE users SET password_hash = ?, is_admin = ?, reset_token = ?, reset_token_expires_at = ?
		WHERE id = ?`
	selectUserByUsernameSQL   = `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	selectUserByResetTokenSQL = `SELECT ` + userColumns + ` FROM users WHERE reset_token = ?`
	selectUserByIDSQL         = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	listUsersSQL              = `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`
	deleteUserSQL             = `DELETE FROM users WHERE id = ?`
)

func scanUser(s rowScanner) (*models.User, error) {
	var (
		u         models.User
		token     sql.NullString
		expiresAt sql.NullTime
	)
	if err := s.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &token, &expiresAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	if token.Valid {
		u.ResetToken = &token.String
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		u.ResetTokenExpiresAt = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// nullableTime converts an optional timestamp into a UTC driver value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

// nullableString converts an optional string into a driver value.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// FindByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := r.findOne(ctx, selectUserByUsernameSQL, username)
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", username, err)
	}
	return u, nil
}

// FindByResetToken fetches the user holding token. Returns (nil, nil) if not found.
func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	u, err := r.findOne(ctx, selectUserByResetTokenSQL, token)
	if err != nil {
		return nil, fmt.Errorf("select user by reset token: %w", err)
	}
	return u, nil
}

// FindByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := r.findOne(ctx, selectUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("select user %d: %w", id, err)
	}
	return u, nil
}

// List returns users ordered by id.
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(listUsersSQL), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]models.User, 0, 16)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

// Save inserts a new user (u.ID == 0) or updates the mutable columns of an existing one.
// Username is immutable and never updated.
func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	if u.ID == 0 {
		return r.insert(ctx, u)
	}
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(updateUserSQL),
		u.PasswordHash,
		u.IsAdmin,
		nullableString(u.ResetToken),
		nullableTime(u.ResetTokenExpiresAt),
		u.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("update user %d: %w", u.ID, ErrConflict)
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

func (r *UserRepository) insert(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	var id int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(insertUserSQL),
		u.Username,
		u.PasswordHash,
		u.IsAdmin,
		nullableString(u.ResetToken),
		nullableTime(u.ResetTokenExpiresAt),
		u.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("insert user %q: %w", u.Username, ErrConflict)
		}
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	u.ID = id
	return nil
}

// Delete removes a user; comments cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(deleteUserSQL), id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if err := expectAffected(res); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}
