package service

import (
	"context"
	"time"

	"catframe/internal/auth"
	"catframe/internal/models"
	"catframe/internal/repository"
	"catframe/internal/validation"
)

// Guard turns bearer tokens into users and enforces roles.
type Guard interface {
	Authenticate(ctx context.Context, rawToken string) (*models.User, error)
	RequireAdmin(u *models.User) (*models.User, error)
}

// Authorization covers the credential flows: login, registration and password reset.
type Authorization interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, password string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, username string) (PasswordResetTicket, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	CreateAdmin(ctx context.Context, username, password string) (*models.User, error)
}

// Movies is the catalog.
type Movies interface {
	CreateMovie(ctx context.Context, in models.MovieInput) (*models.Movie, error)
	ListMovies(ctx context.Context, f MovieFilter) ([]models.Movie, error)
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	ReplaceMovie(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error)
	PatchMovie(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
}

// Comments are per-movie discussion entries.
type Comments interface {
	CreateComment(ctx context.Context, author *models.User, movieID int64, text string) (*models.Comment, error)
	ListComments(ctx context.Context, movieID int64, skip, limit int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, actor *models.User, movieID, commentID int64) error
}

// Users is the admin view over accounts.
type Users interface {
	ListUsers(ctx context.Context, skip, limit int) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ToggleAdmin(ctx context.Context, actor *models.User, id int64) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, id int64) error
}

// Service aggregates all sub-services.
type Service struct {
	Guard
	Authorization
	Movies
	Comments
	Users
}

// Deps carries everything NewService needs. Now defaults to time.Now.
type Deps struct {
	Repos         *repository.Repository
	Hasher        *auth.PasswordHasher
	Tokens        *auth.TokenService
	ResetTokenTTL time.Duration
	Now           func() time.Time
}

// NewService wires the repository layer and auth primitives into concrete services.
func NewService(d Deps) *Service {
	val := validation.New()
	return &Service{
		Guard:         NewGuardService(d.Tokens, d.Repos.Users),
		Authorization: NewAuthService(d.Repos.Users, d.Hasher, d.Tokens, val, d.ResetTokenTTL, d.Now),
		Movies:        NewMovieService(d.Repos.Movies, val),
		Comments:      NewCommentService(d.Repos.Comments, d.Repos.Movies, val),
		Users:         NewUserService(d.Repos.Users),
	}
}

// Paging bounds shared by list operations.
const (
	DefaultPageSize = 100
	MaxPageSize     = 100
)

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return skip, limit
}
