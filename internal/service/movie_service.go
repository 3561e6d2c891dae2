package service

import (
	"context"
	"errors"
	"fmt"

	"catframe/internal/models"
	"catframe/internal/repository"
	"catframe/internal/validation"
)

// MovieFilter is the public listing query. Text filters are case-insensitive substrings.
type MovieFilter struct {
	Title    string
	Director string
	Genre    string
	MinYear  *int
	MaxYear  *int
	Skip     int
	Limit    int
}

type MovieService struct {
	repo     repository.MovieRepo
	validate *validation.Validator
}

func NewMovieService(repo repository.MovieRepo, val *validation.Validator) *MovieService {
	if val == nil {
		val = validation.New()
	}
	return &MovieService{repo: repo, validate: val}
}

func (s *MovieService) CreateMovie(ctx context.Context, in models.MovieInput) (*models.Movie, error) {
	if err := s.validate.Movie(in); err != nil {
		return nil, err
	}
	m := in.Movie(0)
	if err := s.repo.Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *MovieService) ListMovies(ctx context.Context, f MovieFilter) ([]models.Movie, error) {
	skip, limit := normalizePage(f.Skip, f.Limit)
	return s.repo.List(ctx, repository.MovieQuery{
		Title:    f.Title,
		Director: f.Director,
		Genre:    f.Genre,
		MinYear:  f.MinYear,
		MaxYear:  f.MaxYear,
		Offset:   skip,
		Limit:    limit,
	})
}

func (s *MovieService) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMovieNotFound
	}
	return m, nil
}

// ReplaceMovie overwrites every field; absent optional fields become null.
func (s *MovieService) ReplaceMovie(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	if err := s.validate.Movie(in); err != nil {
		return nil, err
	}
	m := in.Movie(id)
	if err := s.update(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// PatchMovie applies only the fields present in the input.
func (s *MovieService) PatchMovie(ctx context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	if err := s.validate.MoviePatch(in); err != nil {
		return nil, err
	}
	m, err := s.GetMovie(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ApplyTo(m)
	if err := s.update(ctx, *m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MovieService) update(ctx context.Context, m models.Movie) error {
	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMovieNotFound
		}
		return fmt.Errorf("save movie: %w", err)
	}
	return nil
}

func (s *MovieService) DeleteMovie(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMovieNotFound
		}
		return err
	}
	return nil
}
