package service

import (
	"context"
	"errors"

	"catframe/internal/models"
	"catframe/internal/repository"
	"catframe/internal/validation"
)

type CommentService struct {
	comments repository.CommentRepo
	movies   repository.MovieRepo
	validate *validation.Validator
}

func NewCommentService(comments repository.CommentRepo, movies repository.MovieRepo, val *validation.Validator) *CommentService {
	if val == nil {
		val = validation.New()
	}
	return &CommentService{comments: comments, movies: movies, validate: val}
}

func (s *CommentService) requireMovie(ctx context.Context, movieID int64) error {
	m, err := s.movies.Get(ctx, movieID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMovieNotFound
	}
	return nil
}

// CreateComment attaches a comment by author to an existing movie.
func (s *CommentService) CreateComment(ctx context.Context, author *models.User, movieID int64, text string) (*models.Comment, error) {
	if author == nil {
		return nil, ErrUnauthorized
	}
	if err := s.validate.Comment(text); err != nil {
		return nil, err
	}
	if err := s.requireMovie(ctx, movieID); err != nil {
		return nil, err
	}

	c := &models.Comment{Text: text, MovieID: movieID, UserID: author.ID, User: author.Public()}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns a movie's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, movieID int64, skip, limit int) ([]models.Comment, error) {
	if err := s.requireMovie(ctx, movieID); err != nil {
		return nil, err
	}
	skip, limit = normalizePage(skip, limit)
	return s.comments.ListByMovie(ctx, movieID, skip, limit)
}

// DeleteComment removes a comment of movieID. Only its author or an admin may do so.
func (s *CommentService) DeleteComment(ctx context.Context, actor *models.User, movieID, commentID int64) error {
	if actor == nil {
		return ErrUnauthorized
	}
	c, err := s.comments.Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c == nil || c.MovieID != movieID {
		return ErrCommentNotFound
	}
	if c.UserID != actor.ID && !actor.IsAdmin {
		return ErrForbidden
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	return nil
}
