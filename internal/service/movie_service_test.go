package service

import (
	"context"
	"errors"
	"testing"

	"catframe/internal/models"
	"catframe/internal/validation"
)

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestMovieService_CreateAndGet(t *testing.T) {
	repo := newFakeMovieRepo()
	svc := NewMovieService(repo, nil)

	m, err := svc.CreateMovie(context.Background(), models.MovieInput{Name: strp("Alien"), ReleaseYear: intp(1979)})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	if m.ID == 0 || m.Name != "Alien" {
		t.Fatalf("unexpected movie: %+v", m)
	}

	got, err := svc.GetMovie(context.Background(), m.ID)
	if err != nil || got.Name != "Alien" {
		t.Fatalf("GetMovie: %+v, %v", got, err)
	}

	if _, err := svc.GetMovie(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovieService_CreateValidation(t *testing.T) {
	svc := NewMovieService(newFakeMovieRepo(), nil)

	_, err := svc.CreateMovie(context.Background(), models.MovieInput{ReleaseYear: intp(1700)})
	ve, ok := validation.AsErrors(err)
	if !ok || len(ve) != 1 || ve[0].Field != "name" {
		t.Fatalf("expected missing name violation, got %v", err)
	}
}

func TestMovieService_ListNormalizesPaging(t *testing.T) {
	tests := []struct {
		name       string
		skip       int
		limit      int
		wantOffset int
		wantLimit  int
	}{
		{name: "defaults", wantOffset: 0, wantLimit: DefaultPageSize},
		{name: "negative skip", skip: -5, limit: 10, wantOffset: 0, wantLimit: 10},
		{name: "limit capped", skip: 20, limit: 1000, wantOffset: 20, wantLimit: MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeMovieRepo()
			svc := NewMovieService(repo, nil)

			_, err := svc.ListMovies(context.Background(), MovieFilter{Title: "al", MinYear: intp(1970), Skip: tt.skip, Limit: tt.limit})
			if err != nil {
				t.Fatalf("ListMovies: %v", err)
			}
			q := repo.lastQuery
			if q.Offset != tt.wantOffset || q.Limit != tt.wantLimit {
				t.Fatalf("unexpected paging: %+v", q)
			}
			if q.Title != "al" || q.MinYear == nil || *q.MinYear != 1970 {
				t.Fatalf("filters not forwarded: %+v", q)
			}
		})
	}
}

func TestMovieService_ReplaceClearsOmittedFields(t *testing.T) {
	repo := newFakeMovieRepo()
	svc := NewMovieService(repo, nil)

	m, _ := svc.CreateMovie(context.Background(), models.MovieInput{Name: strp("Heat"), Director: strp("Michael Mann")})

	got, err := svc.ReplaceMovie(context.Background(), m.ID, models.MovieInput{Name: strp("Heat (1995)")})
	if err != nil {
		t.Fatalf("ReplaceMovie: %v", err)
	}
	if got.Name != "Heat (1995)" || got.Director != nil {
		t.Fatalf("unexpected replaced movie: %+v", got)
	}
	if repo.rows[m.ID].Director != nil {
		t.Fatalf("stored director should be cleared")
	}

	if _, err := svc.ReplaceMovie(context.Background(), 404, models.MovieInput{Name: strp("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovieService_PatchKeepsOmittedFields(t *testing.T) {
	repo := newFakeMovieRepo()
	svc := NewMovieService(repo, nil)

	m, _ := svc.CreateMovie(context.Background(), models.MovieInput{Name: strp("Heat"), Director: strp("Michael Mann")})

	got, err := svc.PatchMovie(context.Background(), m.ID, models.MovieInput{Genre: strp("Crime")})
	if err != nil {
		t.Fatalf("PatchMovie: %v", err)
	}
	if got.Name != "Heat" || got.Director == nil || *got.Director != "Michael Mann" || got.Genre == nil || *got.Genre != "Crime" {
		t.Fatalf("unexpected patched movie: %+v", got)
	}

	if _, err := svc.PatchMovie(context.Background(), m.ID, models.MovieInput{Duration: intp(-3)}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := svc.PatchMovie(context.Background(), 404, models.MovieInput{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMovieService_Delete(t *testing.T) {
	repo := newFakeMovieRepo()
	svc := NewMovieService(repo, nil)
	m, _ := svc.CreateMovie(context.Background(), models.MovieInput{Name: strp("Heat")})

	if err := svc.DeleteMovie(context.Background(), m.ID); err != nil {
		t.Fatalf("DeleteMovie: %v", err)
	}
	if err := svc.DeleteMovie(context.Background(), m.ID); !errors.Is(err, ErrMovieNotFound) {
		t.Fatalf("expected ErrMovieNotFound, got %v", err)
	}
}
