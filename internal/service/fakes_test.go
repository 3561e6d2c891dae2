package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"catframe/internal/auth"
	"catframe/internal/models"
	"catframe/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo is an in-memory repository.UserRepo with error injection.
type fakeUserRepo struct {
	mu     sync.Mutex
	rows   map[int64]models.User
	nextID int64

	findErr error
	saveErr error
	saves   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: map[int64]models.User{}}
}

func (r *fakeUserRepo) find(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.rows {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ResetToken != nil && *u.ResetToken == token })
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.rows))
	for _, u := range r.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	if u.ID == 0 {
		for _, existing := range r.rows {
			if existing.Username == u.Username {
				return fmt.Errorf("insert user %q: %w", u.Username, repository.ErrConflict)
			}
		}
		r.nextID++
		u.ID = r.nextID
		r.rows[u.ID] = *u
		return nil
	}
	if _, ok := r.rows[u.ID]; !ok {
		return fmt.Errorf("update user %d: %w", u.ID, repository.ErrNotFound)
	}
	r.rows[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("delete user %d: %w", id, repository.ErrNotFound)
	}
	delete(r.rows, id)
	return nil
}

// put stores u directly, bypassing uniqueness checks.
func (r *fakeUserRepo) put(u models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == 0 {
		r.nextID++
		u.ID = r.nextID
	}
	r.rows[u.ID] = u
	return &u
}

func (r *fakeUserRepo) get(id int64) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[id]
}

// fakeMovieRepo is an in-memory repository.MovieRepo.
type fakeMovieRepo struct {
	rows      map[int64]models.Movie
	nextID    int64
	lastQuery repository.MovieQuery
}

func newFakeMovieRepo() *fakeMovieRepo { return &fakeMovieRepo{rows: map[int64]models.Movie{}} }

func (r *fakeMovieRepo) Create(_ context.Context, m *models.Movie) error {
	r.nextID++
	m.ID = r.nextID
	r.rows[m.ID] = *m
	return nil
}

func (r *fakeMovieRepo) Get(_ context.Context, id int64) (*models.Movie, error) {
	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (r *fakeMovieRepo) List(_ context.Context, q repository.MovieQuery) ([]models.Movie, error) {
	r.lastQuery = q
	out := make([]models.Movie, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMovieRepo) Update(_ context.Context, m models.Movie) error {
	if _, ok := r.rows[m.ID]; !ok {
		return repository.ErrNotFound
	}
	r.rows[m.ID] = m
	return nil
}

func (r *fakeMovieRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

// fakeCommentRepo is an in-memory repository.CommentRepo.
type fakeCommentRepo struct {
	rows   map[int64]models.Comment
	nextID int64
}

func newFakeCommentRepo() *fakeCommentRepo { return &fakeCommentRepo{rows: map[int64]models.Comment{}} }

func (r *fakeCommentRepo) Create(_ context.Context, c *models.Comment) error {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now().UTC()
	r.rows[c.ID] = *c
	return nil
}

func (r *fakeCommentRepo) Get(_ context.Context, id int64) (*models.Comment, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *fakeCommentRepo) ListByMovie(_ context.Context, movieID int64, offset, limit int) ([]models.Comment, error) {
	var out []models.Comment
	for _, c := range r.rows {
		if c.MovieID == movieID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset > len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testHasher() *auth.PasswordHasher { return auth.NewPasswordHasher(bcrypt.MinCost) }

func testTokens(t *testing.T, now func() time.Time) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte("0123456789abcdef0123456789abcdef"),
		Algorithm: "HS256",
		AccessTTL: 30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts.WithClock(now)
}

// newUser stores a user with the given password hashed at minimum cost.
func newUser(t *testing.T, repo *fakeUserRepo, username, password string, admin bool) *models.User {
	t.Helper()
	hash, err := testHasher().Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return repo.put(models.User{Username: username, PasswordHash: hash, IsAdmin: admin})
}

func errConflictForTest() error {
	return fmt.Errorf("insert user: %w", repository.ErrConflict)
}

func newUserRow(username string, resetToken *string) models.User {
	return models.User{Username: username, PasswordHash: "x", ResetToken: resetToken}
}
