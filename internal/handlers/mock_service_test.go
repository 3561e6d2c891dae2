package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"catframe/internal/models"
	"catframe/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

// mockGuard accepts exactly one token and enforces the admin role like the real guard.
type mockGuard struct {
	token     string
	user      *models.User
	err       error
	lastToken string
}

func (m *mockGuard) Authenticate(_ context.Context, raw string) (*models.User, error) {
	m.lastToken = raw
	if m.err != nil {
		return nil, m.err
	}
	if raw != m.token || m.user == nil {
		return nil, service.ErrUnauthorized
	}
	return m.user, nil
}

func (m *mockGuard) RequireAdmin(u *models.User) (*models.User, error) {
	if u == nil || !u.IsAdmin {
		return nil, service.ErrForbidden
	}
	return u, nil
}

type mockAuth struct {
	loginToken  string
	loginErr    error
	registered  *models.User
	registerErr error
	ticket      service.PasswordResetTicket
	ticketErr   error
	resetErr    error

	lastUsername string
	lastPassword string
	lastToken    string
}

func (m *mockAuth) Login(_ context.Context, username, password string) (string, error) {
	m.lastUsername, m.lastPassword = username, password
	return m.loginToken, m.loginErr
}

func (m *mockAuth) Register(_ context.Context, username, password string) (*models.User, error) {
	m.lastUsername, m.lastPassword = username, password
	return m.registered, m.registerErr
}

func (m *mockAuth) RequestPasswordReset(_ context.Context, username string) (service.PasswordResetTicket, error) {
	m.lastUsername = username
	return m.ticket, m.ticketErr
}

func (m *mockAuth) ResetPassword(_ context.Context, token, newPassword string) error {
	m.lastToken, m.lastPassword = token, newPassword
	return m.resetErr
}

func (m *mockAuth) CreateAdmin(_ context.Context, username, password string) (*models.User, error) {
	return m.registered, m.registerErr
}

type mockMovies struct {
	movie      *models.Movie
	list       []models.Movie
	err        error
	lastFilter service.MovieFilter
	lastInput  models.MovieInput
	lastID     int64
	calls      int
}

func (m *mockMovies) CreateMovie(_ context.Context, in models.MovieInput) (*models.Movie, error) {
	m.calls++
	m.lastInput = in
	return m.movie, m.err
}

func (m *mockMovies) ListMovies(_ context.Context, f service.MovieFilter) ([]models.Movie, error) {
	m.calls++
	m.lastFilter = f
	return m.list, m.err
}

func (m *mockMovies) GetMovie(_ context.Context, id int64) (*models.Movie, error) {
	m.calls++
	m.lastID = id
	return m.movie, m.err
}

func (m *mockMovies) ReplaceMovie(_ context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	m.calls++
	m.lastID, m.lastInput = id, in
	return m.movie, m.err
}

func (m *mockMovies) PatchMovie(_ context.Context, id int64, in models.MovieInput) (*models.Movie, error) {
	m.calls++
	m.lastID, m.lastInput = id, in
	return m.movie, m.err
}

func (m *mockMovies) DeleteMovie(_ context.Context, id int64) error {
	m.calls++
	m.lastID = id
	return m.err
}

type mockComments struct {
	comment    *models.Comment
	list       []models.Comment
	err        error
	lastActor  *models.User
	lastMovie  int64
	lastTarget int64
	lastSkip   int
	lastLimit  int
	lastText   string
}

func (m *mockComments) CreateComment(_ context.Context, author *models.User, movieID int64, text string) (*models.Comment, error) {
	m.lastActor, m.lastMovie, m.lastText = author, movieID, text
	return m.comment, m.err
}

func (m *mockComments) ListComments(_ context.Context, movieID int64, skip, limit int) ([]models.Comment, error) {
	m.lastMovie, m.lastSkip, m.lastLimit = movieID, skip, limit
	return m.list, m.err
}

func (m *mockComments) DeleteComment(_ context.Context, actor *models.User, movieID, commentID int64) error {
	m.lastActor, m.lastMovie, m.lastTarget = actor, movieID, commentID
	return m.err
}

type mockUsers struct {
	user      *models.User
	list      []models.User
	err       error
	lastActor *models.User
	lastID    int64
}

func (m *mockUsers) ListUsers(_ context.Context, skip, limit int) ([]models.User, error) {
	return m.list, m.err
}

func (m *mockUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	m.lastID = id
	return m.user, m.err
}

func (m *mockUsers) ToggleAdmin(_ context.Context, actor *models.User, id int64) (*models.User, error) {
	m.lastActor, m.lastID = actor, id
	return m.user, m.err
}

func (m *mockUsers) DeleteUser(_ context.Context, actor *models.User, id int64) error {
	m.lastActor, m.lastID = actor, id
	return m.err
}

// ---- Shared Test Helpers ----

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

var (
	testUser  = &models.User{ID: 2, Username: "bob"}
	testAdmin = &models.User{ID: 1, Username: "root", IsAdmin: true}
)

// tokenGuard recognises userToken and adminToken.
type tokenGuard struct{ mockGuard }

func (g *tokenGuard) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	switch raw {
	case userToken:
		return testUser, nil
	case adminToken:
		return testAdmin, nil
	}
	return g.mockGuard.Authenticate(ctx, raw)
}

// newTestService fills every sub-service so no embedded interface is nil.
func newTestService() *service.Service {
	return &service.Service{
		Guard:         &tokenGuard{},
		Authorization: &mockAuth{},
		Movies:        &mockMovies{},
		Comments:      &mockComments{},
		Users:         &mockUsers{},
	}
}

func newTestRouter(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func doRequest(r http.Handler, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	for k, v := range header {
		req.Header[k] = v
	}
	if body != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
	}
	return out
}
