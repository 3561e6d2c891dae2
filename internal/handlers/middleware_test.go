package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"catframe/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil, Options{})
	r.GET("/secure", h.requireUser, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "user": currentUser(c).Username})
	})
	r.GET("/admin", h.requireUser, h.requireAdmin, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequireUser_Errors(t *testing.T) {
	type want struct {
		code   int
		errMsg string
	}
	cases := []struct {
		name     string
		header   string
		guardErr error
		want     want
	}{
		{
			name:   "missing header",
			header: "",
			want:   want{code: http.StatusUnauthorized, errMsg: "missing Authorization header"},
		},
		{
			name:   "invalid scheme",
			header: "Token abc",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "bearer without token",
			header: "Bearer",
			want:   want{code: http.StatusUnauthorized, errMsg: "invalid Authorization header format"},
		},
		{
			name:   "expired/invalid token",
			header: "Bearer expired",
			want:   want{code: http.StatusUnauthorized, errMsg: "could not validate credentials"},
		},
		{
			name:     "store failure",
			header:   "Bearer whatever",
			guardErr: errors.New("db down"),
			want:     want{code: http.StatusInternalServerError, errMsg: errInternal},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestService()
			s.Guard = &mockGuard{token: "good", user: testUser, err: tc.guardErr}
			r := newMiddlewareOnlyRouter(s)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != tc.want.code {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.want.code, w.Body.String())
			}
			if got := decodeBody(t, w)["error"]; got != tc.want.errMsg {
				t.Fatalf("error: got %v, want %q", got, tc.want.errMsg)
			}
			if tc.want.code == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Fatalf("expected WWW-Authenticate: Bearer on 401")
			}
		})
	}
}

func TestRequireUser_SchemeIsCaseInsensitive(t *testing.T) {
	s := newTestService()
	guard := &mockGuard{token: "good", user: testUser}
	s.Guard = guard
	r := newMiddlewareOnlyRouter(s)

	for _, header := range []string{"Bearer good", "bearer good", "BEARER   good "} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", header)
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%q: status %d body=%s", header, w.Code, w.Body.String())
		}
		if guard.lastToken != "good" {
			t.Fatalf("%q: token passed as %q", header, guard.lastToken)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newMiddlewareOnlyRouter(newTestService())

	w := doRequest(r, http.MethodGet, "/admin", "", authHeader(userToken))
	if w.Code != http.StatusForbidden {
		t.Fatalf("regular user: got %d", w.Code)
	}
	if decodeBody(t, w)["error"] != "insufficient permissions" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}

	w = doRequest(r, http.MethodGet, "/admin", "", authHeader(adminToken))
	if w.Code != http.StatusOK {
		t.Fatalf("admin: got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := newTestRouter(newTestService(), Options{})

	w := doRequest(r, http.MethodGet, "/health", "", nil)
	if id := w.Header().Get(requestIDHeader); len(id) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", id)
	}

	h := http.Header{}
	h.Set(requestIDHeader, "abc-123")
	w = doRequest(r, http.MethodGet, "/health", "", h)
	if id := w.Header().Get(requestIDHeader); id != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", id)
	}
}
