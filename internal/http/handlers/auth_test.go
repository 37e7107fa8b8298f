package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prabhdip/recipebox/internal/config"
	"github.com/prabhdip/recipebox/internal/domain/user"
	"github.com/prabhdip/recipebox/internal/http/handlers"
	"github.com/prabhdip/recipebox/internal/http/middlewares"
	"github.com/prabhdip/recipebox/internal/repo/postgres"
	"github.com/prabhdip/recipebox/internal/session"
)

// keep gin quiet during tests
func init() {
	gin.SetMode(gin.TestMode)
}

// in-memory stand-in for the postgres users repo, shared by the handler and
// the session middleware
type fakeUsers struct {
	mu     sync.Mutex
	byID   map[string]user.User
	byName map[string]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byID:   make(map[string]user.User),
		byName: make(map[string]string),
	}
}

func (f *fakeUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, taken := f.byName[u.Username]; taken {
		return user.User{}, postgres.ErrUsernameTaken
	}

	f.byID[u.ID] = u
	f.byName[u.Username] = u.ID

	return u, nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.byName[username]

	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	return f.byID[id], nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]

	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}

	return u, nil
}

func (f *fakeUsers) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]

	if ok {
		delete(f.byName, u.Username)
		delete(f.byID, id)
	}
}

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		Port:            0,
		SessionTTLHours: 1,
	}
}

// wires the auth routes the way the real router does
func setupAuthRouter(users *fakeUsers, sessions session.Store) *gin.Engine {
	r := gin.New()

	h := handlers.NewAuthHandler(users, sessions, testConfig())
	sessionAuth := middlewares.NewSessionAuth(sessions, users)

	r.POST("/signup", h.SignUp)
	r.POST("/login", h.Login)

	authed := r.Group("", sessionAuth.RequireSession())
	authed.GET("/check_session", h.CheckSession)
	authed.DELETE("/logout", h.Logout)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer

	if body == "" {
		reader = bytes.NewBufferString("")
	} else {
		reader = bytes.NewBufferString(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}

	return nil
}

func errorsList(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var payload struct {
		Errors []string `json:"errors"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode 422 body: %v (%s)", err, w.Body.String())
	}

	return payload.Errors
}

func TestSignUp(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		seed           func(*fakeUsers, session.Store)
		wantStatusCode int
		wantErrors     []string
		wantCookie     bool
	}{
		{
			name:           "success",
			body:           `{"username":"Prabhdip","password":"secret123","image_url":"http://x/y.png","bio":"cook"}`,
			wantStatusCode: http.StatusCreated,
			wantCookie:     true,
		},
		{
			name:           "blank_username",
			body:           `{"username":"   ","password":"secret123"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantErrors:     []string{user.MsgUsernameRequired},
		},
		{
			name:           "missing_password",
			body:           `{"username":"Prabhdip"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantErrors:     []string{user.MsgPasswordRequired},
		},
		{
			name:           "everything_missing",
			body:           `{}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantErrors:     []string{user.MsgUsernameRequired, user.MsgPasswordRequired},
		},
		{
			name: "duplicate_username",
			body: `{"username":"Prabhdip","password":"secret123"}`,
			seed: func(f *fakeUsers, _ session.Store) {
				u, _ := user.New("Prabhdip", "", "")
				_ = u.SetPassword("other")
				_, _ = f.Create(context.Background(), u)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantErrors:     []string{"Username is already taken."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUsers()
			sessions := session.NewMemoryStore(time.Hour)

			if tt.seed != nil {
				tt.seed(users, sessions)
			}

			r := setupAuthRouter(users, sessions)

			w := doJSON(t, r, http.MethodPost, "/signup", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantErrors != nil {
				got := errorsList(t, w)

				if len(got) != len(tt.wantErrors) {
					t.Fatalf("got errors %v, want %v", got, tt.wantErrors)
				}

				for i, want := range tt.wantErrors {
					if got[i] != want {
						t.Fatalf("error %d: got %q, want %q", i, got[i], want)
					}
				}
			}

			if tt.wantCookie && sessionCookie(t, w) == nil {
				t.Fatal("expected a session cookie on success")
			}

			if tt.wantStatusCode == http.StatusCreated {
				body := strings.ToLower(w.Body.String())

				if strings.Contains(body, "password") || strings.Contains(body, "hash") {
					t.Fatalf("signup response leaks the credential: %s", w.Body.String())
				}
			}
		})
	}
}

func TestSignUpDuplicateLeavesFirstUserIntact(t *testing.T) {
	users := newFakeUsers()
	sessions := session.NewMemoryStore(time.Hour)
	r := setupAuthRouter(users, sessions)

	w := doJSON(t, r, http.MethodPost, "/signup", `{"username":"Prabhdip","password":"secret123","bio":"first"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("first signup failed: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/signup", `{"username":"Prabhdip","password":"hijack","bio":"second"}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate signup: got %d, want 422", w.Code)
	}

	u, err := users.GetByUsername(context.Background(), "Prabhdip")

	if err != nil {
		t.Fatalf("first user vanished: %v", err)
	}

	if u.Bio != "first" || !u.Authenticate("secret123") {
		t.Fatal("first user was modified by the failed duplicate signup")
	}
}

func TestLogin(t *testing.T) {
	seedUser := func(f *fakeUsers) user.User {
		u, err := user.New("Prabhdip", "", "")
		if err != nil {
			panic(err)
		}
		if err := u.SetPassword("secret123"); err != nil {
			panic(err)
		}
		created, _ := f.Create(context.Background(), u)
		return created
	}

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantCookie     bool
	}{
		{
			name:           "success",
			body:           `{"username":"Prabhdip","password":"secret123"}`,
			wantStatusCode: http.StatusOK,
			wantCookie:     true,
		},
		{
			name:           "wrong_password",
			body:           `{"username":"Prabhdip","password":"wrong"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "unknown_username",
			body:           `{"username":"nobody","password":"secret123"}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "missing_fields",
			body:           `{}`,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newFakeUsers()
			sessions := session.NewMemoryStore(time.Hour)
			seeded := seedUser(users)

			r := setupAuthRouter(users, sessions)

			w := doJSON(t, r, http.MethodPost, "/login", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCookie {
				c := sessionCookie(t, w)

				if c == nil {
					t.Fatal("expected a session cookie")
				}

				var view user.View

				if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
					t.Fatalf("decode login body: %v", err)
				}

				if view.ID != seeded.ID || view.Username != "Prabhdip" {
					t.Fatalf("unexpected user view: %+v", view)
				}
			}
		})
	}
}

func TestCheckSession(t *testing.T) {
	users := newFakeUsers()
	sessions := session.NewMemoryStore(time.Hour)
	r := setupAuthRouter(users, sessions)

	// anonymous
	w := doJSON(t, r, http.MethodGet, "/check_session", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous check_session: got %d, want 401", w.Code)
	}

	// sign up, then check with the issued cookie
	w = doJSON(t, r, http.MethodPost, "/signup", `{"username":"Prabhdip","password":"secret123"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}

	var created user.View

	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode signup body: %v", err)
	}

	cookie := sessionCookie(t, w)

	if cookie == nil {
		t.Fatal("signup issued no cookie")
	}

	w = doJSON(t, r, http.MethodGet, "/check_session", "", cookie)

	if w.Code != http.StatusOK {
		t.Fatalf("check_session: got %d, body=%s", w.Code, w.Body.String())
	}

	var current user.View

	if err := json.Unmarshal(w.Body.Bytes(), &current); err != nil {
		t.Fatalf("decode check_session body: %v", err)
	}

	if current.ID != created.ID {
		t.Fatalf("session resolves to %q, want %q", current.ID, created.ID)
	}

	// a session pointing at a deleted user is no session at all
	users.remove(created.ID)

	w = doJSON(t, r, http.MethodGet, "/check_session", "", cookie)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("check_session for deleted user: got %d, want 401", w.Code)
	}
}

func TestLogoutTwice(t *testing.T) {
	users := newFakeUsers()
	sessions := session.NewMemoryStore(time.Hour)
	r := setupAuthRouter(users, sessions)

	w := doJSON(t, r, http.MethodPost, "/signup", `{"username":"Prabhdip","password":"secret123"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d %s", w.Code, w.Body.String())
	}

	cookie := sessionCookie(t, w)

	if cookie == nil {
		t.Fatal("signup issued no cookie")
	}

	w = doJSON(t, r, http.MethodDelete, "/logout", "", cookie)

	if w.Code != http.StatusNoContent {
		t.Fatalf("first logout: got %d, want 204, body=%s", w.Code, w.Body.String())
	}

	if w.Body.Len() != 0 {
		t.Fatalf("logout body should be empty, got %s", w.Body.String())
	}

	// logging out is not idempotent: the session is gone, so is the access
	w = doJSON(t, r, http.MethodDelete, "/logout", "", cookie)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("second logout: got %d, want 401", w.Code)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	users := newFakeUsers()
	sessions := session.NewMemoryStore(time.Hour)
	r := setupAuthRouter(users, sessions)

	w := doJSON(t, r, http.MethodDelete, "/logout", "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", w.Code)
	}
}
