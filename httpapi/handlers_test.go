package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/authkit/authn"
	"github.com/kbukum/authkit/config"
	"github.com/kbukum/authkit/identity"
	"github.com/kbukum/authkit/password"
	"github.com/kbukum/authkit/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	store  *identity.MemoryStore
	tokens *token.Service
	cfg    config.HTTPConfig
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := identity.NewMemoryStore()
	hasher, err := password.NewHasher(password.Config{
		Argon2Time: 1, Argon2Memory: 8 * 1024, Argon2Threads: 1, BcryptCost: 4,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	tokens, err := token.NewService(token.Config{
		Secret:          "test-signing-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("token.NewService failed: %v", err)
	}

	cfg := config.HTTPConfig{}
	cfg.ApplyDefaults()

	auth := authn.NewService(store, hasher, tokens)
	return &testAPI{
		router: NewRouter(cfg, auth, tokens),
		store:  store,
		tokens: tokens,
		cfg:    cfg,
	}
}

func (ta *testAPI) do(t *testing.T, method, path string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}

	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func (ta *testAPI) register(t *testing.T, email, pass string) {
	t.Helper()
	w := ta.do(t, http.MethodPost, "/auth/register", gin.H{
		"email": email, "password": pass, "confirm_password": pass,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
}

func (ta *testAPI) login(t *testing.T, email, pass string) (accessToken string, refreshCookie *http.Cookie) {
	t.Helper()
	w := ta.do(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": pass})
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == ta.cfg.RefreshCookieName {
			refreshCookie = ck
		}
	}
	return resp.AccessToken, refreshCookie
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp.Error.Code
}

func TestRegisterEndpoint(t *testing.T) {
	ta := newTestAPI(t)

	w := ta.do(t, http.MethodPost, "/auth/register", gin.H{
		"email": "a@b.com", "password": "Abcdef1!", "confirm_password": "Abcdef1!",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var user map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user["email"] != "a@b.com" {
		t.Errorf("expected email a@b.com, got %v", user["email"])
	}
	if strings.Contains(strings.ToLower(w.Body.String()), "hash") {
		t.Error("response must not expose the password hash")
	}

	t.Run("duplicate is a conflict", func(t *testing.T) {
		w := ta.do(t, http.MethodPost, "/auth/register", gin.H{
			"email": "a@b.com", "password": "Abcdef1!", "confirm_password": "Abcdef1!",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "ALREADY_EXISTS" {
			t.Errorf("expected ALREADY_EXISTS, got %s", code)
		}
	})

	t.Run("weak password is rejected", func(t *testing.T) {
		w := ta.do(t, http.MethodPost, "/auth/register", gin.H{
			"email": "c@b.com", "password": "abcdef1!", "confirm_password": "abcdef1!",
		})
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "WEAK_PASSWORD" {
			t.Errorf("expected WEAK_PASSWORD, got %s", code)
		}
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
		w := httptest.NewRecorder()
		ta.router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})
}

func TestLoginEndpoint(t *testing.T) {
	ta := newTestAPI(t)
	ta.register(t, "a@b.com", "Abcdef1!")

	access, cookie := ta.login(t, "a@b.com", "Abcdef1!")
	if access == "" {
		t.Error("expected access token in body")
	}
	if cookie == nil {
		t.Fatal("expected refresh cookie")
	}
	if !cookie.HttpOnly {
		t.Error("refresh cookie must be HttpOnly")
	}
	if cookie.Path != "/auth/refresh" {
		t.Errorf("refresh cookie path = %q, want /auth/refresh", cookie.Path)
	}
	if cookie.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Errorf("refresh cookie MaxAge = %d, want refresh TTL", cookie.MaxAge)
	}

	t.Run("wrong password", func(t *testing.T) {
		w := ta.do(t, http.MethodPost, "/auth/login", gin.H{
			"email": "a@b.com", "password": "Wrong1!pass",
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_CREDENTIALS" {
			t.Errorf("expected INVALID_CREDENTIALS, got %s", code)
		}
	})

	t.Run("unknown email matches wrong password", func(t *testing.T) {
		w := ta.do(t, http.MethodPost, "/auth/login", gin.H{
			"email": "ghost@b.com", "password": "Abcdef1!",
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_CREDENTIALS" {
			t.Errorf("expected INVALID_CREDENTIALS, got %s", code)
		}
	})
}

func TestRefreshEndpoint(t *testing.T) {
	ta := newTestAPI(t)
	ta.register(t, "a@b.com", "Abcdef1!")
	_, cookie := ta.login(t, "a@b.com", "Abcdef1!")

	w := ta.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
		r.AddCookie(cookie)
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode refresh response: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("expected a fresh access token")
	}

	t.Run("missing cookie", func(t *testing.T) {
		w := ta.do(t, http.MethodPost, "/auth/refresh", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_REFRESH_TOKEN" {
			t.Errorf("expected INVALID_REFRESH_TOKEN, got %s", code)
		}
	})

	t.Run("garbage cookie", func(t *testing.T) {
		w := ta.do(t, http.MethodPost, "/auth/refresh", nil, func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: ta.cfg.RefreshCookieName, Value: "garbage"})
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestMeEndpoint(t *testing.T) {
	ta := newTestAPI(t)
	ta.register(t, "a@b.com", "Abcdef1!")
	access, _ := ta.login(t, "a@b.com", "Abcdef1!")

	w := ta.do(t, http.MethodGet, "/auth/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var user map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user["email"] != "a@b.com" {
		t.Errorf("expected a@b.com, got %v", user["email"])
	}

	t.Run("no header", func(t *testing.T) {
		w := ta.do(t, http.MethodGet, "/auth/me", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		w := ta.do(t, http.MethodGet, "/auth/me", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Basic abc")
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		w := ta.do(t, http.MethodGet, "/auth/me", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer garbage")
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "TOKEN_MALFORMED" {
			t.Errorf("expected TOKEN_MALFORMED, got %s", code)
		}
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := ta.tokens.IssueRefreshToken("00000000-0000-0000-0000-000000000001")
		if err != nil {
			t.Fatalf("IssueRefreshToken failed: %v", err)
		}
		w := ta.do(t, http.MethodGet, "/auth/me", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+refresh)
		})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestLogoutEndpoint(t *testing.T) {
	ta := newTestAPI(t)
	ta.register(t, "a@b.com", "Abcdef1!")
	access, _ := ta.login(t, "a@b.com", "Abcdef1!")

	w := ta.do(t, http.MethodPost, "/auth/logout", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+access)
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}

	var cleared *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == ta.cfg.RefreshCookieName {
			cleared = ck
		}
	}
	if cleared == nil {
		t.Fatal("logout should clear the refresh cookie")
	}
	if cleared.MaxAge >= 0 {
		t.Errorf("cleared cookie MaxAge = %d, want negative", cleared.MaxAge)
	}
}

func TestRequirePermission(t *testing.T) {
	ta := newTestAPI(t)

	adminPerm := identity.Permission{Name: "users:manage", Value: "users:manage"}
	ctx := context.Background()
	if _, err := ta.store.Save(ctx, &identity.User{
		Email:        "admin@b.com",
		PasswordHash: mustHash(t, "Abcdef1!"),
		Permissions:  []identity.Permission{adminPerm},
	}); err != nil {
		t.Fatalf("Save admin: %v", err)
	}
	if _, err := ta.store.Save(ctx, &identity.User{
		Email:        "plain@b.com",
		PasswordHash: mustHash(t, "Abcdef1!"),
	}); err != nil {
		t.Fatalf("Save plain user: %v", err)
	}

	// A protected route mounted the way a consuming service would.
	api := New(ta.cfg, authn.NewService(ta.store, mustHasher(t), ta.tokens), ta.tokens)
	router := gin.New()
	api.Register(router)
	admin := router.Group("/admin")
	admin.Use(api.RequireAuth(), api.RequirePermission("users:manage"))
	admin.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })
	ta.router = router

	adminAccess, _ := ta.login(t, "admin@b.com", "Abcdef1!")
	plainAccess, _ := ta.login(t, "plain@b.com", "Abcdef1!")

	t.Run("granted", func(t *testing.T) {
		w := ta.do(t, http.MethodGet, "/admin/users", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+adminAccess)
		})
		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("denied", func(t *testing.T) {
		w := ta.do(t, http.MethodGet, "/admin/users", nil, func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+plainAccess)
		})
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d: %s", w.Code, w.Body.String())
		}
		if code := errorCode(t, w); code != "FORBIDDEN" {
			t.Errorf("expected FORBIDDEN, got %s", code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := ta.do(t, http.MethodGet, "/admin/users", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func mustHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.NewHasher(password.Config{
		Argon2Time: 1, Argon2Memory: 8 * 1024, Argon2Threads: 1, BcryptCost: 4,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	hash, err := mustHasher(t).Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}
