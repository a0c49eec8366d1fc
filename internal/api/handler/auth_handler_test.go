package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/datamind/datamind-api/internal/api/middleware"
	"github.com/datamind/datamind-api/internal/core/domain"
	"github.com/datamind/datamind-api/internal/core/ports"
)

type stubBroker struct {
	signupFn func(ctx context.Context, email, password string) (*domain.User, error)
	loginFn  func(ctx context.Context, email, password string) (*ports.IssuedToken, error)
	setDBFn  func(ctx context.Context, token string, desc ports.DatabaseDescriptor) error
	logoutFn func(ctx context.Context, token string) error
}

func (s *stubBroker) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	return s.signupFn(ctx, email, password)
}

func (s *stubBroker) Login(ctx context.Context, email, password string) (*ports.IssuedToken, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubBroker) Resolve(context.Context, string) (*domain.SanitizedContext, error) {
	return nil, domain.ErrSessionRevoked
}

func (s *stubBroker) Touch(context.Context, string) error { return nil }

func (s *stubBroker) SetActiveDatabase(ctx context.Context, token string, desc ports.DatabaseDescriptor) error {
	return s.setDBFn(ctx, token, desc)
}

func (s *stubBroker) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withSession(c echo.Context, token string) {
	c.Set(middleware.ContextKeyToken, token)
	c.Set(middleware.ContextKeySession, &domain.SanitizedContext{
		UserID: "user_1",
		Email:  "alice@example.com",
	})
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	stub := &stubBroker{
		signupFn: func(_ context.Context, email, password string) (*domain.User, error) {
			if email != "alice@example.com" || password != "Secret123!" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.User{ID: "user_1", Email: email}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signup", `{"email":"alice@example.com","password":"Secret123!"}`)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["user_id"] != "user_1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Signup_Duplicate(t *testing.T) {
	stub := &stubBroker{
		signupFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/signup", `{"email":"bob@example.com","password":"Secret123!"}`)
	if err := h.Signup(c); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists passed through, got %v", err)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	stub := &stubBroker{
		signupFn: func(context.Context, string, string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	cases := []string{
		`{"email":"not-an-email","password":"Secret123!"}`,
		`{"email":"alice@example.com","password":"short"}`,
		`not-json`,
	}
	for _, body := range cases {
		c, _ := newTestContext(t, http.MethodPost, "/auth/signup", body)
		err := h.Signup(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 HTTPError, got %v", body, err)
		}
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	expiry := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	stub := &stubBroker{
		loginFn: func(_ context.Context, email, password string) (*ports.IssuedToken, error) {
			return &ports.IssuedToken{AccessToken: "token123", TokenType: "bearer", ExpiresAt: expiry}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Secret123!"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "token123" || resp["token_type"] != "bearer" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubBroker{
		loginFn: func(context.Context, string, string) (*ports.IssuedToken, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"bad-pass"}`)
	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials passed through, got %v", err)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubBroker{})

	c, rec := newTestContext(t, http.MethodGet, "/auth/session/me", "")
	withSession(c, "tok")
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "alice@example.com") {
		t.Fatalf("expected email in response, got %s", body)
	}
	if strings.Contains(body, "password") {
		t.Fatalf("sanitized context leaked a password field: %s", body)
	}
}

func TestAuthHandler_Me_WithoutMiddleware(t *testing.T) {
	h := NewAuthHandler(&stubBroker{})

	c, _ := newTestContext(t, http.MethodGet, "/auth/session/me", "")
	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var revoked string
	stub := &stubBroker{
		logoutFn: func(_ context.Context, token string) error {
			revoked = token
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/auth/logout", "")
	withSession(c, "tok")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if revoked != "tok" {
		t.Fatalf("broker not called with bearer token: %q", revoked)
	}
}

func TestAuthHandler_SetDatabase(t *testing.T) {
	var got ports.DatabaseDescriptor
	stub := &stubBroker{
		setDBFn: func(_ context.Context, token string, desc ports.DatabaseDescriptor) error {
			got = desc
			return nil
		},
	}
	h := NewAuthHandler(stub)

	body := `{"dialect":"postgres","host":"localhost","port":5432,"database":"db","username":"u","password":"p@ss"}`
	c, rec := newTestContext(t, http.MethodPost, "/auth/session/set-db", body)
	withSession(c, "tok")
	if err := h.SetDatabase(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Host != "localhost" || got.Port != 5432 || got.Password != "p@ss" {
		t.Fatalf("unexpected descriptor: %+v", got)
	}
}

func TestAuthHandler_SetDatabase_Validation(t *testing.T) {
	stub := &stubBroker{
		setDBFn: func(context.Context, string, ports.DatabaseDescriptor) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	h := NewAuthHandler(stub)

	cases := []string{
		`{"dialect":"oracle","host":"h","port":1,"database":"d","username":"u","password":"p"}`,
		`{"dialect":"postgres","host":"h","port":0,"database":"d","username":"u","password":"p"}`,
		`{"dialect":"postgres","host":"h","port":5432,"database":"d","username":"u"}`,
	}
	for _, body := range cases {
		c, _ := newTestContext(t, http.MethodPost, "/auth/session/set-db", body)
		withSession(c, "tok")
		err := h.SetDatabase(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 HTTPError, got %v", body, err)
		}
	}
}
