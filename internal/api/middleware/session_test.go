package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/datamind/datamind-api/internal/core/domain"
	"github.com/datamind/datamind-api/internal/core/ports"
)

type stubBroker struct {
	resolveFn func(ctx context.Context, token string) (*domain.SanitizedContext, error)
	touched   []string
}

func (s *stubBroker) Signup(context.Context, string, string) (*domain.User, error) { return nil, nil }
func (s *stubBroker) Login(context.Context, string, string) (*ports.IssuedToken, error) {
	return nil, nil
}

func (s *stubBroker) Resolve(ctx context.Context, token string) (*domain.SanitizedContext, error) {
	return s.resolveFn(ctx, token)
}

func (s *stubBroker) Touch(_ context.Context, token string) error {
	s.touched = append(s.touched, token)
	return nil
}

func (s *stubBroker) SetActiveDatabase(context.Context, string, ports.DatabaseDescriptor) error {
	return nil
}
func (s *stubBroker) Logout(context.Context, string) error { return nil }

func TestSessionMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	broker := &stubBroker{
		resolveFn: func(_ context.Context, token string) (*domain.SanitizedContext, error) {
			if token != "token123" {
				t.Fatalf("unexpected token: %s", token)
			}
			return &domain.SanitizedContext{UserID: "user_1", Email: "alice@example.com"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Session(broker)(func(c echo.Context) error {
		called = true
		if c.Get(ContextKeyToken) != "token123" {
			t.Fatalf("token not set")
		}
		session, ok := c.Get(ContextKeySession).(*domain.SanitizedContext)
		if !ok || session.Email != "alice@example.com" {
			t.Fatalf("session not set: %+v", c.Get(ContextKeySession))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if len(broker.touched) != 1 || broker.touched[0] != "token123" {
		t.Fatalf("expected session touch, got %v", broker.touched)
	}
}

func TestSessionMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	broker := &stubBroker{
		resolveFn: func(context.Context, string) (*domain.SanitizedContext, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Session(broker)(func(echo.Context) error { return nil })(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestSessionMiddleware_MalformedHeader(t *testing.T) {
	e := echo.New()
	broker := &stubBroker{}

	for _, header := range []string{"token123", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := Session(broker)(func(echo.Context) error { return nil })(c)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 HTTPError, got %v", header, err)
		}
	}
}

func TestSessionMiddleware_ResolveFailurePassedThrough(t *testing.T) {
	e := echo.New()
	broker := &stubBroker{
		resolveFn: func(context.Context, string) (*domain.SanitizedContext, error) {
			return nil, domain.ErrSessionRevoked
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer revoked-token")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Session(broker)(func(echo.Context) error {
		t.Fatalf("next should not run")
		return nil
	})(c)
	if err != domain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked passed through, got %v", err)
	}
	if len(broker.touched) != 0 {
		t.Fatalf("revoked session must not be touched")
	}
}
