package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/service"
	"tarl-insight-hub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*service.LoginResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	args := m.Called(ctx, token)
	identity, _ := args.Get(0).(*model.Identity)
	return identity, args.Error(1)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	return m.Called(ctx, email, newPassword).Error(0)
}

// checkOnly implements the resolver part RequirePageAction uses
type checkOnly struct {
	service.PermissionService
	allowed bool
	err     error
	calls   []string
}

func (c *checkOnly) CanPerform(_ context.Context, role, pageName, action string) (bool, error) {
	c.calls = append(c.calls, fmt.Sprintf("%s|%s|%s", role, pageName, action))
	return c.allowed, c.err
}

const cookieName = "tarl_session"

func newApp(auth service.AuthService, guards ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{RequireAuth(auth, cookieName, logger.Discard())}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		identity, _ := CurrentIdentity(c)
		return c.SendString(identity.Role.String())
	})
	app.Get("/", handlers...)
	return app
}

type authCall struct {
	token    string
	identity *model.Identity
	err      error
}

func TestRequireAuth(t *testing.T) {
	admin := &model.Identity{UserID: uuid.NewString(), Role: model.RoleAdmin}
	teacher := &model.Identity{UserID: uuid.NewString(), Role: model.RoleTeacher}
	replaced := fmt.Errorf("%w: %w", service.ErrUnauthorized, service.ErrSessionReplaced)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		calls      []authCall
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing token",
			setup:      func(r *http.Request) {},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Token abc") },
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "bearer header",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer header-token") },
			calls:      []authCall{{token: "header-token", identity: admin}},
			wantStatus: fiber.StatusOK,
			wantBody:   "admin",
		},
		{
			name: "cookie preferred over header",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})
				r.Header.Set("Authorization", "Bearer header-token")
			},
			calls:      []authCall{{token: "cookie-token", identity: admin}},
			wantStatus: fiber.StatusOK,
			wantBody:   "admin",
		},
		{
			name: "stale cookie falls back to header",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: cookieName, Value: "old-cookie"})
				r.Header.Set("Authorization", "Bearer header-token")
			},
			calls: []authCall{
				{token: "old-cookie", err: replaced},
				{token: "header-token", identity: teacher},
			},
			wantStatus: fiber.StatusOK,
			wantBody:   "teacher",
		},
		{
			name:       "stale cookie without header",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: cookieName, Value: "old-cookie"}) },
			calls:      []authCall{{token: "old-cookie", err: replaced}},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name: "storage failure on cookie does not retry",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: cookieName, Value: "cookie-token"})
				r.Header.Set("Authorization", "Bearer header-token")
			},
			calls:      []authCall{{token: "cookie-token", err: fmt.Errorf("load user: %w", service.ErrInternal)}},
			wantStatus: fiber.StatusInternalServerError,
		},
		{
			name:       "rejected session",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer stale") },
			calls:      []authCall{{token: "stale", err: replaced}},
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "storage failure",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer ok") },
			calls:      []authCall{{token: "ok", err: fmt.Errorf("load user: %w: %w", service.ErrInternal, errors.New("db down"))}},
			wantStatus: fiber.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{}
			for _, call := range tt.calls {
				auth.On("Authenticate", mock.Anything, call.token).Return(call.identity, call.err).Once()
			}
			app := newApp(auth)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
			auth.AssertExpectations(t)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		role       model.Role
		wantStatus int
	}{
		{model.RoleAdmin, fiber.StatusOK},
		{model.RoleTeacher, fiber.StatusForbidden},
		{model.RoleViewer, fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			auth := &mockAuthService{}
			auth.On("Authenticate", mock.Anything, "t").Return(&model.Identity{UserID: uuid.NewString(), Role: tt.role}, nil)
			app := newApp(auth, RequireAdmin())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer t")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRequirePageAction(t *testing.T) {
	tests := []struct {
		name       string
		allowed    bool
		err        error
		wantStatus int
	}{
		{name: "allowed", allowed: true, wantStatus: fiber.StatusOK},
		{name: "denied", allowed: false, wantStatus: fiber.StatusForbidden},
		{name: "resolver failure", err: service.ErrInternal, wantStatus: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{}
			auth.On("Authenticate", mock.Anything, "t").Return(&model.Identity{UserID: uuid.NewString(), Role: model.RoleTeacher}, nil)
			perms := &checkOnly{allowed: tt.allowed, err: tt.err}
			app := newApp(auth, RequirePageAction(perms, model.PagePagePermissions, model.ActionView, logger.Discard()))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer t")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, []string{"teacher|Page Permissions|view"}, perms.calls)
		})
	}
}
