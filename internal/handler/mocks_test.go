package handler

import (
	"context"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockPermissionService struct {
	mock.Mock
}

func (m *mockPermissionService) CanPerform(ctx context.Context, role, pageName, action string) (bool, error) {
	args := m.Called(ctx, role, pageName, action)
	return args.Bool(0), args.Error(1)
}

func (m *mockPermissionService) UpsertPageActionPermission(ctx context.Context, req *service.UpsertActionRequest, changedBy string) error {
	return m.Called(ctx, req, changedBy).Error(0)
}

func (m *mockPermissionService) BulkUpdateActionPermissions(ctx context.Context, req *service.BulkActionRequest, changedBy string) error {
	return m.Called(ctx, req, changedBy).Error(0)
}

func (m *mockPermissionService) SetPagePermission(ctx context.Context, req *service.PagePermissionRequest, changedBy string) error {
	return m.Called(ctx, req, changedBy).Error(0)
}

func (m *mockPermissionService) PageActionPermissions(ctx context.Context, pageName, role string) (map[string]bool, error) {
	args := m.Called(ctx, pageName, role)
	out, _ := args.Get(0).(map[string]bool)
	return out, args.Error(1)
}

func (m *mockPermissionService) RoleActionPermissions(ctx context.Context, role string) (map[string]map[string]bool, error) {
	args := m.Called(ctx, role)
	out, _ := args.Get(0).(map[string]map[string]bool)
	return out, args.Error(1)
}

func (m *mockPermissionService) Snapshot(ctx context.Context, pageName, role string) (service.PermissionSnapshot, error) {
	args := m.Called(ctx, pageName, role)
	out, _ := args.Get(0).(service.PermissionSnapshot)
	return out, args.Error(1)
}

func (m *mockPermissionService) PagePermissions(ctx context.Context, role string) ([]repository.PagePermissionRow, error) {
	args := m.Called(ctx, role)
	out, _ := args.Get(0).([]repository.PagePermissionRow)
	return out, args.Error(1)
}

func (m *mockPermissionService) ListPages(ctx context.Context) ([]model.Page, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]model.Page)
	return out, args.Error(1)
}

func (m *mockPermissionService) AvailableActions() []string {
	return m.Called().Get(0).([]string)
}

type mockMenuService struct {
	mock.Mock
}

func (m *mockMenuService) EffectiveMenuOrder(ctx context.Context, userID uuid.UUID, role string) (*service.MenuView, error) {
	args := m.Called(ctx, userID, role)
	view, _ := args.Get(0).(*service.MenuView)
	return view, args.Error(1)
}

func (m *mockMenuService) SavePersonalOrder(ctx context.Context, userID uuid.UUID, req *service.SaveMenuOrderRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

func (m *mockMenuService) ResetToDefault(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

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

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) CreateUser(ctx context.Context, req *service.CreateUserRequest, creatorID string) (*model.User, error) {
	args := m.Called(ctx, req, creatorID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserService) UpdateUser(ctx context.Context, userID uuid.UUID, req *service.UpdateUserRequest, updaterID string) (*model.User, error) {
	args := m.Called(ctx, userID, req, updaterID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserService) DeleteUser(ctx context.Context, userID uuid.UUID, deleterID string) error {
	return m.Called(ctx, userID, deleterID).Error(0)
}

func (m *mockUserService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *mockUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}
