package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/internal/ws"
	"tarl-insight-hub/pkg/config"
	"tarl-insight-hub/pkg/logger"
	"tarl-insight-hub/pkg/metrics"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier receives change events after successful writes
type Notifier interface {
	Publish(evt ws.Event)
}

type noopNotifier struct{}

func (noopNotifier) Publish(ws.Event) {}

// PermissionSnapshot groups action grants by page name, then role, then action
type PermissionSnapshot map[string]map[model.Role]map[string]bool

type PermissionService interface {
	// CanPerform is the single effective answer for a role, page and action.
	// Unknown roles, pages or actions yield false without an error.
	CanPerform(ctx context.Context, role, pageName, action string) (bool, error)
	UpsertPageActionPermission(ctx context.Context, req *UpsertActionRequest, changedBy string) error
	BulkUpdateActionPermissions(ctx context.Context, req *BulkActionRequest, changedBy string) error
	SetPagePermission(ctx context.Context, req *PagePermissionRequest, changedBy string) error
	PageActionPermissions(ctx context.Context, pageName, role string) (map[string]bool, error)
	RoleActionPermissions(ctx context.Context, role string) (map[string]map[string]bool, error)
	Snapshot(ctx context.Context, pageName, role string) (PermissionSnapshot, error)
	PagePermissions(ctx context.Context, role string) ([]repository.PagePermissionRow, error)
	ListPages(ctx context.Context) ([]model.Page, error)
	AvailableActions() []string
}

type UpsertActionRequest struct {
	PageID     uint   `json:"pageId" validate:"required,gt=0"`
	Role       string `json:"role" validate:"required,role"`
	ActionName string `json:"actionName" validate:"required,action_name"`
	IsAllowed  *bool  `json:"isAllowed" validate:"required"`
}

type BulkActionRequest struct {
	PageID  uint            `json:"pageId" validate:"required,gt=0"`
	Role    string          `json:"role" validate:"required,role"`
	Actions map[string]bool `json:"actions" validate:"required,min=1"`
}

type PagePermissionRequest struct {
	PageID    uint   `json:"pageId" validate:"required,gt=0"`
	Role      string `json:"role" validate:"required,role"`
	IsAllowed *bool  `json:"isAllowed" validate:"required"`
}

// PermissionOptions configures the resolver. Zero values fall back to the
// built-in action vocabulary, the allow policy and no-op side channels.
type PermissionOptions struct {
	MissingAction config.MissingActionPolicy
	Actions       *model.ActionSet
	Notifier      Notifier
	Metrics       *metrics.Metrics
	Logger        logrus.FieldLogger
}

type permissionService struct {
	pageRepo      repository.PageRepository
	permRepo      repository.PermissionRepository
	missingAction config.MissingActionPolicy
	actions       *model.ActionSet
	notifier      Notifier
	metrics       *metrics.Metrics
	log           logrus.FieldLogger
}

func NewPermissionService(pageRepo repository.PageRepository, permRepo repository.PermissionRepository, opts PermissionOptions) PermissionService {
	s := &permissionService{
		pageRepo:      pageRepo,
		permRepo:      permRepo,
		missingAction: opts.MissingAction,
		actions:       opts.Actions,
		notifier:      opts.Notifier,
		metrics:       opts.Metrics,
		log:           opts.Logger,
	}
	if s.missingAction == "" {
		s.missingAction = config.MissingActionAllow
	}
	if s.actions == nil {
		s.actions = model.NewActionSet()
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

func (s *permissionService) CanPerform(ctx context.Context, rawRole, pageName, action string) (allowed bool, err error) {
	defer func() { s.metrics.ObserveCheck(allowed, err) }()

	role, perr := model.ParseRole(rawRole)
	pageName = strings.TrimSpace(pageName)
	action = strings.ToLower(strings.TrimSpace(action))
	if perr != nil || pageName == "" || !s.actions.Contains(action) {
		return false, nil
	}

	// 1. Page-level grant gates everything below it
	grant, err := s.permRepo.FindPageGrant(ctx, role, pageName)
	if err != nil {
		return false, internalError("load page grant", err)
	}
	if grant == nil || grant.IsAllowed == nil || !*grant.IsAllowed {
		return false, nil
	}

	// 2. Action-level row refines the grant
	actionAllowed, err := s.permRepo.FindActionGrant(ctx, grant.PageID, role, action)
	if err != nil {
		return false, internalError("load action grant", err)
	}
	if actionAllowed != nil {
		return *actionAllowed, nil
	}

	// 3. No row for this action
	return s.missingAction == config.MissingActionAllow, nil
}

func (s *permissionService) UpsertPageActionPermission(ctx context.Context, req *UpsertActionRequest, changedBy string) error {
	if err := validate(req); err != nil {
		return err
	}
	role, _ := model.ParseRole(req.Role)
	action := strings.ToLower(req.ActionName)
	if !s.actions.Contains(action) {
		return newValidationError("actionName", "unknown action "+action)
	}
	if err := s.requirePage(ctx, req.PageID); err != nil {
		return err
	}

	row := &model.PageActionPermission{
		PageID:     req.PageID,
		Role:       role,
		ActionName: action,
		IsAllowed:  *req.IsAllowed,
		ChangedBy:  changedBy,
	}
	err := s.permRepo.UpsertActionPermission(ctx, row)
	s.metrics.ObserveWrite("action", err)
	if err != nil {
		return internalError("upsert action permission", err)
	}

	s.log.WithFields(logrus.Fields{
		"page_id":    row.PageID,
		"role":       row.Role,
		"action":     row.ActionName,
		"is_allowed": row.IsAllowed,
		"changed_by": changedBy,
	}).Info("action permission updated")
	s.notifier.Publish(ws.Event{
		Type:      ws.EventPermissionsUpdated,
		Role:      role.String(),
		PageID:    row.PageID,
		Actions:   []string{action},
		ChangedBy: changedBy,
	})
	return nil
}

// BulkUpdateActionPermissions validates every entry before writing any, then
// applies them in a single transaction.
func (s *permissionService) BulkUpdateActionPermissions(ctx context.Context, req *BulkActionRequest, changedBy string) error {
	if err := validate(req); err != nil {
		return err
	}
	role, _ := model.ParseRole(req.Role)

	names := make([]string, 0, len(req.Actions))
	normalized := make(map[string]bool, len(req.Actions))
	for name, allowed := range req.Actions {
		key := strings.ToLower(strings.TrimSpace(name))
		if !s.actions.Contains(key) {
			return newValidationError("actions."+name, "unknown action")
		}
		if _, dup := normalized[key]; dup {
			return newValidationError("actions."+name, "duplicate action")
		}
		normalized[key] = allowed
		names = append(names, key)
	}
	sort.Strings(names)

	if err := s.requirePage(ctx, req.PageID); err != nil {
		return err
	}

	rows := make([]model.PageActionPermission, len(names))
	for i, name := range names {
		rows[i] = model.PageActionPermission{
			PageID:     req.PageID,
			Role:       role,
			ActionName: name,
			IsAllowed:  normalized[name],
			ChangedBy:  changedBy,
		}
	}
	err := s.permRepo.BulkUpsertActionPermissions(ctx, rows)
	s.metrics.ObserveWrite("bulk_action", err)
	if err != nil {
		return internalError("bulk upsert action permissions", err)
	}

	s.log.WithFields(logrus.Fields{
		"page_id":    req.PageID,
		"role":       role,
		"actions":    len(rows),
		"changed_by": changedBy,
	}).Info("action permissions updated")
	s.notifier.Publish(ws.Event{
		Type:      ws.EventPermissionsUpdated,
		Role:      role.String(),
		PageID:    req.PageID,
		Actions:   names,
		ChangedBy: changedBy,
	})
	return nil
}

func (s *permissionService) SetPagePermission(ctx context.Context, req *PagePermissionRequest, changedBy string) error {
	if err := validate(req); err != nil {
		return err
	}
	role, _ := model.ParseRole(req.Role)
	if err := s.requirePage(ctx, req.PageID); err != nil {
		return err
	}

	err := s.permRepo.UpsertPagePermission(ctx, &model.RolePagePermission{
		Role:      role,
		PageID:    req.PageID,
		IsAllowed: *req.IsAllowed,
	})
	s.metrics.ObserveWrite("page", err)
	if err != nil {
		return internalError("upsert page permission", err)
	}

	s.log.WithFields(logrus.Fields{
		"page_id":    req.PageID,
		"role":       role,
		"is_allowed": *req.IsAllowed,
		"changed_by": changedBy,
	}).Info("page permission updated")
	s.notifier.Publish(ws.Event{
		Type:      ws.EventPagePermissionUpdated,
		Role:      role.String(),
		PageID:    req.PageID,
		ChangedBy: changedBy,
	})
	return nil
}

// PageActionPermissions returns the action rows one role holds on one page
func (s *permissionService) PageActionPermissions(ctx context.Context, pageName, rawRole string) (map[string]bool, error) {
	role, err := model.ParseRole(rawRole)
	if err != nil {
		return nil, newValidationError("role", err.Error())
	}
	if _, err := s.pageRepo.FindByName(ctx, pageName); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("page %q", pageName)
		}
		return nil, internalError("load page", err)
	}

	rows, err := s.permRepo.FindActionPermissions(ctx, repository.ActionFilter{PageName: pageName, Role: role})
	if err != nil {
		return nil, internalError("load action permissions", err)
	}
	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.ActionName] = r.IsAllowed
	}
	return out, nil
}

// RoleActionPermissions returns every action row of a role grouped by page name
func (s *permissionService) RoleActionPermissions(ctx context.Context, rawRole string) (map[string]map[string]bool, error) {
	role, err := model.ParseRole(rawRole)
	if err != nil {
		return nil, newValidationError("role", err.Error())
	}
	rows, err := s.permRepo.FindActionPermissions(ctx, repository.ActionFilter{Role: role})
	if err != nil {
		return nil, internalError("load action permissions", err)
	}
	out := make(map[string]map[string]bool)
	for _, r := range rows {
		if out[r.PageName] == nil {
			out[r.PageName] = make(map[string]bool)
		}
		out[r.PageName][r.ActionName] = r.IsAllowed
	}
	return out, nil
}

func (s *permissionService) Snapshot(ctx context.Context, pageName, rawRole string) (PermissionSnapshot, error) {
	filter := repository.ActionFilter{PageName: strings.TrimSpace(pageName)}
	if strings.TrimSpace(rawRole) != "" {
		role, err := model.ParseRole(rawRole)
		if err != nil {
			return nil, newValidationError("role", err.Error())
		}
		filter.Role = role
	}

	rows, err := s.permRepo.FindActionPermissions(ctx, filter)
	if err != nil {
		return nil, internalError("load action permissions", err)
	}
	return groupSnapshot(rows), nil
}

func groupSnapshot(rows []repository.ActionPermissionRow) PermissionSnapshot {
	out := make(PermissionSnapshot)
	for _, r := range rows {
		byRole, ok := out[r.PageName]
		if !ok {
			byRole = make(map[model.Role]map[string]bool)
			out[r.PageName] = byRole
		}
		if byRole[r.Role] == nil {
			byRole[r.Role] = make(map[string]bool)
		}
		byRole[r.Role][r.ActionName] = r.IsAllowed
	}
	return out
}

func (s *permissionService) PagePermissions(ctx context.Context, rawRole string) ([]repository.PagePermissionRow, error) {
	var role model.Role
	if strings.TrimSpace(rawRole) != "" {
		parsed, err := model.ParseRole(rawRole)
		if err != nil {
			return nil, newValidationError("role", err.Error())
		}
		role = parsed
	}
	rows, err := s.permRepo.FindPagePermissions(ctx, role)
	if err != nil {
		return nil, internalError("load page permissions", err)
	}
	return rows, nil
}

func (s *permissionService) ListPages(ctx context.Context) ([]model.Page, error) {
	pages, err := s.pageRepo.FindAll(ctx)
	if err != nil {
		return nil, internalError("load pages", err)
	}
	return pages, nil
}

func (s *permissionService) AvailableActions() []string {
	return s.actions.Names()
}

func (s *permissionService) requirePage(ctx context.Context, pageID uint) error {
	if _, err := s.pageRepo.FindByID(ctx, pageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("page %d", pageID)
		}
		return internalError("load page", err)
	}
	return nil
}
