package repository

import (
	"context"
	"fmt"

	"tarl-insight-hub/internal/model"

	"gorm.io/gorm"
)

// PageGrant is the page-level grant for one role. IsAllowed is nil when no
// role_page_permissions row exists.
type PageGrant struct {
	PageID    uint
	IsAllowed *bool
}

// ActionFilter narrows FindActionPermissions. Zero fields match everything.
type ActionFilter struct {
	PageName string
	Role     model.Role
}

// ActionPermissionRow is a page_action_permissions row joined with its page
type ActionPermissionRow struct {
	PageID     uint
	PageName   string
	Role       model.Role
	ActionName string
	IsAllowed  bool
}

// PagePermissionRow is a role_page_permissions row joined with its page
type PagePermissionRow struct {
	PageID    uint
	PageName  string
	PagePath  string
	Role      model.Role
	IsAllowed bool
}

type PermissionRepository interface {
	FindPageGrant(ctx context.Context, role model.Role, pageName string) (*PageGrant, error)
	FindActionGrant(ctx context.Context, pageID uint, role model.Role, action string) (*bool, error)
	FindActionPermissions(ctx context.Context, filter ActionFilter) ([]ActionPermissionRow, error)
	FindPagePermissions(ctx context.Context, role model.Role) ([]PagePermissionRow, error)
	UpsertActionPermission(ctx context.Context, p *model.PageActionPermission) error
	BulkUpsertActionPermissions(ctx context.Context, ps []model.PageActionPermission) error
	UpsertPagePermission(ctx context.Context, p *model.RolePagePermission) error
	SeedDefaultGrants(ctx context.Context) error
}

type permissionRepo struct {
	db *gorm.DB
}

func NewPermissionRepo(db *gorm.DB) PermissionRepository {
	return &permissionRepo{db: db}
}

const (
	upsertActionSQL = `INSERT INTO page_action_permissions (page_id, role, action_name, is_allowed, changed_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, NOW(), NOW())
ON CONFLICT (page_id, role, action_name)
DO UPDATE SET is_allowed = EXCLUDED.is_allowed, changed_by = EXCLUDED.changed_by, updated_at = NOW()`

	upsertPageSQL = `INSERT INTO role_page_permissions (role, page_id, is_allowed, created_at, updated_at)
VALUES (?, ?, ?, NOW(), NOW())
ON CONFLICT (role, page_id)
DO UPDATE SET is_allowed = EXCLUDED.is_allowed, updated_at = NOW()`

	seedPageGrantSQL = `INSERT INTO role_page_permissions (role, page_id, is_allowed, created_at, updated_at)
SELECT ?, id, TRUE, NOW(), NOW() FROM pages WHERE page_name IN ?
ON CONFLICT (role, page_id) DO NOTHING`

	seedActionDenySQL = `INSERT INTO page_action_permissions (page_id, role, action_name, is_allowed, changed_by, created_at, updated_at)
SELECT rpp.page_id, rpp.role, ?, FALSE, 'system', NOW(), NOW()
FROM role_page_permissions rpp WHERE rpp.role = ? AND rpp.is_allowed = TRUE
ON CONFLICT (page_id, role, action_name) DO NOTHING`
)

func (r *permissionRepo) FindPageGrant(ctx context.Context, role model.Role, pageName string) (*PageGrant, error) {
	var grants []PageGrant
	err := r.db.WithContext(ctx).Raw(`SELECT p.id AS page_id, rpp.is_allowed AS is_allowed
FROM pages p
LEFT JOIN role_page_permissions rpp ON rpp.page_id = p.id AND rpp.role = ?
WHERE p.page_name = ?
ORDER BY p.id
LIMIT 1`, role, pageName).Scan(&grants).Error
	if err != nil {
		return nil, err
	}
	if len(grants) == 0 {
		return nil, nil
	}
	return &grants[0], nil
}

type actionGrantRow struct {
	IsAllowed bool
}

func (r *permissionRepo) FindActionGrant(ctx context.Context, pageID uint, role model.Role, action string) (*bool, error) {
	var rows []actionGrantRow
	err := r.db.WithContext(ctx).Raw(`SELECT is_allowed FROM page_action_permissions
WHERE page_id = ? AND role = ? AND action_name = ?
LIMIT 1`, pageID, role, action).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	allowed := rows[0].IsAllowed
	return &allowed, nil
}

func (r *permissionRepo) FindActionPermissions(ctx context.Context, filter ActionFilter) ([]ActionPermissionRow, error) {
	q := r.db.WithContext(ctx).
		Table("page_action_permissions AS pap").
		Select("pap.page_id, p.page_name, pap.role, pap.action_name, pap.is_allowed").
		Joins("JOIN pages p ON p.id = pap.page_id")
	if filter.PageName != "" {
		q = q.Where("p.page_name = ?", filter.PageName)
	}
	if filter.Role != "" {
		q = q.Where("pap.role = ?", filter.Role)
	}

	var rows []ActionPermissionRow
	err := q.Order("p.page_name, pap.role, pap.action_name").Scan(&rows).Error
	return rows, err
}

func (r *permissionRepo) FindPagePermissions(ctx context.Context, role model.Role) ([]PagePermissionRow, error) {
	q := r.db.WithContext(ctx).
		Table("role_page_permissions AS rpp").
		Select("rpp.page_id, p.page_name, p.page_path, rpp.role, rpp.is_allowed").
		Joins("JOIN pages p ON p.id = rpp.page_id")
	if role != "" {
		q = q.Where("rpp.role = ?", role)
	}

	var rows []PagePermissionRow
	err := q.Order("p.page_name, rpp.role").Scan(&rows).Error
	return rows, err
}

func (r *permissionRepo) UpsertActionPermission(ctx context.Context, p *model.PageActionPermission) error {
	return r.db.WithContext(ctx).Exec(upsertActionSQL, p.PageID, p.Role, p.ActionName, p.IsAllowed, p.ChangedBy).Error
}

// BulkUpsertActionPermissions writes every row in one transaction; the first
// failing row rolls back the whole batch.
func (r *permissionRepo) BulkUpsertActionPermissions(ctx context.Context, ps []model.PageActionPermission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range ps {
			if err := tx.Exec(upsertActionSQL, p.PageID, p.Role, p.ActionName, p.IsAllowed, p.ChangedBy).Error; err != nil {
				return fmt.Errorf("upsert %s/%s on page %d: %w", p.Role, p.ActionName, p.PageID, err)
			}
		}
		return nil
	})
}

func (r *permissionRepo) UpsertPagePermission(ctx context.Context, p *model.RolePagePermission) error {
	return r.db.WithContext(ctx).Exec(upsertPageSQL, p.Role, p.PageID, p.IsAllowed).Error
}

// restrictedActions are denied explicitly at seed time for roles that only
// read data
var restrictedActions = map[model.Role][]string{
	model.RoleCollector: {model.ActionDelete, model.ActionBulkUpdate},
	model.RoleViewer:    {model.ActionCreate, model.ActionUpdate, model.ActionDelete, model.ActionBulkUpdate},
}

// SeedDefaultGrants grants admin every page and each other role its default
// pages. Existing rows are never overwritten.
func (r *permissionRepo) SeedDefaultGrants(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`INSERT INTO role_page_permissions (role, page_id, is_allowed, created_at, updated_at)
SELECT ?, id, TRUE, NOW(), NOW() FROM pages
ON CONFLICT (role, page_id) DO NOTHING`, model.RoleAdmin).Error
		if err != nil {
			return err
		}
		for _, role := range model.AllRoles {
			pages, ok := model.DefaultPageGrants[role]
			if !ok {
				continue
			}
			if err := tx.Exec(seedPageGrantSQL, role, pages).Error; err != nil {
				return err
			}
			for _, action := range restrictedActions[role] {
				if err := tx.Exec(seedActionDenySQL, action, role).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
