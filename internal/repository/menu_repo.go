package repository

import (
	"context"

	"tarl-insight-hub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuCandidate is a page the role may see, with both the default and the
// user's personal position. Either position may be nil.
type MenuCandidate struct {
	PageID            uint
	PageName          string
	PagePath          string
	PageTitleEn       string
	PageTitleKm       string
	Icon              string
	DefaultSortOrder  *int
	PersonalSortOrder *int
}

type MenuRepository interface {
	FindPreference(ctx context.Context, userID uuid.UUID) (*model.UserMenuPreference, error)
	FindCandidates(ctx context.Context, userID uuid.UUID, role model.Role) ([]MenuCandidate, error)
	SavePersonalOrder(ctx context.Context, userID uuid.UUID, usePersonalOrder bool, orders []model.PageOrder) error
	Reset(ctx context.Context, userID uuid.UUID) error
}

type menuRepo struct {
	db *gorm.DB
}

func NewMenuRepo(db *gorm.DB) MenuRepository {
	return &menuRepo{db: db}
}

const upsertPreferenceSQL = `INSERT INTO user_menu_preferences (user_id, use_personal_order, updated_at)
VALUES (?, ?, NOW())
ON CONFLICT (user_id)
DO UPDATE SET use_personal_order = EXCLUDED.use_personal_order, updated_at = NOW()`

// Writers hold this row lock until commit, so order rows for one user are
// only ever replaced by one transaction at a time.
const lockPreferenceSQL = `SELECT user_id FROM user_menu_preferences WHERE user_id = ? FOR UPDATE`

// FindPreference returns nil when the user never personalized their menu
func (r *menuRepo) FindPreference(ctx context.Context, userID uuid.UUID) (*model.UserMenuPreference, error) {
	var prefs []model.UserMenuPreference
	err := r.db.WithContext(ctx).
		Raw(`SELECT user_id, use_personal_order, updated_at FROM user_menu_preferences WHERE user_id = ? LIMIT 1`, userID).
		Scan(&prefs).Error
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return nil, nil
	}
	return &prefs[0], nil
}

func (r *menuRepo) FindCandidates(ctx context.Context, userID uuid.UUID, role model.Role) ([]MenuCandidate, error) {
	var rows []MenuCandidate
	err := r.db.WithContext(ctx).Raw(`SELECT p.id AS page_id, p.page_name, p.page_path, p.page_title_en, p.page_title_km, p.icon,
       p.sort_order AS default_sort_order, umo.sort_order AS personal_sort_order
FROM pages p
JOIN role_page_permissions rpp ON rpp.page_id = p.id AND rpp.role = ? AND rpp.is_allowed = TRUE
LEFT JOIN user_menu_orders umo ON umo.page_id = p.id AND umo.user_id = ?`, role, userID).Scan(&rows).Error
	return rows, err
}

// SavePersonalOrder upserts the preference and, when enabled, replaces the
// user's whole order set. Pages missing from orders lose their position.
func (r *menuRepo) SavePersonalOrder(ctx context.Context, userID uuid.UUID, usePersonalOrder bool, orders []model.PageOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(upsertPreferenceSQL, userID, usePersonalOrder).Error; err != nil {
			return err
		}
		if !usePersonalOrder {
			return nil
		}
		if err := tx.Exec(lockPreferenceSQL, userID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM user_menu_orders WHERE user_id = ?`, userID).Error; err != nil {
			return err
		}
		for _, o := range orders {
			err := tx.Exec(`INSERT INTO user_menu_orders (user_id, page_id, sort_order, created_at, updated_at)
VALUES (?, ?, ?, NOW(), NOW())`, userID, o.PageID, o.SortOrder).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset drops every personal position and turns the preference off
func (r *menuRepo) Reset(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(upsertPreferenceSQL, userID, false).Error; err != nil {
			return err
		}
		if err := tx.Exec(lockPreferenceSQL, userID).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM user_menu_orders WHERE user_id = ?`, userID).Error
	})
}
