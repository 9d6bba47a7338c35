package repository

import (
	"context"

	"tarl-insight-hub/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PageRepository interface {
	FindAll(ctx context.Context) ([]model.Page, error)
	FindByID(ctx context.Context, id uint) (*model.Page, error)
	FindByName(ctx context.Context, name string) (*model.Page, error)
	CountByIDs(ctx context.Context, ids []uint) (int64, error)
	SeedDefaults(ctx context.Context) error
}

type pageRepo struct {
	db *gorm.DB
}

func NewPageRepo(db *gorm.DB) PageRepository {
	return &pageRepo{db: db}
}

func (r *pageRepo) FindAll(ctx context.Context) ([]model.Page, error) {
	var pages []model.Page
	err := r.db.WithContext(ctx).Order("sort_order ASC NULLS LAST, page_name ASC").Find(&pages).Error
	return pages, err
}

func (r *pageRepo) FindByID(ctx context.Context, id uint) (*model.Page, error) {
	var page model.Page
	if err := r.db.WithContext(ctx).First(&page, id).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *pageRepo) FindByName(ctx context.Context, name string) (*model.Page, error) {
	var page model.Page
	if err := r.db.WithContext(ctx).Where("page_name = ?", name).Order("id").First(&page).Error; err != nil {
		return nil, err
	}
	return &page, nil
}

// CountByIDs returns how many of ids exist; duplicates in ids count once
func (r *pageRepo) CountByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Page{}).Where("id IN ?", ids).Count(&n).Error
	return n, err
}

// SeedDefaults inserts the default page catalog, leaving existing paths untouched
func (r *pageRepo) SeedDefaults(ctx context.Context) error {
	pages := make([]model.Page, len(model.DefaultPages))
	copy(pages, model.DefaultPages)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "page_path"}}, DoNothing: true}).
		Create(&pages).Error
}
