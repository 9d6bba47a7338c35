package service

import (
	"context"
	"fmt"
	"sort"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/internal/ws"
	"tarl-insight-hub/pkg/logger"
	"tarl-insight-hub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type MenuService interface {
	EffectiveMenuOrder(ctx context.Context, userID uuid.UUID, role string) (*MenuView, error)
	SavePersonalOrder(ctx context.Context, userID uuid.UUID, req *SaveMenuOrderRequest) error
	ResetToDefault(ctx context.Context, userID uuid.UUID) error
}

// MenuView is the ordered menu of one user plus the flag that produced it
type MenuView struct {
	UsePersonalOrder bool              `json:"usePersonalOrder"`
	Pages            []model.MenuEntry `json:"pages"`
}

type SaveMenuOrderRequest struct {
	UsePersonalOrder *bool             `json:"usePersonalOrder" validate:"required"`
	PageOrders       []model.PageOrder `json:"pageOrders" validate:"dive"`
}

type menuService struct {
	menuRepo repository.MenuRepository
	pageRepo repository.PageRepository
	notifier Notifier
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewMenuService(menuRepo repository.MenuRepository, pageRepo repository.PageRepository, notifier Notifier, m *metrics.Metrics, log logrus.FieldLogger) MenuService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &menuService{
		menuRepo: menuRepo,
		pageRepo: pageRepo,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// EffectiveMenuOrder lists the pages granted to role in display order. An
// unknown role sees an empty menu.
func (s *menuService) EffectiveMenuOrder(ctx context.Context, userID uuid.UUID, rawRole string) (*MenuView, error) {
	view := &MenuView{Pages: []model.MenuEntry{}}

	pref, err := s.menuRepo.FindPreference(ctx, userID)
	if err != nil {
		return nil, internalError("load menu preference", err)
	}
	if pref != nil {
		view.UsePersonalOrder = pref.UsePersonalOrder
	}

	role, err := model.ParseRole(rawRole)
	if err != nil {
		return view, nil
	}

	candidates, err := s.menuRepo.FindCandidates(ctx, userID, role)
	if err != nil {
		return nil, internalError("load menu pages", err)
	}
	view.Pages = orderMenu(candidates, view.UsePersonalOrder)
	return view, nil
}

// orderMenu sorts by the chosen position (personal or default), placing pages
// without one at model.DefaultSortOrder, then by page name and id so the
// result is a total order.
func orderMenu(candidates []repository.MenuCandidate, personal bool) []model.MenuEntry {
	entries := make([]model.MenuEntry, len(candidates))
	for i, c := range candidates {
		pos := c.DefaultSortOrder
		if personal {
			pos = c.PersonalSortOrder
		}
		sortOrder := model.DefaultSortOrder
		if pos != nil {
			sortOrder = *pos
		}
		entries[i] = model.MenuEntry{
			PageID:      c.PageID,
			PageName:    c.PageName,
			PagePath:    c.PagePath,
			PageTitleEn: c.PageTitleEn,
			PageTitleKm: c.PageTitleKm,
			Icon:        c.Icon,
			SortOrder:   sortOrder,
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if a.PageName != b.PageName {
			return a.PageName < b.PageName
		}
		return a.PageID < b.PageID
	})
	return entries
}

// SavePersonalOrder stores the preference and, when enabled, replaces the
// user's whole order set with req.PageOrders.
func (s *menuService) SavePersonalOrder(ctx context.Context, userID uuid.UUID, req *SaveMenuOrderRequest) error {
	if userID == uuid.Nil {
		return newValidationError("userId", "required")
	}
	if err := validate(req); err != nil {
		return err
	}

	seen := make(map[uint]struct{}, len(req.PageOrders))
	ids := make([]uint, 0, len(req.PageOrders))
	for _, o := range req.PageOrders {
		if _, dup := seen[o.PageID]; dup {
			return newValidationError("pageOrders", fmt.Sprintf("page %d listed twice", o.PageID))
		}
		seen[o.PageID] = struct{}{}
		ids = append(ids, o.PageID)
	}
	if len(ids) > 0 {
		n, err := s.pageRepo.CountByIDs(ctx, ids)
		if err != nil {
			return internalError("check pages", err)
		}
		if n != int64(len(ids)) {
			return notFound("%d of %d pages", int64(len(ids))-n, len(ids))
		}
	}

	use := *req.UsePersonalOrder
	err := s.menuRepo.SavePersonalOrder(ctx, userID, use, req.PageOrders)
	s.metrics.ObserveWrite("menu_order", err)
	if err != nil {
		return internalError("save menu order", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":            userID,
		"use_personal_order": use,
		"pages":              len(req.PageOrders),
	}).Debug("menu order saved")
	s.notifier.Publish(ws.Event{Type: ws.EventMenuOrderUpdated, UserID: userID.String()})
	return nil
}

func (s *menuService) ResetToDefault(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return newValidationError("userId", "required")
	}
	err := s.menuRepo.Reset(ctx, userID)
	s.metrics.ObserveWrite("menu_reset", err)
	if err != nil {
		return internalError("reset menu order", err)
	}
	s.notifier.Publish(ws.Event{Type: ws.EventMenuOrderReset, UserID: userID.String()})
	return nil
}
