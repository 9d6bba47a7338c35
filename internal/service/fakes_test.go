package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"tarl-insight-hub/internal/model"
	"tarl-insight-hub/internal/repository"
	"tarl-insight-hub/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type pageKey struct {
	role   model.Role
	pageID uint
}

type actionKey struct {
	pageID uint
	role   model.Role
	action string
}

// fakeStore is an in-memory stand-in for the page, permission and menu
// repositories. Writes that span several rows are applied all-or-nothing.
type fakeStore struct {
	mu sync.Mutex

	pages        map[uint]model.Page
	pageGrants   map[pageKey]bool
	actionGrants map[actionKey]model.PageActionPermission
	prefs        map[uuid.UUID]bool
	orders       map[uuid.UUID]map[uint]int

	readErr     error
	failBulkAt  int
	actionReads int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pages:        make(map[uint]model.Page),
		pageGrants:   make(map[pageKey]bool),
		actionGrants: make(map[actionKey]model.PageActionPermission),
		prefs:        make(map[uuid.UUID]bool),
		orders:       make(map[uuid.UUID]map[uint]int),
		failBulkAt:   -1,
	}
}

func (f *fakeStore) addPage(id uint, name string, sortOrder *int) {
	f.pages[id] = model.Page{ID: id, PageName: name, PagePath: "/" + name, SortOrder: sortOrder}
}

func (f *fakeStore) grantPage(role model.Role, pageID uint, allowed bool) {
	f.pageGrants[pageKey{role, pageID}] = allowed
}

func (f *fakeStore) setAction(pageID uint, role model.Role, action string, allowed bool) {
	f.actionGrants[actionKey{pageID, role, action}] = model.PageActionPermission{PageID: pageID, Role: role, ActionName: action, IsAllowed: allowed}
}

func (f *fakeStore) pageByName(name string) (model.Page, bool) {
	var found model.Page
	ok := false
	for _, p := range f.pages {
		if p.PageName == name && (!ok || p.ID < found.ID) {
			found, ok = p, true
		}
	}
	return found, ok
}

// PageRepository

func (f *fakeStore) FindAll(ctx context.Context) ([]model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Page, 0, len(f.pages))
	for _, p := range f.pages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, f.readErr
}

func (f *fakeStore) FindByID(ctx context.Context, id uint) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	p, ok := f.pages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeStore) FindByName(ctx context.Context, name string) (*model.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	p, ok := f.pageByName(name)
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakeStore) CountByIDs(ctx context.Context, ids []uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[uint]bool{}
	for _, id := range ids {
		if _, ok := f.pages[id]; ok {
			seen[id] = true
		}
	}
	return int64(len(seen)), f.readErr
}

func (f *fakeStore) SeedDefaults(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range model.DefaultPages {
		if _, ok := f.pageByName(p.PageName); !ok {
			p.ID = uint(i + 1)
			f.pages[p.ID] = p
		}
	}
	return nil
}

// PermissionRepository

func (f *fakeStore) FindPageGrant(ctx context.Context, role model.Role, pageName string) (*repository.PageGrant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	p, ok := f.pageByName(pageName)
	if !ok {
		return nil, nil
	}
	grant := &repository.PageGrant{PageID: p.ID}
	if allowed, ok := f.pageGrants[pageKey{role, p.ID}]; ok {
		grant.IsAllowed = &allowed
	}
	return grant, nil
}

func (f *fakeStore) FindActionGrant(ctx context.Context, pageID uint, role model.Role, action string) (*bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actionReads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	row, ok := f.actionGrants[actionKey{pageID, role, action}]
	if !ok {
		return nil, nil
	}
	allowed := row.IsAllowed
	return &allowed, nil
}

func (f *fakeStore) FindActionPermissions(ctx context.Context, filter repository.ActionFilter) ([]repository.ActionPermissionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []repository.ActionPermissionRow
	for k, v := range f.actionGrants {
		name := f.pages[k.pageID].PageName
		if filter.PageName != "" && filter.PageName != name {
			continue
		}
		if filter.Role != "" && filter.Role != k.role {
			continue
		}
		rows = append(rows, repository.ActionPermissionRow{PageID: k.pageID, PageName: name, Role: k.role, ActionName: k.action, IsAllowed: v.IsAllowed})
	}
	return rows, f.readErr
}

func (f *fakeStore) FindPagePermissions(ctx context.Context, role model.Role) ([]repository.PagePermissionRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []repository.PagePermissionRow
	for k, allowed := range f.pageGrants {
		if role != "" && role != k.role {
			continue
		}
		p := f.pages[k.pageID]
		rows = append(rows, repository.PagePermissionRow{PageID: p.ID, PageName: p.PageName, PagePath: p.PagePath, Role: k.role, IsAllowed: allowed})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PageName != rows[j].PageName {
			return rows[i].PageName < rows[j].PageName
		}
		return rows[i].Role < rows[j].Role
	})
	return rows, f.readErr
}

func (f *fakeStore) UpsertActionPermission(ctx context.Context, p *model.PageActionPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actionGrants[actionKey{p.PageID, p.Role, p.ActionName}] = *p
	return nil
}

func (f *fakeStore) BulkUpsertActionPermissions(ctx context.Context, ps []model.PageActionPermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	staged := make(map[actionKey]model.PageActionPermission, len(ps))
	for i, p := range ps {
		if i == f.failBulkAt {
			return errors.New("constraint violation")
		}
		staged[actionKey{p.PageID, p.Role, p.ActionName}] = p
	}
	for k, v := range staged {
		f.actionGrants[k] = v
	}
	return nil
}

func (f *fakeStore) UpsertPagePermission(ctx context.Context, p *model.RolePagePermission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageGrants[pageKey{p.Role, p.PageID}] = p.IsAllowed
	return nil
}

func (f *fakeStore) SeedDefaultGrants(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.pages {
		if _, ok := f.pageGrants[pageKey{model.RoleAdmin, id}]; !ok {
			f.pageGrants[pageKey{model.RoleAdmin, id}] = true
		}
	}
	return nil
}

// MenuRepository

func (f *fakeStore) FindPreference(ctx context.Context, userID uuid.UUID) (*model.UserMenuPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	use, ok := f.prefs[userID]
	if !ok {
		return nil, f.readErr
	}
	return &model.UserMenuPreference{UserID: userID, UsePersonalOrder: use}, f.readErr
}

func (f *fakeStore) FindCandidates(ctx context.Context, userID uuid.UUID, role model.Role) ([]repository.MenuCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.MenuCandidate
	for k, allowed := range f.pageGrants {
		if k.role != role || !allowed {
			continue
		}
		p := f.pages[k.pageID]
		c := repository.MenuCandidate{PageID: p.ID, PageName: p.PageName, PagePath: p.PagePath, DefaultSortOrder: p.SortOrder}
		if pos, ok := f.orders[userID][p.ID]; ok {
			pos := pos
			c.PersonalSortOrder = &pos
		}
		out = append(out, c)
	}
	return out, f.readErr
}

func (f *fakeStore) SavePersonalOrder(ctx context.Context, userID uuid.UUID, use bool, orders []model.PageOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs[userID] = use
	if !use {
		return nil
	}
	next := make(map[uint]int, len(orders))
	for _, o := range orders {
		next[o.PageID] = o.SortOrder
	}
	f.orders[userID] = next
	return nil
}

func (f *fakeStore) Reset(ctx context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, userID)
	f.prefs[userID] = false
	return nil
}

// UserRepository, kept separate because FindByID collides with pages

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*model.User
	err       error
	createErr error
	calls     int
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[uuid.UUID]*model.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

// live reports rows the default gorm scope would return
func live(u *model.User) bool { return !u.DeletedAt.Valid }

// emailTaken mirrors the partial unique index on live users' email
func (f *fakeUsers) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range f.byID {
		if id != except && live(u) && u.Email == email {
			return true
		}
	}
	return false
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if live(u) && u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok || !live(u) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.createErr != nil {
		return f.createErr
	}
	if f.emailTaken(user.Email, uuid.Nil) {
		return gorm.ErrDuplicatedKey
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) FindAll(ctx context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		if live(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) Update(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[user.ID]; !ok || !live(u) {
		return gorm.ErrRecordNotFound
	}
	if f.emailTaken(user.Email, user.ID) {
		return gorm.ErrDuplicatedKey
	}
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

// Delete soft-deletes, keeping the row like gorm does
func (f *fakeUsers) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok || !live(u) {
		return gorm.ErrRecordNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, userID uuid.UUID, hashed string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Password = hashed
	return nil
}

func (f *fakeUsers) UpdateTokenVersion(ctx context.Context, userID uuid.UUID, version string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TokenVersion = version
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ws.Event
}

func (n *recordingNotifier) Publish(evt ws.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) all() []ws.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ws.Event(nil), n.events...)
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
