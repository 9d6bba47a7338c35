package model

import (
	"regexp"
	"strings"
)

// RolePagePermission grants or denies visibility of a page to a role
type RolePagePermission struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	Role      Role  `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_page" json:"role"`
	PageID    uint  `gorm:"not null;uniqueIndex:idx_role_page" json:"page_id"`
	Page      *Page `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE" json:"page,omitempty"`
	IsAllowed bool  `gorm:"not null;default:false" json:"is_allowed"`
	Timestamps
}

// PageActionPermission refines a page grant for one named action.
// It has no effect unless the role also holds the page-level grant.
type PageActionPermission struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	PageID     uint   `gorm:"not null;uniqueIndex:idx_page_role_action" json:"page_id"`
	Page       *Page  `gorm:"foreignKey:PageID;constraint:OnDelete:CASCADE" json:"page,omitempty"`
	Role       Role   `gorm:"type:varchar(50);not null;uniqueIndex:idx_page_role_action" json:"role"`
	ActionName string `gorm:"type:varchar(50);not null;uniqueIndex:idx_page_role_action" json:"action_name"`
	IsAllowed  bool   `gorm:"not null;default:false" json:"is_allowed"`
	ChangedBy  string `gorm:"type:varchar(255)" json:"changed_by"`
	Timestamps
}

// Recognized action names
const (
	ActionView               = "view"
	ActionCreate             = "create"
	ActionUpdate             = "update"
	ActionDelete             = "delete"
	ActionExport             = "export"
	ActionBulkUpdate         = "bulk_update"
	ActionManageParticipants = "manage_participants"
	ActionGenerateQR         = "generate_qr"
)

// DefaultActions is the built-in action vocabulary
var DefaultActions = []string{
	ActionView,
	ActionCreate,
	ActionUpdate,
	ActionDelete,
	ActionExport,
	ActionBulkUpdate,
	ActionManageParticipants,
	ActionGenerateQR,
}

var actionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,49}$`)

// ValidActionName reports whether name is a well-formed action identifier
func ValidActionName(name string) bool {
	return actionNamePattern.MatchString(name)
}

// ActionSet is the vocabulary of actions a deployment recognizes
type ActionSet struct {
	names []string
	index map[string]struct{}
}

// NewActionSet builds the vocabulary from DefaultActions plus extra.
// Extra names are lowercased; malformed or duplicate names are skipped.
func NewActionSet(extra ...string) *ActionSet {
	s := &ActionSet{index: make(map[string]struct{})}
	for _, name := range append(append([]string{}, DefaultActions...), extra...) {
		name = strings.ToLower(strings.TrimSpace(name))
		if !ValidActionName(name) {
			continue
		}
		if _, dup := s.index[name]; dup {
			continue
		}
		s.index[name] = struct{}{}
		s.names = append(s.names, name)
	}
	return s
}

// Contains reports whether name is in the vocabulary
func (s *ActionSet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the vocabulary in declaration order
func (s *ActionSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}
