package model

import (
	"fmt"
	"strings"
)

// Role is a named category of user that grants are attached to.
// The set is closed; values are always stored lowercase.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleDirector    Role = "director"
	RolePartner     Role = "partner"
	RoleCoordinator Role = "coordinator"
	RoleMentor      Role = "mentor"
	RoleTeacher     Role = "teacher"
	RoleCollector   Role = "collector"
	RoleViewer      Role = "viewer"
)

// AllRoles lists every known role in display order
var AllRoles = []Role{
	RoleAdmin,
	RoleDirector,
	RolePartner,
	RoleCoordinator,
	RoleMentor,
	RoleTeacher,
	RoleCollector,
	RoleViewer,
}

// ParseRole normalizes s (trim + lowercase) and checks it against AllRoles
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsAdmin reports whether r is the administrative role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
