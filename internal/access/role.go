// AngelaMos | 2026
// role.go

package access

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleAuthor Role = "AUTHOR"
	RoleViewer Role = "VIEWER"
)

var allRoles = []Role{RoleAdmin, RoleAuthor, RoleViewer}

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAuthor, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

// RoleSet is the allowed-role set of an operation. A nil set admits any
// authenticated principal.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Contains(r Role) bool {
	if s == nil {
		return r.Valid()
	}
	_, ok := s[r]
	return ok
}

// The standing sets used by every protected route.
var (
	AdminOnly        = NewRoleSet(RoleAdmin)
	Authors          = NewRoleSet(RoleAuthor, RoleAdmin)
	AnyAuthenticated = RoleSet(nil)
)

// Claims is the payload carried by a bearer token.
type Claims struct {
	UserID    string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Principal is the user a request acts as, resolved from the directory
// after token validation. Role is the stored role, not the token's.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}
