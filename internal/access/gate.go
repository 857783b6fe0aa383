// AngelaMos | 2026
// gate.go

package access

import (
	"fmt"

	"github.com/carterperez-dev/postgate/internal/core"
)

// Authorize is the role check of the gate. A nil principal means the
// request was not authenticated.
func Authorize(p *Principal, allowed RoleSet) error {
	if p == nil {
		return fmt.Errorf("authorize: %w", core.ErrUnauthorized)
	}

	if !allowed.Contains(p.Role) {
		return fmt.Errorf("authorize: role %s: %w", p.Role, core.ErrForbidden)
	}

	return nil
}

// AuthorizeOwner is the ownership check for mutating a resource owned by
// ownerID. ADMIN always passes.
func AuthorizeOwner(p *Principal, ownerID string) error {
	if p == nil {
		return fmt.Errorf("authorize owner: %w", core.ErrUnauthorized)
	}

	if p.IsAdmin() || p.UserID == ownerID {
		return nil
	}

	return fmt.Errorf("authorize owner: %w", core.ErrForbidden)
}

// AuthorizeMutation runs the role check and then the ownership check.
func AuthorizeMutation(p *Principal, allowed RoleSet, ownerID string) error {
	if err := Authorize(p, allowed); err != nil {
		return err
	}
	return AuthorizeOwner(p, ownerID)
}

// CanRead reports whether p may read a resource owned by ownerID. Owners
// and admins read anything; everyone else only public resources.
func CanRead(p *Principal, ownerID string, public bool) bool {
	if public {
		return true
	}
	return p != nil && (p.IsAdmin() || p.UserID == ownerID)
}
