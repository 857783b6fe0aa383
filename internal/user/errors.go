// AngelaMos | 2026
// errors.go

package user

import (
	"fmt"

	"github.com/carterperez-dev/postgate/internal/auth"
	"github.com/carterperez-dev/postgate/internal/core"
)

var (
	ErrDuplicateEmail     = auth.ErrEmailExists
	ErrInvalidCredentials = auth.ErrInvalidCredentials
	ErrInvalidRole        = fmt.Errorf("invalid role: %w", core.ErrInvalidInput)
	ErrDeleteSelf         = fmt.Errorf("cannot delete own account: %w", core.ErrForbidden)
)
