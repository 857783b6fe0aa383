// AngelaMos | 2026
// errors.go

package post

import (
	"fmt"

	"github.com/carterperez-dev/postgate/internal/core"
)

var (
	ErrInvalidStatus = fmt.Errorf("invalid status: %w", core.ErrInvalidInput)
	ErrEmptyField    = fmt.Errorf("title and content must not be empty: %w", core.ErrInvalidInput)
	ErrNoChanges     = fmt.Errorf("no fields to update: %w", core.ErrInvalidInput)
	ErrTitleTooLong  = fmt.Errorf("title too long: %w", core.ErrInvalidInput)
)
