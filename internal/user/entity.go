// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/postgate/internal/access"
)

type User struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	Name         string      `db:"name"`
	PasswordHash string      `db:"password_hash"`
	Role         access.Role `db:"role"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == access.RoleAdmin
}

func (u *User) Principal() *access.Principal {
	return &access.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	}
}
