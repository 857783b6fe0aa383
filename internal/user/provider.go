// AngelaMos | 2026
// provider.go

package user

import (
	"context"

	"github.com/carterperez-dev/postgate/internal/auth"
)

// AuthProvider exposes the directory to the auth flows.
type AuthProvider struct {
	svc *Service
}

func NewAuthProvider(svc *Service) *AuthProvider {
	return &AuthProvider{svc: svc}
}

func (p *AuthProvider) Register(
	ctx context.Context,
	email, name, password string,
) (*auth.UserInfo, error) {
	u, err := p.svc.Register(ctx, email, name, password)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (p *AuthProvider) Authenticate(
	ctx context.Context,
	email, password string,
) (*auth.UserInfo, error) {
	u, err := p.svc.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func (p *AuthProvider) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	u, err := p.svc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

var _ auth.UserProvider = (*AuthProvider)(nil)
