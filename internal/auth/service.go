// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/core"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = fmt.Errorf("email already exists: %w", core.ErrDuplicateKey)
)

type UserInfo struct {
	ID        string
	Email     string
	Name      string
	Role      access.Role
	CreatedAt time.Time
}

// UserProvider is the slice of the user directory the auth flows need.
type UserProvider interface {
	Register(ctx context.Context, email, name, password string) (*UserInfo, error)
	Authenticate(ctx context.Context, email, password string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
}

type Service struct {
	tokens       *TokenService
	userProvider UserProvider
}

func NewService(tokens *TokenService, userProvider UserProvider) *Service {
	return &Service{
		tokens:       tokens,
		userProvider: userProvider,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	user, err := s.userProvider.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password both surface as ErrInvalidCredentials.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	user, err := s.userProvider.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	issued, err := s.tokens.Issue(TokenSubject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResponse{
		Token:     issued.Token,
		TokenType: "Bearer",
		ExpiresIn: int(s.tokens.TTL() / time.Second),
		ExpiresAt: issued.ExpiresAt,
		Role:      user.Role.String(),
		User:      toUserResponse(user),
	}, nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}
