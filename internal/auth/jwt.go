// AngelaMos | 2026
// jwt.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jws"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/config"
	"github.com/carterperez-dev/postgate/internal/core"
)

const (
	claimUserID = "user_id"
	claimEmail  = "email"
	claimRole   = "role"
)

// TokenSubject is what gets encoded into a token.
type TokenSubject struct {
	UserID string
	Email  string
	Role   access.Role
}

// IssuedToken is a signed token and its expiry instant.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenService issues and validates HS256 bearer tokens. Tokens are never
// revoked server side; they die by expiry only.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(cfg config.JWTConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("new token service: empty secret")
	}
	if cfg.AccessTokenExpire <= 0 {
		return nil, fmt.Errorf("new token service: non-positive ttl")
	}

	s := &TokenService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.AccessTokenExpire,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(subject TokenSubject) (*IssuedToken, error) {
	now := s.now().Truncate(time.Second)
	expiresAt := now.Add(s.ttl)

	builder := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Subject(subject.UserID).
		IssuedAt(now).
		Expiration(expiresAt).
		Claim(claimUserID, subject.UserID).
		Claim(claimEmail, subject.Email).
		Claim(claimRole, subject.Role.String())
	if s.issuer != "" {
		builder = builder.Issuer(s.issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), s.secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{
		Token:     string(signed),
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks, in order, that the token parses, that its MAC verifies
// and that it has not expired. Each failure wraps its own core sentinel. A
// configured issuer must match the token's iss claim.
func (s *TokenService) Validate(tokenString string) (*access.Claims, error) {
	raw := []byte(tokenString)

	token, err := jwt.ParseInsecure(raw)
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", core.ErrTokenMalformed)
	}

	if _, err := jws.Verify(raw, jws.WithKey(jwa.HS256(), s.secret)); err != nil {
		return nil, fmt.Errorf("validate token: %w", core.ErrTokenSignature)
	}

	expiresAt, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf("validate token: missing exp: %w", core.ErrTokenMalformed)
	}

	if s.now().After(expiresAt) {
		return nil, fmt.Errorf("validate token: %w", core.ErrTokenExpired)
	}

	if s.issuer != "" {
		if iss, _ := token.Issuer(); iss != s.issuer {
			return nil, fmt.Errorf("validate token: issuer %q: %w", iss, core.ErrTokenMalformed)
		}
	}

	var userID, email, roleStr string
	if err := token.Get(claimUserID, &userID); err != nil || userID == "" {
		return nil, fmt.Errorf("validate token: missing user_id: %w", core.ErrTokenMalformed)
	}
	if err := token.Get(claimEmail, &email); err != nil {
		return nil, fmt.Errorf("validate token: missing email: %w", core.ErrTokenMalformed)
	}
	if err := token.Get(claimRole, &roleStr); err != nil {
		return nil, fmt.Errorf("validate token: missing role: %w", core.ErrTokenMalformed)
	}

	role, ok := access.ParseRole(roleStr)
	if !ok {
		return nil, fmt.Errorf("validate token: unknown role: %w", core.ErrTokenMalformed)
	}

	issuedAt, _ := token.IssuedAt()

	return &access.Claims{
		UserID:    userID,
		Email:     email,
		Role:      role,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyAccessToken adapts Validate to the middleware verifier contract.
func (s *TokenService) VerifyAccessToken(
	_ context.Context,
	tokenString string,
) (*access.Claims, error) {
	return s.Validate(tokenString)
}
