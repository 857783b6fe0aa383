// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/config"
	"github.com/carterperez-dev/postgate/internal/core"
)

// FeedInvalidator drops cached public listings. Deleting a user removes
// their posts, some of which may be public.
type FeedInvalidator interface {
	InvalidatePublicFeed(ctx context.Context) error
}

type Service struct {
	repo   Repository
	hasher *core.Hasher
	feed   FeedInvalidator
}

func NewService(repo Repository, hasher *core.Hasher, feed FeedInvalidator) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		feed:   feed,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an AUTHOR account. The role is never caller-chosen.
func (s *Service) Register(ctx context.Context, email, name, password string) (*User, error) {
	return s.create(ctx, email, name, password, access.RoleAuthor)
}

func (s *Service) create(
	ctx context.Context,
	email, name, password string,
	role access.Role,
) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.create", attribute.String("user.role", role.String()))
	var err error
	defer func() { core.EndSpan(span, err) }()

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id: %w", err)
	}

	user := &User{
		ID:           id.String(),
		Email:        normalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
	}

	if err = s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return user, nil
}

// Authenticate returns ErrInvalidCredentials for an unknown email and for
// a wrong password alike, after the same hashing work in both cases.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	ctx, span := core.StartSpan(ctx, "user.authenticate")
	var err error
	defer func() { core.EndSpan(span, err) }()

	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.hasher.VerifyTimingSafe(password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, rehash := s.hasher.VerifyTimingSafe(password, &user.PasswordHash)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if rehash != "" {
		if uerr := s.repo.UpdatePasswordHash(ctx, user.ID, rehash); uerr != nil {
			slog.WarnContext(ctx, "password rehash not persisted",
				"user_id", user.ID,
				"error", uerr,
			)
		} else {
			user.PasswordHash = rehash
		}
	}

	return user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolvePrincipal maps a token subject to the stored user. A subject that
// no longer exists is ErrUserNotFound, distinct from token failures.
func (s *Service) ResolvePrincipal(ctx context.Context, userID string) (*access.Principal, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("resolve principal: %w", core.ErrUserNotFound)
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	return user.Principal(), nil
}

func (s *Service) ListAll(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateRole(ctx context.Context, id, roleName string) (*User, error) {
	role, ok := access.ParseRole(roleName)
	if !ok {
		return nil, fmt.Errorf("update role %q: %w", roleName, ErrInvalidRole)
	}

	return s.repo.UpdateRole(ctx, id, role)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) CountByRole(ctx context.Context) (map[access.Role]int, error) {
	return s.repo.CountByRole(ctx)
}

// Delete removes targetID and, through the foreign key, all of its posts.
func (s *Service) Delete(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return ErrDeleteSelf
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	if s.feed != nil {
		if err := s.feed.InvalidatePublicFeed(ctx); err != nil {
			slog.WarnContext(ctx, "public feed invalidation failed",
				"user_id", targetID,
				"error", err,
			)
		}
	}

	return nil
}

// EnsureAdmin creates the configured ADMIN account, or promotes an
// existing account with that email. It reports whether anything changed.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if !cfg.SeedAdmin() {
		return false, nil
	}

	existing, err := s.repo.GetByEmail(ctx, normalizeEmail(cfg.Email))
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return false, nil
		}
		if _, err := s.repo.UpdateRole(ctx, existing.ID, access.RoleAdmin); err != nil {
			return false, fmt.Errorf("promote admin: %w", err)
		}
		return true, nil
	case !errors.Is(err, core.ErrNotFound):
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	if _, err := s.create(ctx, cfg.Email, cfg.Name, cfg.Password, access.RoleAdmin); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("seed admin: %w", err)
	}

	return true, nil
}
