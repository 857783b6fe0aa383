// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/core"
)

const maxTitleLength = 255

type CreateInput struct {
	Title   string
	Content string
}

// UpdateInput is a partial edit; nil fields are left unchanged.
type UpdateInput struct {
	Title   *string
	Content *string
}

// Service is the moderation engine. Every operation runs the access gate
// for its principal before touching data.
type Service struct {
	repo      Repository
	cache     FeedCache
	sanitizer *Sanitizer
}

func NewService(repo Repository, cache FeedCache, sanitizer *Sanitizer) *Service {
	if cache == nil {
		cache = noopFeedCache{}
	}
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}
	return &Service{
		repo:      repo,
		cache:     cache,
		sanitizer: sanitizer,
	}
}

// Create stores a new post owned by p. It always starts PENDING.
func (s *Service) Create(ctx context.Context, p *access.Principal, in CreateInput) (*Post, error) {
	if err := access.Authorize(p, access.Authors); err != nil {
		return nil, err
	}

	ctx, span := core.StartSpan(ctx, "post.create", attribute.String("user.id", p.UserID))
	var err error
	defer func() { core.EndSpan(span, err) }()

	title, content := s.sanitizer.Title(in.Title), s.sanitizer.Content(in.Content)
	if err = checkFields(title, content); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate post id: %w", err)
	}

	post := &Post{
		ID:       id.String(),
		Title:    title,
		Content:  content,
		AuthorID: p.UserID,
		Status:   StatusPending,
	}

	if err = s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Edit applies a partial update. The owner or an admin may edit; a
// non-admin edit puts the post back in the moderation queue.
func (s *Service) Edit(
	ctx context.Context,
	p *access.Principal,
	id string,
	in UpdateInput,
) (*Post, error) {
	if err := access.Authorize(p, access.Authors); err != nil {
		return nil, err
	}
	if in.Title == nil && in.Content == nil {
		return nil, ErrNoChanges
	}

	ctx, span := core.StartSpan(ctx, "post.edit", attribute.String("post.id", id))
	var err error
	defer func() { core.EndSpan(span, err) }()

	var (
		updated  *Post
		previous Status
	)
	err = s.repo.WithTx(ctx, func(repo Repository) error {
		post, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := access.AuthorizeOwner(p, post.AuthorID); err != nil {
			return err
		}

		if in.Title != nil {
			post.Title = s.sanitizer.Title(*in.Title)
		}
		if in.Content != nil {
			post.Content = s.sanitizer.Content(*in.Content)
		}
		if err := checkFields(post.Title, post.Content); err != nil {
			return err
		}

		previous = post.Status
		post.Status = statusAfterEdit(post.Status, p.IsAdmin())

		if err := repo.UpdateContent(ctx, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}

	if affectsFeed(previous, updated.Status) {
		s.invalidate(ctx, updated.ID)
	}

	return updated, nil
}

// Delete removes a post. Authors may delete their own posts, admins any.
func (s *Service) Delete(ctx context.Context, p *access.Principal, id string) error {
	if err := access.Authorize(p, access.Authors); err != nil {
		return err
	}

	ctx, span := core.StartSpan(ctx, "post.delete", attribute.String("post.id", id))
	var err error
	defer func() { core.EndSpan(span, err) }()

	var wasPublic bool
	err = s.repo.WithTx(ctx, func(repo Repository) error {
		post, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := access.AuthorizeOwner(p, post.AuthorID); err != nil {
			return err
		}
		wasPublic = post.IsPublic()
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if wasPublic {
		s.invalidate(ctx, id)
	}

	return nil
}

// SetStatus is the admin moderation transition. Setting the current
// status again succeeds without writing.
func (s *Service) SetStatus(
	ctx context.Context,
	p *access.Principal,
	id, statusName string,
) (*Post, error) {
	if err := access.Authorize(p, access.AdminOnly); err != nil {
		return nil, err
	}

	status, ok := ParseStatus(statusName)
	if !ok {
		return nil, fmt.Errorf("set status %q: %w", statusName, ErrInvalidStatus)
	}

	ctx, span := core.StartSpan(ctx, "post.set_status",
		attribute.String("post.id", id),
		attribute.String("post.status", status.String()),
	)
	var err error
	defer func() { core.EndSpan(span, err) }()

	var (
		result   *Post
		previous Status
	)
	err = s.repo.WithTx(ctx, func(repo Repository) error {
		post, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		previous = post.Status
		result = post
		if post.Status == status {
			return nil
		}

		post.Status = status
		return repo.UpdateStatus(ctx, post)
	})
	if err != nil {
		return nil, err
	}

	if previous != status && affectsFeed(previous, status) {
		s.invalidate(ctx, id)
	}

	return result, nil
}

// ListPublic returns APPROVED posts, newest first.
func (s *Service) ListPublic(ctx context.Context) ([]Post, error) {
	posts, version, hit := s.cache.Lookup(ctx)
	if hit {
		return posts, nil
	}

	posts, err := s.repo.ListByStatus(ctx, StatusApproved, NewestFirst)
	if err != nil {
		return nil, err
	}

	s.cache.Store(ctx, version, posts)
	return posts, nil
}

// GetPublic returns a post only when it is APPROVED; anything else is
// reported as missing.
func (s *Service) GetPublic(ctx context.Context, id string) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !post.IsPublic() {
		return nil, fmt.Errorf("get public post: %w", core.ErrNotFound)
	}
	return post, nil
}

// Get is the authenticated read: owners and admins see any status.
func (s *Service) Get(ctx context.Context, p *access.Principal, id string) (*Post, error) {
	if err := access.Authorize(p, access.AnyAuthenticated); err != nil {
		return nil, err
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanRead(p, post.AuthorID, post.IsPublic()) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	return post, nil
}

// ListPending is the moderation queue, oldest first.
func (s *Service) ListPending(ctx context.Context, p *access.Principal) ([]Post, error) {
	if err := access.Authorize(p, access.AdminOnly); err != nil {
		return nil, err
	}
	return s.repo.ListByStatus(ctx, StatusPending, OldestFirst)
}

func (s *Service) ListMine(ctx context.Context, p *access.Principal) ([]Post, error) {
	if err := access.Authorize(p, access.Authors); err != nil {
		return nil, err
	}
	return s.repo.ListByAuthor(ctx, p.UserID)
}

func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *Service) InvalidatePublicFeed(ctx context.Context) error {
	return s.cache.InvalidatePublicFeed(ctx)
}

func (s *Service) invalidate(ctx context.Context, postID string) {
	if err := s.cache.InvalidatePublicFeed(ctx); err != nil {
		slog.WarnContext(ctx, "public feed invalidation failed",
			"post_id", postID,
			"error", err,
		)
	}
}

func checkFields(title, content string) error {
	if title == "" || content == "" {
		return ErrEmptyField
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
