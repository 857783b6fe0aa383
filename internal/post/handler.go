// AngelaMos | 2026
// handler.go

package post

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/postgate/internal/core"
	"github.com/carterperez-dev/postgate/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Route("/public/posts", func(r chi.Router) {
		r.Get("/", h.ListPublic)
		r.Get("/{postID}", h.GetPublic)
	})
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/posts", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/{postID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuthor)

			r.Post("/", h.Create)
			r.Get("/mine", h.ListMine)
			r.Put("/{postID}", h.Update)
			r.Delete("/{postID}", h.Delete)
		})
	})
}

// RegisterAdminRoutes mounts moderation endpoints on a router that already
// enforces the ADMIN role.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/pending", h.ListPending)
		r.Put("/{postID}/status", h.UpdateStatus)
		r.Delete("/{postID}", h.Delete)
	})
}

func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPublic(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponseList(posts))
}

func (h *Handler) GetPublic(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPublic(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponse(post))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "postID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponse(post))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	post, err := h.service.Create(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		CreateInput{Title: req.Title, Content: req.Content},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToPostResponse(post))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListMine(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponseList(posts))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	post, err := h.service.Edit(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "postID"),
		UpdateInput{Title: req.Title, Content: req.Content},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponse(post))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "postID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPending(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponseList(posts))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	post, err := h.service.SetStatus(
		r.Context(),
		middleware.GetPrincipal(r.Context()),
		chi.URLParam(r, "postID"),
		req.Status,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToPostResponse(post))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		core.BadRequest(w, "status must be one of: "+statusNames())
	case errors.Is(err, ErrEmptyField):
		core.BadRequest(w, "title and content must not be empty")
	case errors.Is(err, ErrNoChanges):
		core.BadRequest(w, "provide title or content to update")
	case errors.Is(err, ErrTitleTooLong):
		core.BadRequest(w, "title must be at most 255 characters")
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "post")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "you can only modify your own posts")
	default:
		core.JSONError(w, err)
	}
}

func statusNames() string {
	statuses := Statuses()
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	return strings.Join(names, ", ")
}
