// AngelaMos | 2026
// handler.go

package auth

import (
	"errors"
	"net/http"

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

// RegisterRoutes mounts /auth. Register and login are open; /auth/me runs
// behind authenticator.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.With(authenticator).Get("/me", h.Me)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, created)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !core.DecodeJSON(w, r, h.validator, &req) {
		return
	}

	session, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, session)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())
	if principal == nil {
		core.JSONError(w, core.UnauthorizedError("authentication required"))
		return
	}

	me, err := h.service.GetCurrentUser(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, me)
}

// writeError keeps a single message for every credential failure so the
// response never tells which half of the pair was wrong.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		core.JSONError(w, core.UnauthorizedError("invalid email or password"))
	case errors.Is(err, ErrEmailExists):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	default:
		core.JSONError(w, err)
	}
}
