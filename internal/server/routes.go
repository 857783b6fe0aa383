// AngelaMos | 2026
// routes.go

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/postgate/internal/admin"
	"github.com/carterperez-dev/postgate/internal/auth"
	"github.com/carterperez-dev/postgate/internal/health"
	"github.com/carterperez-dev/postgate/internal/middleware"
	"github.com/carterperez-dev/postgate/internal/post"
	"github.com/carterperez-dev/postgate/internal/user"
)

type Routes struct {
	Authenticator func(http.Handler) http.Handler
	Health        *health.Handler
	Auth          *auth.Handler
	Users         *user.Handler
	Posts         *post.Handler
	Admin         *admin.Handler
}

// Mount registers every endpoint. Everything under /v1/admin passes the
// authenticator and the ADMIN role check before reaching a handler.
func Mount(r chi.Router, rt Routes) {
	if rt.Health != nil {
		rt.Health.RegisterRoutes(r)
	}

	r.Route("/v1", func(r chi.Router) {
		rt.Auth.RegisterRoutes(r, rt.Authenticator)
		rt.Posts.RegisterPublicRoutes(r)
		rt.Posts.RegisterRoutes(r, rt.Authenticator)

		r.Route("/admin", func(r chi.Router) {
			r.Use(rt.Authenticator)
			r.Use(middleware.RequireAdmin)

			rt.Users.RegisterAdminRoutes(r)
			rt.Posts.RegisterAdminRoutes(r)
			if rt.Admin != nil {
				rt.Admin.RegisterRoutes(r)
			}
		})
	})
}
