// AngelaMos | 2026
// handler_test.go

package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/middleware"
)

type adminFixture struct {
	router http.Handler
	svc    *Service
	admin  *User
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	svc, _, _ := newTestUserService(t)

	admin, err := svc.Register(context.Background(), "root@x.com", "Root", "pw1-long-enough")
	require.NoError(t, err)
	admin, err = svc.UpdateRole(context.Background(), admin.ID, "ADMIN")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := middleware.WithPrincipal(req.Context(), admin.Principal())
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Use(middleware.RequireAdmin)
	NewHandler(svc).RegisterAdminRoutes(r)

	return &adminFixture{router: r, svc: svc, admin: admin}
}

func (f *adminFixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListAndCount(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.Register(context.Background(), "b@x.com", "B", "pw1-long-enough")
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Data []UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	assert.Equal(t, f.admin.ID, list.Data[0].ID)

	rec = f.do(http.MethodGet, "/users/count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"total_users":2}}`, rec.Body.String())
}

func TestHandler_UpdateUserRole(t *testing.T) {
	f := newAdminFixture(t)
	b, err := f.svc.Register(context.Background(), "b@x.com", "B", "pw1-long-enough")
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"promote", "/users/" + b.ID + "/role", `{"role":"ADMIN"}`, http.StatusOK},
		{"invalid role", "/users/" + b.ID + "/role", `{"role":"OWNER"}`, http.StatusBadRequest},
		{"missing role", "/users/" + b.ID + "/role", `{}`, http.StatusBadRequest},
		{"bad body", "/users/" + b.ID + "/role", `{`, http.StatusBadRequest},
		{"unknown user", "/users/nobody/role", `{"role":"VIEWER"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	stored, err := f.svc.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleAdmin, stored.Role)
}

func TestHandler_DeleteUser(t *testing.T) {
	f := newAdminFixture(t)
	b, err := f.svc.Register(context.Background(), "b@x.com", "B", "pw1-long-enough")
	require.NoError(t, err)

	rec := f.do(http.MethodDelete, "/users/"+f.admin.ID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodDelete, "/users/"+b.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(http.MethodDelete, "/users/"+b.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
