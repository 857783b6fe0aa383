// AngelaMos | 2026
// routes_test.go

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/auth"
	"github.com/carterperez-dev/postgate/internal/config"
	"github.com/carterperez-dev/postgate/internal/core"
	"github.com/carterperez-dev/postgate/internal/middleware"
	"github.com/carterperez-dev/postgate/internal/post"
	"github.com/carterperez-dev/postgate/internal/user"
)

type userStore struct {
	mu    sync.Mutex
	users map[string]user.User
}

func (s *userStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.Email == u.Email {
			return core.ErrDuplicateKey
		}
	}
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = *u
	return nil
}

func (s *userStore) GetByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, core.ErrNotFound
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *userStore) List(context.Context) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *userStore) UpdateRole(_ context.Context, id string, role access.Role) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return &u, nil
}

func (s *userStore) UpdatePasswordHash(context.Context, string, string) error { return nil }

func (s *userStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *userStore) CountByRole(context.Context) (map[access.Role]int, error) {
	return map[access.Role]int{}, nil
}

func (s *userStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type postStore struct {
	mu    sync.Mutex
	posts map[string]post.Post
	seq   int
}

func (s *postStore) Create(_ context.Context, p *post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	p.CreatedAt = time.Unix(int64(s.seq), 0).UTC()
	p.UpdatedAt = p.CreatedAt
	s.posts[p.ID] = *p
	return nil
}

func (s *postStore) GetByID(_ context.Context, id string) (*post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		return &p, nil
	}
	return nil, core.ErrNotFound
}

func (s *postStore) GetByIDForUpdate(ctx context.Context, id string) (*post.Post, error) {
	return s.GetByID(ctx, id)
}

func (s *postStore) UpdateContent(_ context.Context, p *post.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	p.UpdatedAt = time.Unix(int64(s.seq), 0).UTC()
	s.posts[p.ID] = *p
	return nil
}

func (s *postStore) UpdateStatus(ctx context.Context, p *post.Post) error {
	return s.UpdateContent(ctx, p)
}

func (s *postStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *postStore) ListByStatus(_ context.Context, status post.Status, _ post.Order) ([]post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []post.Post{}
	for _, p := range s.posts {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *postStore) ListByAuthor(_ context.Context, authorID string) ([]post.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []post.Post{}
	for _, p := range s.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *postStore) CountByStatus(context.Context) (map[post.Status]int, error) {
	return map[post.Status]int{}, nil
}

func (s *postStore) WithTx(_ context.Context, fn func(post.Repository) error) error {
	return fn(s)
}

type app struct {
	handler http.Handler
	users   *user.Service
}

func newApp(t *testing.T) *app {
	t.Helper()

	hasher, err := core.NewHasher(config.SecurityConfig{
		ArgonMemoryKiB:   1024,
		ArgonIterations:  1,
		ArgonParallelism: 1,
	})
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(config.JWTConfig{
		Secret:            "0123456789abcdef0123456789abcdef",
		AccessTokenExpire: time.Hour,
	})
	require.NoError(t, err)

	postSvc := post.NewService(&postStore{posts: map[string]post.Post{}}, nil, nil)
	userSvc := user.NewService(&userStore{users: map[string]user.User{}}, hasher, postSvc)

	r := chi.NewRouter()
	Mount(r, Routes{
		Authenticator: middleware.Authenticator(tokens, userSvc),
		Auth:          auth.NewHandler(auth.NewService(tokens, user.NewAuthProvider(userSvc))),
		Users:         user.NewHandler(userSvc),
		Posts:         post.NewHandler(postSvc),
	})

	return &app{handler: r, users: userSvc}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *core.ErrorBody `json:"error"`
}

func (a *app) call(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (a *app) login(t *testing.T, email, password string) auth.LoginResponse {
	t.Helper()
	status, env := a.call(t, http.MethodPost, "/v1/auth/login", "",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password))
	require.Equal(t, http.StatusOK, status)

	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	return resp
}

func (a *app) publicIDs(t *testing.T) []string {
	t.Helper()
	status, env := a.call(t, http.MethodGet, "/v1/public/posts", "", "")
	require.Equal(t, http.StatusOK, status)

	var posts []post.PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestScenario_ModerationLifecycle(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	status, _ := a.call(t, http.MethodPost, "/v1/auth/register", "",
		`{"email":"a@x.com","name":"A","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, status)

	author := a.login(t, "a@x.com", "pw1")
	assert.Equal(t, "AUTHOR", author.Role)
	assert.Equal(t, "Bearer", author.TokenType)

	status, env := a.call(t, http.MethodPost, "/v1/posts", author.Token,
		`{"title":"T","content":"C"}`)
	require.Equal(t, http.StatusCreated, status)
	var created post.PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "PENDING", created.Status)

	_, err := a.users.EnsureAdmin(ctx, config.AdminConfig{
		Email:    "root@x.com",
		Password: "root-pw",
		Name:     "Root",
	})
	require.NoError(t, err)
	admin := a.login(t, "root@x.com", "root-pw")
	assert.Equal(t, "ADMIN", admin.Role)

	status, _ = a.call(t, http.MethodPut, "/v1/admin/posts/"+created.ID+"/status", author.Token,
		`{"status":"APPROVED"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = a.call(t, http.MethodPut, "/v1/admin/posts/"+created.ID+"/status", admin.Token,
		`{"status":"APPROVED"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, a.publicIDs(t), created.ID)

	status, env = a.call(t, http.MethodPut, "/v1/posts/"+created.ID, author.Token,
		`{"title":"T2"}`)
	require.Equal(t, http.StatusOK, status)
	var edited post.PostResponse
	require.NoError(t, json.Unmarshal(env.Data, &edited))
	assert.Equal(t, "PENDING", edited.Status)
	assert.NotContains(t, a.publicIDs(t), created.ID)
}

func TestScenario_DuplicateRegistration(t *testing.T) {
	a := newApp(t)

	status, _ := a.call(t, http.MethodPost, "/v1/auth/register", "",
		`{"email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env := a.call(t, http.MethodPost, "/v1/auth/register", "",
		`{"email":"A@X.com","password":"pw2"}`)
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DUPLICATE", env.Error.Code)
}

func TestScenario_LoginFailuresLookAlike(t *testing.T) {
	a := newApp(t)

	status, _ := a.call(t, http.MethodPost, "/v1/auth/register", "",
		`{"email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, status)

	wrongStatus, wrong := a.call(t, http.MethodPost, "/v1/auth/login", "",
		`{"email":"a@x.com","password":"nope"}`)
	unknownStatus, unknown := a.call(t, http.MethodPost, "/v1/auth/login", "",
		`{"email":"ghost@x.com","password":"pw1"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongStatus)
	assert.Equal(t, wrongStatus, unknownStatus)
	assert.Equal(t, wrong.Error, unknown.Error)
}

func TestScenario_DeletedUserTokenRejected(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	status, _ := a.call(t, http.MethodPost, "/v1/auth/register", "",
		`{"email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, status)
	author := a.login(t, "a@x.com", "pw1")

	_, err := a.users.EnsureAdmin(ctx, config.AdminConfig{Email: "root@x.com", Password: "root-pw"})
	require.NoError(t, err)
	admin := a.login(t, "root@x.com", "root-pw")

	status, _ = a.call(t, http.MethodDelete, "/v1/admin/users/"+author.User.ID, admin.Token, "")
	require.Equal(t, http.StatusNoContent, status)

	status, env := a.call(t, http.MethodGet, "/v1/auth/me", author.Token, "")
	assert.Equal(t, http.StatusUnauthorized, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "USER_NOT_FOUND", env.Error.Code)
}

func TestScenario_RoleChangeTakesEffectImmediately(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	status, _ := a.call(t, http.MethodPost, "/v1/auth/register", "",
		`{"email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusCreated, status)
	author := a.login(t, "a@x.com", "pw1")

	_, err := a.users.EnsureAdmin(ctx, config.AdminConfig{Email: "root@x.com", Password: "root-pw"})
	require.NoError(t, err)
	admin := a.login(t, "root@x.com", "root-pw")

	status, _ = a.call(t, http.MethodPut, "/v1/admin/users/"+author.User.ID+"/role", admin.Token,
		`{"role":"VIEWER"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = a.call(t, http.MethodPost, "/v1/posts", author.Token, `{"title":"T","content":"C"}`)
	assert.Equal(t, http.StatusForbidden, status, "stored role wins over the token's")

	status, env := a.call(t, http.MethodGet, "/v1/admin/users/count", admin.Token, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"total_users":2}`, string(env.Data))
}
