// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/postgate/internal/access"
	"github.com/carterperez-dev/postgate/internal/post"
)

type userCounts map[access.Role]int

func (c userCounts) CountByRole(context.Context) (map[access.Role]int, error) {
	return c, nil
}

type postCounts struct {
	counts map[post.Status]int
	err    error
}

func (c postCounts) CountByStatus(context.Context) (map[post.Status]int, error) {
	return c.counts, c.err
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestHandler_GetStats(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Users: userCounts{access.RoleAdmin: 1, access.RoleAuthor: 4, access.RoleViewer: 2},
		Posts: postCounts{counts: map[post.Status]int{
			post.StatusPending:  3,
			post.StatusApproved: 5,
			post.StatusRejected: 1,
		}},
		DBPing:    func(context.Context) error { return nil },
		RedisPing: func(context.Context) error { return errors.New("down") },
	})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 7, body.Data.Users.Total)
	assert.Equal(t, 4, body.Data.Users.ByRole["AUTHOR"])
	assert.Equal(t, 9, body.Data.Posts.Total)
	assert.Equal(t, 3, body.Data.Posts.AwaitingReview)
	assert.True(t, body.Data.Database.Healthy)
	assert.False(t, body.Data.Redis.Healthy)
}

func TestHandler_GetStats_CountFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{
		Users: userCounts{},
		Posts: postCounts{err: errors.New("db gone")},
	})

	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db gone")
}
