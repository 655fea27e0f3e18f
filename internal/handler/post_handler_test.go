package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"draftforge/internal/model"
)

type fakePostStore struct {
	feed      []model.Post
	feedTotal int
	err       error
}

func (f *fakePostStore) GetFeed(_ context.Context, limit, offset int) ([]model.Post, error) {
	return f.feed, f.err
}

func (f *fakePostStore) GetFeedTotal(_ context.Context) (int, error) {
	return f.feedTotal, f.err
}

func newPostRouter(store PostStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewPostHandler(store)
	r.GET("/posts", h.GetFeed)
	r.GET("/health", h.GetHealth)
	return r
}

func TestGetPosts_ReturnsFeed(t *testing.T) {
	store := &fakePostStore{
		feed: []model.Post{
			{ID: "42", Title: "Test post", AuthorName: "Ada L", DateGMT: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		},
		feedTotal: 1,
	}
	r := newPostRouter(store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts?limit=10&offset=0", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res PostFeedResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, res.Total, 1)
	assert.Equal(t, len(res.Posts), 1)
	assert.Equal(t, res.Posts[0].Title, "Test post")
	assert.Equal(t, res.Posts[0].DateGMT, "2024-05-01T12:00:00Z")
}

func TestGetPosts_DefaultLimit(t *testing.T) {
	r := newPostRouter(&fakePostStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts", nil)
	r.ServeHTTP(w, req)

	var res PostFeedResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, res.Limit, 10)
	assert.Equal(t, res.Offset, 0)
}

func TestGetPosts_ClampsLimit(t *testing.T) {
	r := newPostRouter(&fakePostStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts?limit=5000", nil)
	r.ServeHTTP(w, req)

	var res PostFeedResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, res.Limit, 100)
}

func TestGetPosts_DBError(t *testing.T) {
	r := newPostRouter(&fakePostStore{err: errors.New("DB down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/posts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetHealth(t *testing.T) {
	r := newPostRouter(&fakePostStore{feedTotal: 3})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetHealth_DBDown(t *testing.T) {
	r := newPostRouter(&fakePostStore{err: errors.New("DB down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
