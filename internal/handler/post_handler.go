package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"draftforge/internal/model"
)

type PostStore interface {
	GetFeed(ctx context.Context, limit, offset int) ([]model.Post, error)
	GetFeedTotal(ctx context.Context) (int, error)
}

type PostHandler struct {
	repository PostStore
}

func NewPostHandler(repository PostStore) *PostHandler {
	return &PostHandler{repository: repository}
}

func (h *PostHandler) GetFeed(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	posts, err := h.repository.GetFeed(c.Request.Context(), limit, offset)
	if err != nil {
		slog.Error("error fetching post feed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.repository.GetFeedTotal(c.Request.Context())
	if err != nil {
		slog.Error("error fetching post feed total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := PostFeedResponse{
		Posts:  []PostResponse{},
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, p := range posts {
		res.Posts = append(res.Posts, PostResponse{
			ID:           p.ID,
			Title:        p.Title,
			Excerpt:      p.Excerpt,
			CleanContent: p.CleanContent,
			Link:         p.Link,
			AuthorName:   p.AuthorName,
			Source:       p.Source,
			DateGMT:      p.DateGMT.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *PostHandler) GetHealth(c *gin.Context) {
	if _, err := h.repository.GetFeedTotal(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", raw, "error", err)
		return defaultValue
	}
	return value
}

func getQueryLimit(c *gin.Context) int {
	const (
		defaultLimit = 10
		maxLimit     = 100
	)

	limit := getQueryInt("limit", defaultLimit, c)
	if limit < 1 {
		slog.Warn("invalid query parameter, using default", "param", "limit", "value", limit, "default", defaultLimit)
		return defaultLimit
	}
	if limit > maxLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", limit, "max", maxLimit)
		return maxLimit
	}
	return limit
}

func getQueryOffset(c *gin.Context) int {
	offset := getQueryInt("offset", 0, c)
	if offset < 0 {
		slog.Warn("invalid query parameter, using default", "param", "offset", "value", offset, "default", 0)
		return 0
	}
	return offset
}
