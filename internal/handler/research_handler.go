package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"draftforge/internal/model"
	"draftforge/pkg/research"
)

type ResearchStore interface {
	SaveDocs(ctx context.Context, docs []model.ResearchDoc) error
	GetBySource(ctx context.Context, source string) ([]model.ResearchDoc, error)
}

type ResearchHandler struct {
	clients map[string]research.Client
	store   ResearchStore
}

func NewResearchHandler(clients []research.Client, store ResearchStore) *ResearchHandler {
	byName := make(map[string]research.Client, len(clients))
	for _, client := range clients {
		byName[client.Name()] = client
	}
	return &ResearchHandler{clients: byName, store: store}
}

func (h *ResearchHandler) Fetch(c *gin.Context) {
	var req ResearchFetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid research fetch payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.ResearchQuestions) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "research_questions are required"})
		return
	}
	for _, q := range req.ResearchQuestions {
		if _, ok := h.clients[q.Platform]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform: " + q.Platform})
			return
		}
	}

	var docs []model.ResearchDoc
	for _, q := range req.ResearchQuestions {
		client := h.clients[q.Platform]
		fetched, err := client.Fetch(c.Request.Context(), q.Keywords, req.Limit)
		if err != nil {
			slog.Error("research fetch failed", "platform", q.Platform, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
			return
		}
		docs = append(docs, fetched...)
	}

	if len(docs) > 0 {
		if err := h.store.SaveDocs(c.Request.Context(), docs); err != nil {
			slog.Error("error saving research docs", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	c.JSON(http.StatusOK, docsResponse(docs))
}

// Docs returns previously fetched research documents for one platform.
func (h *ResearchHandler) Docs(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source is required"})
		return
	}
	if _, ok := h.clients[source]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown platform: " + source})
		return
	}

	docs, err := h.store.GetBySource(c.Request.Context(), source)
	if err != nil {
		slog.Error("error fetching research docs", "source", source, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, docsResponse(docs))
}

func docsResponse(docs []model.ResearchDoc) ResearchFetchResponse {
	res := ResearchFetchResponse{Docs: []ResearchDocResponse{}, Total: len(docs)}
	for _, doc := range docs {
		res.Docs = append(res.Docs, ResearchDocResponse{
			ID:      doc.ID,
			Title:   doc.Title,
			Author:  doc.Author,
			Content: doc.CleanContent,
			URL:     doc.URL,
			Source:  doc.Source,
		})
	}
	return res
}
