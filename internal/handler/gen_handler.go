package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"draftforge/pkg/gen"
)

type Generator interface {
	GenerateResearchQuestions(ctx context.Context, req gen.ResearchQuestionsRequest) (*gen.ResearchQuestionsResponse, error)
	GenerateHeadlines(ctx context.Context, req gen.HeadlinesRequest) (*gen.HeadlinesResponse, error)
	GenerateDraft(ctx context.Context, req gen.DraftRequest) (*gen.DraftResponse, error)
	GenerateTopicSentences(ctx context.Context, req gen.TopicSentencesRequest) (*gen.TopicSentencesResponse, error)
	GenerateFullContent(ctx context.Context, req gen.FullContentRequest) (*gen.FullContentResponse, error)
	EditContent(ctx context.Context, req gen.EditContentRequest) (*gen.EditContentResponse, error)
}

type GenerateHandler struct {
	pipeline Generator
}

func NewGenerateHandler(pipeline Generator) *GenerateHandler {
	return &GenerateHandler{pipeline: pipeline}
}

func (h *GenerateHandler) ResearchQuestions(c *gin.Context) {
	var req gen.ResearchQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid research questions payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Topics) == 0 || len(req.Platforms) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topics and platforms are required"})
		return
	}

	resp, err := h.pipeline.GenerateResearchQuestions(c.Request.Context(), req)
	if err != nil {
		h.fail(c, gen.StageResearchQuestions, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) Headlines(c *gin.Context) {
	var req gen.HeadlinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid headlines payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Topics) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topics are required"})
		return
	}

	resp, err := h.pipeline.GenerateHeadlines(c.Request.Context(), req)
	if err != nil {
		h.fail(c, gen.StageHeadlines, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) Draft(c *gin.Context) {
	var req gen.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid draft payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Headline == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "headline is required"})
		return
	}

	resp, err := h.pipeline.GenerateDraft(c.Request.Context(), req)
	if err != nil {
		h.fail(c, gen.StageDraft, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) TopicSentences(c *gin.Context) {
	var req gen.TopicSentencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid topic sentences payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.Structure) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "structure is required"})
		return
	}

	resp, err := h.pipeline.GenerateTopicSentences(c.Request.Context(), req)
	if err != nil {
		h.fail(c, gen.StageTopicSentences, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) FullContent(c *gin.Context) {
	var req gen.FullContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid full content payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.DraftOutlines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "draft_outlines are required"})
		return
	}

	resp, err := h.pipeline.GenerateFullContent(c.Request.Context(), req)
	if err != nil {
		h.fail(c, gen.StageFullContent, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GenerateHandler) Edit(c *gin.Context) {
	var req gen.EditContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid edit payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if len(req.DraftOutlines) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "draft_outlines are required"})
		return
	}
	if req.EditType != gen.EditStructure && req.EditType != gen.EditFlair {
		c.JSON(http.StatusBadRequest, gin.H{"error": "edit_type must be structure or flair"})
		return
	}

	resp, err := h.pipeline.EditContent(c.Request.Context(), req)
	if err != nil {
		h.fail(c, gen.StageEditContent, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// fail logs the real cause and keeps the response opaque.
func (h *GenerateHandler) fail(c *gin.Context, stage string, err error) {
	slog.Error("generation stage failed", "stage", stage, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}
