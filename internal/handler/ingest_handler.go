package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"draftforge/internal/model"
)

type Ingestor interface {
	Run(ctx context.Context, limit int) error
	RetryIncomplete(ctx context.Context) error
}

type LedgerReader interface {
	FindIncompletePages(ctx context.Context) (map[int][]int, error)
	BatchRuns(ctx context.Context, batchNumber int) ([]model.BatchLog, error)
	PageStatuses(ctx context.Context, batchNumber int) ([]model.PageStatus, error)
}

type IngestHandler struct {
	ingestor Ingestor
	ledger   LedgerReader
	source   string
}

func NewIngestHandler(ingestor Ingestor, ledger LedgerReader, source string) *IngestHandler {
	return &IngestHandler{ingestor: ingestor, ledger: ledger, source: source}
}

func (h *IngestHandler) Run(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("invalid ingest payload", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Source != h.source {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown source"})
		return
	}

	if err := h.ingestor.Run(c.Request.Context(), req.Limit); err != nil {
		slog.Error("ingestion run failed", "source", req.Source, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, IngestResponse{Source: req.Source, Status: "completed"})
}

func (h *IngestHandler) Retry(c *gin.Context) {
	if err := h.ingestor.RetryIncomplete(c.Request.Context()); err != nil {
		slog.Error("ingestion retry failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(http.StatusOK, IngestResponse{Source: h.source, Status: "completed"})
}

func (h *IngestHandler) Status(c *gin.Context) {
	incomplete, err := h.ledger.FindIncompletePages(c.Request.Context())
	if err != nil {
		slog.Error("error fetching ingest status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	batches := make([]int, 0, len(incomplete))
	for batch := range incomplete {
		batches = append(batches, batch)
	}
	sort.Ints(batches)

	res := IngestStatusResponse{Incomplete: []BatchStatusResponse{}}
	for _, batch := range batches {
		pages := incomplete[batch]
		sort.Ints(pages)
		res.Incomplete = append(res.Incomplete, BatchStatusResponse{
			BatchNumber: batch,
			Pages:       pages,
		})
	}
	c.JSON(http.StatusOK, res)
}

// Batch returns one batch's run history and per-page statuses.
func (h *IngestHandler) Batch(c *gin.Context) {
	batchNumber, err := strconv.Atoi(c.Param("batch"))
	if err != nil {
		slog.Warn("invalid batch number", "value", c.Param("batch"), "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid batch number"})
		return
	}

	runs, err := h.ledger.BatchRuns(c.Request.Context(), batchNumber)
	if err != nil {
		slog.Error("error fetching batch runs", "batch", batchNumber, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	pages, err := h.ledger.PageStatuses(c.Request.Context(), batchNumber)
	if err != nil {
		slog.Error("error fetching page statuses", "batch", batchNumber, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if len(runs) == 0 && len(pages) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}

	res := BatchDetailResponse{
		BatchNumber: batchNumber,
		Runs:        []BatchRunResponse{},
		Pages:       []PageStatusResponse{},
	}
	for _, run := range runs {
		res.Runs = append(res.Runs, BatchRunResponse{
			ID:        run.ID,
			Status:    run.Status,
			CreatedAt: run.CreatedAt.Format(time.RFC3339),
		})
	}
	for _, page := range pages {
		res.Pages = append(res.Pages, PageStatusResponse{
			PageNumber: page.PageNumber,
			Status:     page.Status,
			UpdatedAt:  page.UpdatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, res)
}
