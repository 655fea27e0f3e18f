package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"draftforge/internal/model"
)

// PageFetcher retrieves and extracts one page of source posts.
type PageFetcher interface {
	Name() string
	TotalPages(ctx context.Context) (int, error)
	FetchPage(ctx context.Context, page int) ([]model.Post, error)
}

// Ledger persists per-batch and per-page processing status so interrupted
// runs can be resumed.
type Ledger interface {
	LogBatchStart(ctx context.Context, batchNumber int) error
	LogPageStatus(ctx context.Context, batchNumber, pageNumber int, status string) error
	FindIncompletePages(ctx context.Context) (map[int][]int, error)
}

// PostStore persists extracted posts tagged with their batch and page.
type PostStore interface {
	SavePosts(ctx context.Context, posts []model.Post, batchNumber, pageNumber int) error
}

// Enqueuer hands saved post IDs to the cleaning worker. Optional.
type Enqueuer interface {
	Enqueue(ctx context.Context, postID string) error
}

// Orchestrator drives the fetch -> extract -> persist -> log cycle per page.
// Pages within a batch run in parallel up to workers; each page's failure is
// recorded in the ledger and never aborts its siblings.
type Orchestrator struct {
	fetcher   PageFetcher
	ledger    Ledger
	store     PostStore
	queue     Enqueuer
	batchSize int
	workers   int
}

func NewOrchestrator(fetcher PageFetcher, ledger Ledger, store PostStore, queue Enqueuer, batchSize, workers int) *Orchestrator {
	if batchSize <= 0 {
		batchSize = 30
	}
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		fetcher:   fetcher,
		ledger:    ledger,
		store:     store,
		queue:     queue,
		batchSize: batchSize,
		workers:   workers,
	}
}

// Run ingests the whole source, or the first limit pages when limit > 0.
func (o *Orchestrator) Run(ctx context.Context, limit int) error {
	totalPages, err := o.fetcher.TotalPages(ctx)
	if err != nil {
		return fmt.Errorf("fetch pagination metadata: %w", err)
	}

	batches := GenerateBatches(totalPages, o.batchSize, limit)
	slog.Info("ingestion planned", "source", o.fetcher.Name(), "total_pages", totalPages, "batches", len(batches))

	for i, batch := range batches {
		batchNumber := i + 1
		if err := o.ledger.LogBatchStart(ctx, batchNumber); err != nil {
			return fmt.Errorf("log batch %d start: %w", batchNumber, err)
		}
		o.ProcessBatch(ctx, batchNumber, batch)
	}
	return nil
}

// ProcessBatch processes every page in the batch independently. Page results
// land in the ledger as "done", "no posts" or "error: ...".
func (o *Orchestrator) ProcessBatch(ctx context.Context, batchNumber int, pages []int) {
	for _, page := range pages {
		if err := o.ledger.LogPageStatus(ctx, batchNumber, page, model.PageStatusStarted); err != nil {
			slog.Error("error marking page started", "batch", batchNumber, "page", page, "error", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, page := range pages {
		page := page
		g.Go(func() error {
			o.processPage(gctx, batchNumber, page)
			return nil
		})
	}
	g.Wait()
}

func (o *Orchestrator) processPage(ctx context.Context, batchNumber, page int) {
	status, err := o.runPage(ctx, batchNumber, page)
	if err != nil {
		slog.Error("page failed", "batch", batchNumber, "page", page, "error", err)
		status = "error: " + err.Error()
	}
	if err := o.ledger.LogPageStatus(ctx, batchNumber, page, status); err != nil {
		slog.Error("error logging page status", "batch", batchNumber, "page", page, "error", err)
	}
}

func (o *Orchestrator) runPage(ctx context.Context, batchNumber, page int) (string, error) {
	posts, err := o.fetcher.FetchPage(ctx, page)
	if err != nil {
		return "", err
	}
	if len(posts) == 0 {
		return model.PageStatusNoPosts, nil
	}

	if err := o.store.SavePosts(ctx, posts, batchNumber, page); err != nil {
		return "", err
	}

	if o.queue != nil {
		for _, p := range posts {
			if err := o.queue.Enqueue(ctx, p.ID); err != nil {
				slog.Error("error enqueueing post for cleaning", "post_id", p.ID, "error", err)
			}
		}
	}

	slog.Info("page processed", "batch", batchNumber, "page", page, "posts", len(posts))
	return model.PageStatusDone, nil
}

// RetryIncomplete reprocesses exactly the pages whose latest ledger status is
// not "done", grouped by batch. Pages already done are left untouched.
func (o *Orchestrator) RetryIncomplete(ctx context.Context) error {
	incomplete, err := o.ledger.FindIncompletePages(ctx)
	if err != nil {
		return fmt.Errorf("find incomplete pages: %w", err)
	}

	batchNumbers := make([]int, 0, len(incomplete))
	for batchNumber := range incomplete {
		batchNumbers = append(batchNumbers, batchNumber)
	}
	sort.Ints(batchNumbers)

	for _, batchNumber := range batchNumbers {
		pages := incomplete[batchNumber]
		sort.Ints(pages)
		slog.Info("retrying incomplete pages", "batch", batchNumber, "pages", len(pages))
		o.ProcessBatch(ctx, batchNumber, pages)
	}
	return nil
}
