package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"

	"draftforge/internal/model"
)

type pageKey struct {
	batch int
	page  int
}

// fakeLedger mimics the upsert-by-(batch,page) semantics of the real table.
type fakeLedger struct {
	mu          sync.Mutex
	batchStarts []int
	statuses    map[pageKey]string
	writes      int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{statuses: make(map[pageKey]string)}
}

func (l *fakeLedger) LogBatchStart(ctx context.Context, batchNumber int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.batchStarts = append(l.batchStarts, batchNumber)
	return nil
}

func (l *fakeLedger) LogPageStatus(ctx context.Context, batchNumber, pageNumber int, status string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses[pageKey{batchNumber, pageNumber}] = status
	l.writes++
	return nil
}

func (l *fakeLedger) FindIncompletePages(ctx context.Context) (map[int][]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[int][]int)
	for k, status := range l.statuses {
		if status != model.PageStatusDone {
			out[k.batch] = append(out[k.batch], k.page)
		}
	}
	return out, nil
}

type fakeFetcher struct {
	mu         sync.Mutex
	totalPages int
	failPages  map[int]error
	emptyPages map[int]bool
	fetched    []int
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) TotalPages(ctx context.Context) (int, error) {
	return f.totalPages, nil
}

func (f *fakeFetcher) FetchPage(ctx context.Context, page int) ([]model.Post, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, page)
	f.mu.Unlock()

	if err := f.failPages[page]; err != nil {
		return nil, err
	}
	if f.emptyPages[page] {
		return nil, nil
	}
	return []model.Post{{ID: fmt.Sprintf("post-%d", page), Title: "t"}}, nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved map[pageKey][]model.Post
	err   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[pageKey][]model.Post)}
}

func (s *fakeStore) SavePosts(ctx context.Context, posts []model.Post, batchNumber, pageNumber int) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[pageKey{batchNumber, pageNumber}] = posts
	return nil
}

type fakeQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *fakeQueue) Enqueue(ctx context.Context, postID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, postID)
	return nil
}

func TestProcessBatchFaultIsolation(t *testing.T) {
	fetcher := &fakeFetcher{
		totalPages: 3,
		failPages:  map[int]error{2: errors.New("connection reset")},
	}
	ledger := newFakeLedger()
	store := newFakeStore()

	o := NewOrchestrator(fetcher, ledger, store, nil, 30, 1)
	o.ProcessBatch(context.Background(), 1, []int{1, 2, 3})

	// Pages 1 and 3 made it through despite page 2 failing.
	assert.Equal(t, 3, len(fetcher.fetched))
	assert.Equal(t, 2, len(store.saved))
	assert.Equal(t, model.PageStatusDone, ledger.statuses[pageKey{1, 1}])
	assert.Equal(t, model.PageStatusDone, ledger.statuses[pageKey{1, 3}])

	got := ledger.statuses[pageKey{1, 2}]
	if !strings.HasPrefix(got, "error: ") || !strings.Contains(got, "connection reset") {
		t.Errorf("page 2 status = %q, want error status containing cause", got)
	}
}

func TestProcessBatchNoPosts(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 1, emptyPages: map[int]bool{1: true}}
	ledger := newFakeLedger()
	store := newFakeStore()

	o := NewOrchestrator(fetcher, ledger, store, nil, 30, 1)
	o.ProcessBatch(context.Background(), 1, []int{1})

	assert.Equal(t, model.PageStatusNoPosts, ledger.statuses[pageKey{1, 1}])
	assert.Equal(t, 0, len(store.saved))
}

func TestProcessBatchStoreFailureIsPageError(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 1}
	ledger := newFakeLedger()
	store := newFakeStore()
	store.err = errors.New("constraint violation")

	o := NewOrchestrator(fetcher, ledger, store, nil, 30, 1)
	o.ProcessBatch(context.Background(), 1, []int{1})

	got := ledger.statuses[pageKey{1, 1}]
	if !strings.HasPrefix(got, "error: ") {
		t.Errorf("status = %q, want error status", got)
	}
}

func TestLogPageStatusUpsertIdempotence(t *testing.T) {
	ledger := newFakeLedger()
	ctx := context.Background()

	ledger.LogPageStatus(ctx, 1, 5, model.PageStatusStarted)
	ledger.LogPageStatus(ctx, 1, 5, model.PageStatusDone)
	ledger.LogPageStatus(ctx, 1, 5, model.PageStatusDone)

	// One logical row per key, final status wins.
	assert.Equal(t, 1, len(ledger.statuses))
	assert.Equal(t, model.PageStatusDone, ledger.statuses[pageKey{1, 5}])
}

func TestRunPlansBatchesAndEnqueues(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 5}
	ledger := newFakeLedger()
	store := newFakeStore()
	queue := &fakeQueue{}

	o := NewOrchestrator(fetcher, ledger, store, queue, 2, 2)
	err := o.Run(context.Background(), 0)

	assert.Equal(t, nil, err)
	assert.Equal(t, []int{1, 2, 3}, ledger.batchStarts)
	assert.Equal(t, 5, len(store.saved))
	assert.Equal(t, 5, len(queue.ids))
	for page := 1; page <= 5; page++ {
		batch := (page + 1) / 2
		assert.Equal(t, model.PageStatusDone, ledger.statuses[pageKey{batch, page}])
	}
}

func TestRetryIncompleteReprocessesExactlyNonDone(t *testing.T) {
	fetcher := &fakeFetcher{
		totalPages: 4,
		failPages:  map[int]error{2: errors.New("boom"), 4: errors.New("boom")},
	}
	ledger := newFakeLedger()
	store := newFakeStore()

	o := NewOrchestrator(fetcher, ledger, store, nil, 2, 1)
	err := o.Run(context.Background(), 0)
	assert.Equal(t, nil, err)

	// Clear the failures and retry: only pages 2 and 4 may be refetched.
	fetcher.failPages = nil
	fetcher.fetched = nil

	err = o.RetryIncomplete(context.Background())
	assert.Equal(t, nil, err)

	assert.Equal(t, []int{2, 4}, fetcher.fetched)
	for page := 1; page <= 4; page++ {
		batch := (page + 1) / 2
		assert.Equal(t, model.PageStatusDone, ledger.statuses[pageKey{batch, page}])
	}

	incomplete, _ := ledger.FindIncompletePages(context.Background())
	assert.Equal(t, 0, len(incomplete))
}

func TestRetryIncompleteNothingToDo(t *testing.T) {
	fetcher := &fakeFetcher{totalPages: 2}
	ledger := newFakeLedger()
	store := newFakeStore()

	o := NewOrchestrator(fetcher, ledger, store, nil, 2, 1)
	o.Run(context.Background(), 0)

	fetcher.fetched = nil
	err := o.RetryIncomplete(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(fetcher.fetched))
}
