package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/redis/go-redis/v9"

	"draftforge/internal/model"
)

type fakePostStore struct {
	posts   map[string]*model.Post
	cleaned map[string]string
	err     error
}

func (f *fakePostStore) GetByID(_ context.Context, id string) (*model.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.posts[id], nil
}

func (f *fakePostStore) UpdateCleanContent(_ context.Context, id, cleanContent string) error {
	if f.cleaned == nil {
		f.cleaned = make(map[string]string)
	}
	f.cleaned[id] = cleanContent
	return nil
}

// scriptedPop returns each result in order, then a fatal error so the loop
// under test always terminates.
func scriptedPop(results []popResult) func() (string, error) {
	i := 0
	return func() (string, error) {
		if i >= len(results) {
			return "", errors.New("connection lost")
		}
		r := results[i]
		i++
		return r.id, r.err
	}
}

type popResult struct {
	id  string
	err error
}

func TestConsume_EmptyQueueTimeoutIsNotFatal(t *testing.T) {
	store := &fakePostStore{posts: map[string]*model.Post{
		"7": {ID: "7", Content: "<p>hello</p>"},
	}}

	// Two idle timeouts before the post arrives; the worker must ride
	// through them and still process the post.
	pop := scriptedPop([]popResult{
		{err: redis.Nil},
		{err: redis.Nil},
		{id: "7"},
	})

	consume(context.Background(), store, pop, func(string) {})

	assert.Equal(t, store.cleaned["7"], "hello")
}

func TestConsume_WrappedNilIsNotFatal(t *testing.T) {
	store := &fakePostStore{posts: map[string]*model.Post{
		"9": {ID: "9", Content: "<p>still here</p>"},
	}}

	pop := scriptedPop([]popResult{
		{err: fmt.Errorf("pop: %w", redis.Nil)},
		{id: "9"},
	})

	consume(context.Background(), store, pop, func(string) {})

	assert.Equal(t, store.cleaned["9"], "still here")
}

func TestConsume_StopsOnRealError(t *testing.T) {
	store := &fakePostStore{}

	calls := 0
	pop := func() (string, error) {
		calls++
		return "", errors.New("connection refused")
	}

	consume(context.Background(), store, pop, func(string) {})

	assert.Equal(t, calls, 1)
}

func TestConsume_RequeuesOnCleanFailure(t *testing.T) {
	store := &fakePostStore{err: errors.New("DB down")}

	var requeued []string
	pop := scriptedPop([]popResult{{id: "3"}})

	consume(context.Background(), store, pop, func(id string) {
		requeued = append(requeued, id)
	})

	assert.Equal(t, requeued, []string{"3"})
}

func TestCleanPost_MissingPostIsSkipped(t *testing.T) {
	store := &fakePostStore{posts: map[string]*model.Post{}}

	err := cleanPost(context.Background(), store, "404")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(store.cleaned), 0)
}
