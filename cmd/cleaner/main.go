package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"draftforge/db"
	"draftforge/internal/model"
	"draftforge/internal/repository"
	"draftforge/pkg/clean"
)

const (
	maxRetries  = 3
	popTimeout  = 5 * time.Second
	errorKeyTTL = 24 * time.Hour
)

type postStore interface {
	GetByID(ctx context.Context, id string) (*model.Post, error)
	UpdateCleanContent(ctx context.Context, id, cleanContent string) error
}

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	err = db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	postRepo := repository.NewPostRepository(db.DB, "")

	pop := func() (string, error) {
		return db.PopFromQueue(db.CleanQueueKey, popTimeout)
	}
	consume(context.Background(), postRepo, pop, requeue)
}

// consume pops post IDs and cleans them until the queue fails. A pop that
// times out on an empty queue is not a failure, just nothing to do yet.
func consume(ctx context.Context, store postStore, pop func() (string, error), requeue func(string)) {
	for {
		id, err := pop()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			slog.Error("error popping from Redis queue", "error", err)
			return
		}

		if err := cleanPost(ctx, store, id); err != nil {
			slog.Error("error cleaning post", "error", err, "post_id", id)
			requeue(id)
			continue
		}

		slog.Info("post cleaned successfully", "post_id", id)
	}
}

func cleanPost(ctx context.Context, store postStore, id string) error {
	post, err := store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post == nil {
		slog.Warn("post not found in DB", "post_id", id)
		return nil
	}

	cleaned, err := clean.Text(post.Content)
	if err != nil {
		return err
	}
	return store.UpdateCleanContent(ctx, id, cleaned)
}

// requeue puts a failed post back on the queue, moving it to the dead
// letter list once it has failed maxRetries times.
func requeue(id string) {
	errorKey := "draftforge:clean:errors:" + id
	count, err := db.Redis.Incr(db.Ctx, errorKey).Result()
	if err != nil {
		slog.Error("error tracking clean failures", "error", err, "post_id", id)
		return
	}
	db.Redis.Expire(db.Ctx, errorKey, errorKeyTTL)

	if count >= maxRetries {
		slog.Warn("post exceeded max clean retries, dead-lettering", "post_id", id, "attempts", count)
		if err := db.PushToQueue(db.DeadLetterKey, id); err != nil {
			slog.Error("error pushing to dead letter queue", "error", err, "post_id", id)
		}
		return
	}

	if err := db.PushToQueue(db.CleanQueueKey, id); err != nil {
		slog.Error("error requeueing post", "error", err, "post_id", id)
	}
}
