package model

import "time"

const (
	PageStatusStarted = "started"
	PageStatusDone    = "done"
	PageStatusNoPosts = "no posts"
)

// Post is a normalized record extracted from one source page.
type Post struct {
	ID            string
	Title         string
	Content       string
	CleanContent  string
	Excerpt       string
	Link          string
	Status        string
	AuthorID      int64
	AuthorName    string
	Editor        string
	CommentsCount int
	Source        string
	DateGMT       time.Time
	ModifiedGMT   time.Time
	BatchNumber   int
	PageNumber    int
	FetchedAt     time.Time
}

// PageStatus tracks processing progress for one page of one batch.
// Keyed by (BatchNumber, PageNumber); the latest write wins.
type PageStatus struct {
	BatchNumber int
	PageNumber  int
	Status      string
	UpdatedAt   time.Time
}

// BatchLog records that a batch run has begun. Rows are appended, never
// updated; terminal state is inferred from the batch's PageStatus rows.
type BatchLog struct {
	ID          int64
	BatchNumber int
	Status      string
	CreatedAt   time.Time
}
