package model

import "time"

// ResearchDoc is one document fetched from a research platform (search API,
// Wikipedia). Docs with a URL get a stable content-derived ID so re-fetching
// the same result upserts instead of duplicating.
type ResearchDoc struct {
	ID           string
	Title        string
	Author       string
	RawContent   string
	CleanContent string
	URL          string
	Source       string
	FetchedAt    time.Time
}
