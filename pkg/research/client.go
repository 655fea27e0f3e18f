// Package research fetches supporting documents for article generation from
// external platforms (a search API, Wikipedia).
package research

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"

	"draftforge/internal/model"
)

// Client fetches research documents for a set of keywords.
type Client interface {
	Fetch(ctx context.Context, keywords []string, limit int) ([]model.ResearchDoc, error)
	Name() string
}

// docID derives a stable ID from the document URL so re-fetching the same
// result upserts instead of inserting a duplicate row. Documents without a
// URL get a fresh random ID.
func docID(url string) string {
	if url == "" {
		return uuid.NewString()
	}
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum)[:16]
}
