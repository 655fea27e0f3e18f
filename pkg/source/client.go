package source

import (
	"context"
	"draftforge/internal/model"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	maxRetries  = 5
	backoffBase = 1 * time.Second
)

// FetchError is a transient network or HTTP failure that survived the full
// retry budget.
type FetchError struct {
	Page   int
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch page %d: status %d: %v", e.Page, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a malformed source payload. Not retryable: the source
// answered, it just answered with the wrong shape.
type ParseError struct {
	Page  int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse page %d: missing %q in response", e.Page, e.Field)
	}
	return fmt.Sprintf("parse page %d: %v", e.Page, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Client fetches paginated posts from a WordPress-style JSON API, carrying a
// rotating session cookie and backing off on rate limits.
type Client struct {
	source     string
	baseURL    string
	httpClient *http.Client
	cookies    *CookieFile

	// sleep is swapped out in tests to observe backoff intervals.
	sleep func(time.Duration)
}

func NewClient(source, baseURL string, cookies *CookieFile) *Client {
	return &Client{
		source:     source,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cookies:    cookies,
		sleep:      time.Sleep,
	}
}

func (c *Client) Name() string {
	return c.source
}

// TotalPages reads pagination metadata from the first page.
func (c *Client) TotalPages(ctx context.Context) (int, error) {
	raw, err := c.fetchRaw(ctx, 1)
	if err != nil {
		return 0, err
	}
	return *raw.TotalPages, nil
}

// FetchPage retrieves one page and extracts its posts.
func (c *Client) FetchPage(ctx context.Context, page int) ([]model.Post, error) {
	raw, err := c.fetchRaw(ctx, page)
	if err != nil {
		return nil, err
	}
	return extractPosts(raw, c.source, page), nil
}

func (c *Client) fetchRaw(ctx context.Context, page int) (*pageResponse, error) {
	var lastErr error
	var lastStatus int

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			c.sleep(backoffBase * (1 << (attempt - 1)))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s?page=%d", c.baseURL, page), nil)
		if err != nil {
			return nil, &FetchError{Page: page, Err: err}
		}
		c.setHeaders(req)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			lastStatus = 0
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %s", resp.Status)
			lastStatus = resp.StatusCode
			continue
		}

		var raw pageResponse
		err = json.NewDecoder(resp.Body).Decode(&raw)
		resp.Body.Close()
		if err != nil {
			// The server answered 2xx with garbage; retrying will not fix it.
			return nil, &ParseError{Page: page, Err: err}
		}

		if raw.TotalPages == nil {
			return nil, &ParseError{Page: page, Field: "total_pages"}
		}
		if raw.Posts == nil {
			return nil, &ParseError{Page: page, Field: "posts"}
		}

		if newCookie := resp.Header.Get("Set-Cookie"); newCookie != "" && c.cookies != nil {
			if err := c.cookies.Set(newCookie); err != nil {
				return nil, fmt.Errorf("persist rotated cookie: %w", err)
			}
		}

		return &raw, nil
	}

	return nil, &FetchError{Page: page, Status: lastStatus, Err: lastErr}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en-US;q=0.9,en;q=0.8")
	req.Header.Set("Cache-Control", "max-age=0")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	if c.cookies != nil {
		if v := c.cookies.Get(); v != "" {
			req.Header.Set("Cookie", v)
		}
	}
}

type pageResponse struct {
	TotalPages  *int        `json:"total_pages"`
	PerPage     int         `json:"per_page"`
	CurrentPage int         `json:"current_page"`
	Posts       *[]wirePost `json:"posts"`
}

type wirePost struct {
	ID            flexID     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	DateGMT       string     `json:"date_gmt"`
	ModifiedGMT   string     `json:"modified_gmt"`
	Link          string     `json:"link"`
	Status        string     `json:"status"`
	Excerpt       string     `json:"excerpt"`
	Author        wireAuthor `json:"author"`
	Editor        string     `json:"editor"`
	CommentsCount int        `json:"comments_count"`
}

type wireAuthor struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// flexID accepts either a JSON string or a JSON number for post IDs.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

const wpTimeLayout = "2006-01-02T15:04:05"

func extractPosts(raw *pageResponse, source string, page int) []model.Post {
	posts := make([]model.Post, 0, len(*raw.Posts))
	for _, p := range *raw.Posts {
		dateGMT, err := time.Parse(wpTimeLayout, p.DateGMT)
		if err != nil {
			dateGMT = time.Time{}
		}
		modifiedGMT, err := time.Parse(wpTimeLayout, p.ModifiedGMT)
		if err != nil {
			modifiedGMT = time.Time{}
		}

		name := p.Author.FirstName
		if p.Author.LastName != "" {
			if name != "" {
				name += " "
			}
			name += p.Author.LastName
		}

		posts = append(posts, model.Post{
			ID:            string(p.ID),
			Title:         p.Title,
			Content:       p.Content,
			Excerpt:       p.Excerpt,
			Link:          p.Link,
			Status:        p.Status,
			AuthorID:      p.Author.ID,
			AuthorName:    name,
			Editor:        p.Editor,
			CommentsCount: p.CommentsCount,
			Source:        source,
			DateGMT:       dateGMT,
			ModifiedGMT:   modifiedGMT,
			PageNumber:    page,
			FetchedAt:     time.Now().UTC(),
		})
	}
	return posts
}
