package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"draftforge/internal/model"
	"draftforge/pkg/clean"
)

const wikipediaBanner = "From Wikipedia, the free encyclopedia"

// WikipediaClient searches Wikipedia per keyword and fetches the parsed page
// body for every hit.
type WikipediaClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWikipediaClient(baseURL string) *WikipediaClient {
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org/w/api.php"
	}
	return &WikipediaClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *WikipediaClient) Name() string { return "wikipedia" }

func (c *WikipediaClient) Fetch(ctx context.Context, keywords []string, limit int) ([]model.ResearchDoc, error) {
	var docs []model.ResearchDoc
	for _, keyword := range keywords {
		titles, err := c.search(ctx, keyword, limit)
		if err != nil {
			return nil, fmt.Errorf("wikipedia search %q: %w", keyword, err)
		}

		for _, title := range titles {
			html, err := c.parsePage(ctx, title)
			if err != nil {
				return nil, fmt.Errorf("wikipedia parse %q: %w", title, err)
			}

			text, err := clean.Text(html)
			if err != nil {
				return nil, fmt.Errorf("wikipedia clean %q: %w", title, err)
			}
			text = clean.StripBoilerplate(text, wikipediaBanner)

			pageURL := "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(title, " ", "_")
			docs = append(docs, model.ResearchDoc{
				ID:           docID(pageURL),
				Title:        title,
				Author:       "Wikipedia",
				RawContent:   html,
				CleanContent: text,
				URL:          pageURL,
				Source:       c.Name(),
				FetchedAt:    time.Now().UTC(),
			})
		}
	}
	return docs, nil
}

func (c *WikipediaClient) search(ctx context.Context, keyword string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", keyword)
	params.Set("format", "json")
	params.Set("srlimit", strconv.Itoa(limit))

	var raw struct {
		Query struct {
			Search []struct {
				Title string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &raw); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(raw.Query.Search))
	for _, s := range raw.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

func (c *WikipediaClient) parsePage(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("format", "json")
	params.Set("prop", "text")

	var raw struct {
		Parse struct {
			Text map[string]string `json:"text"`
		} `json:"parse"`
	}
	if err := c.get(ctx, params, &raw); err != nil {
		return "", err
	}

	return raw.Parse.Text["*"], nil
}

func (c *WikipediaClient) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
