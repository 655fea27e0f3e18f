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
)

// SearchMode selects which index of the search API to hit.
type SearchMode string

const (
	// ModeNews queries the news index; results carry a description.
	ModeNews SearchMode = "news"
	// ModeSnippets queries the web index; results carry snippet lists.
	ModeSnippets SearchMode = "snippets"
)

// SearchClient fetches documents from a keyed search API.
type SearchClient struct {
	apiKey     string
	baseURL    string
	mode       SearchMode
	country    string
	httpClient *http.Client
}

func NewSearchClient(apiKey, baseURL string, mode SearchMode, country string) *SearchClient {
	if country == "" {
		country = "us"
	}
	return &SearchClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		mode:       mode,
		country:    country,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *SearchClient) Name() string {
	if c.mode == ModeNews {
		return "search_news"
	}
	return "search_snippets"
}

func (c *SearchClient) Fetch(ctx context.Context, keywords []string, limit int) ([]model.ResearchDoc, error) {
	query := strings.Join(keywords, " ")

	params := url.Values{}
	params.Set("count", strconv.Itoa(limit))
	params.Set("country", c.country)

	var endpoint string
	if c.mode == ModeNews {
		endpoint = c.baseURL + "/news"
		params.Set("q", query)
	} else {
		endpoint = c.baseURL + "/search"
		params.Set("query", query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search fetch: unexpected status %s", resp.Status)
	}

	if c.mode == ModeNews {
		return c.decodeNews(resp)
	}
	return c.decodeSnippets(resp)
}

func (c *SearchClient) decodeNews(resp *http.Response) ([]model.ResearchDoc, error) {
	var raw struct {
		News struct {
			Results []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				URL         string `json:"url"`
				Author      string `json:"author"`
			} `json:"results"`
		} `json:"news"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("search decode: %w", err)
	}

	docs := make([]model.ResearchDoc, 0, len(raw.News.Results))
	for _, r := range raw.News.Results {
		docs = append(docs, model.ResearchDoc{
			ID:         docID(r.URL),
			Title:      r.Title,
			Author:     r.Author,
			RawContent: r.Description,
			URL:        r.URL,
			Source:     c.Name(),
			FetchedAt:  time.Now().UTC(),
		})
	}
	return docs, nil
}

func (c *SearchClient) decodeSnippets(resp *http.Response) ([]model.ResearchDoc, error) {
	var raw struct {
		Hits []struct {
			Title    string   `json:"title"`
			URL      string   `json:"url"`
			Author   string   `json:"author"`
			Snippets []string `json:"snippets"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("search decode: %w", err)
	}

	docs := make([]model.ResearchDoc, 0, len(raw.Hits))
	for _, h := range raw.Hits {
		docs = append(docs, model.ResearchDoc{
			ID:         docID(h.URL),
			Title:      h.Title,
			Author:     h.Author,
			RawContent: strings.Join(h.Snippets, " "),
			URL:        h.URL,
			Source:     c.Name(),
			FetchedAt:  time.Now().UTC(),
		})
	}
	return docs, nil
}
