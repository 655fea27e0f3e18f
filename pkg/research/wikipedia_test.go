package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestWikipediaFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "query":
			assert.Equal(t, "gradient descent", r.URL.Query().Get("srsearch"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"query": map[string]interface{}{
					"search": []map[string]interface{}{
						{"title": "Gradient descent"},
					},
				},
			})
		case "parse":
			assert.Equal(t, "Gradient descent", r.URL.Query().Get("page"))
			json.NewEncoder(w).Encode(map[string]interface{}{
				"parse": map[string]interface{}{
					"text": map[string]string{
						"*": "<div>From Wikipedia, the free encyclopedia</div><p>An optimization algorithm.</p>",
					},
				},
			})
		default:
			t.Errorf("unexpected action %q", r.URL.Query().Get("action"))
		}
	}))
	defer srv.Close()

	c := NewWikipediaClient(srv.URL)
	docs, err := c.Fetch(context.Background(), []string{"gradient descent"}, 3)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(docs))

	d := docs[0]
	assert.Equal(t, "Gradient descent", d.Title)
	assert.Equal(t, "Wikipedia", d.Author)
	assert.Equal(t, "wikipedia", d.Source)
	assert.Equal(t, "An optimization algorithm.", d.CleanContent)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Gradient_descent", d.URL)
	assert.Equal(t, docID(d.URL), d.ID)
}

func TestWikipediaFetchMultipleKeywords(t *testing.T) {
	var searches int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") == "query" {
			searches++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"query": map[string]interface{}{"search": []interface{}{}},
			})
			return
		}
		t.Errorf("unexpected parse call with no search results")
	}))
	defer srv.Close()

	c := NewWikipediaClient(srv.URL)
	docs, err := c.Fetch(context.Background(), []string{"a", "b", "c"}, 2)

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(docs))
	assert.Equal(t, 3, searches)
}
