package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"

	"draftforge/internal/model"
	"draftforge/pkg/gen"
	"draftforge/pkg/research"
)

type fakeResearchClient struct {
	name string
	docs []model.ResearchDoc
	err  error

	keywords []string
	limit    int
}

func (f *fakeResearchClient) Name() string { return f.name }

func (f *fakeResearchClient) Fetch(_ context.Context, keywords []string, limit int) ([]model.ResearchDoc, error) {
	f.keywords = keywords
	f.limit = limit
	return f.docs, f.err
}

type fakeResearchStore struct {
	saved  []model.ResearchDoc
	stored []model.ResearchDoc
	err    error
}

func (f *fakeResearchStore) SaveDocs(_ context.Context, docs []model.ResearchDoc) error {
	f.saved = append(f.saved, docs...)
	return f.err
}

func (f *fakeResearchStore) GetBySource(_ context.Context, source string) ([]model.ResearchDoc, error) {
	if f.err != nil {
		return nil, f.err
	}
	var docs []model.ResearchDoc
	for _, d := range f.stored {
		if d.Source == source {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func newResearchRouter(clients []research.Client, store ResearchStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewResearchHandler(clients, store)
	r.POST("/research/fetch", h.Fetch)
	r.GET("/research/docs", h.Docs)
	return r
}

func TestResearchFetch_SavesAndReturnsDocs(t *testing.T) {
	wiki := &fakeResearchClient{
		name: "wikipedia",
		docs: []model.ResearchDoc{{ID: "abc", Title: "RAG", CleanContent: "text", Source: "wikipedia"}},
	}
	store := &fakeResearchStore{}
	r := newResearchRouter([]research.Client{wiki}, store)

	w := postJSON(r, "/research/fetch", ResearchFetchRequest{
		ResearchQuestions: []gen.ResearchQuestion{{Platform: "wikipedia", Keywords: []string{"rag"}}},
		Limit:             3,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, wiki.keywords, []string{"rag"})
	assert.Equal(t, wiki.limit, 3)
	assert.Equal(t, len(store.saved), 1)

	var res ResearchFetchResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, res.Total, 1)
	assert.Equal(t, res.Docs[0].Title, "RAG")
}

func TestResearchFetch_UnknownPlatform(t *testing.T) {
	store := &fakeResearchStore{}
	r := newResearchRouter([]research.Client{&fakeResearchClient{name: "wikipedia"}}, store)

	w := postJSON(r, "/research/fetch", ResearchFetchRequest{
		ResearchQuestions: []gen.ResearchQuestion{{Platform: "myspace", Keywords: []string{"rag"}}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, len(store.saved), 0)
}

func TestResearchFetch_EmptyQuestions(t *testing.T) {
	r := newResearchRouter(nil, &fakeResearchStore{})

	w := postJSON(r, "/research/fetch", ResearchFetchRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResearchFetch_FetchError(t *testing.T) {
	client := &fakeResearchClient{name: "wikipedia", err: errors.New("upstream down")}
	r := newResearchRouter([]research.Client{client}, &fakeResearchStore{})

	w := postJSON(r, "/research/fetch", ResearchFetchRequest{
		ResearchQuestions: []gen.ResearchQuestion{{Platform: "wikipedia", Keywords: []string{"rag"}}},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestResearchDocs_ReturnsStoredDocs(t *testing.T) {
	store := &fakeResearchStore{stored: []model.ResearchDoc{
		{ID: "abc", Title: "RAG", CleanContent: "text", Source: "wikipedia"},
		{ID: "def", Title: "Other", Source: "search_news"},
	}}
	r := newResearchRouter([]research.Client{&fakeResearchClient{name: "wikipedia"}}, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/research/docs?source=wikipedia", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res ResearchFetchResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, res.Total, 1)
	assert.Equal(t, res.Docs[0].ID, "abc")
	assert.Equal(t, res.Docs[0].Content, "text")
}

func TestResearchDocs_MissingSource(t *testing.T) {
	r := newResearchRouter([]research.Client{&fakeResearchClient{name: "wikipedia"}}, &fakeResearchStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/research/docs", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResearchDocs_UnknownSource(t *testing.T) {
	r := newResearchRouter([]research.Client{&fakeResearchClient{name: "wikipedia"}}, &fakeResearchStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/research/docs?source=myspace", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResearchFetch_StoreError(t *testing.T) {
	client := &fakeResearchClient{
		name: "wikipedia",
		docs: []model.ResearchDoc{{ID: "abc", Title: "RAG"}},
	}
	r := newResearchRouter([]research.Client{client}, &fakeResearchStore{err: errors.New("DB down")})

	w := postJSON(r, "/research/fetch", ResearchFetchRequest{
		ResearchQuestions: []gen.ResearchQuestion{{Platform: "wikipedia", Keywords: []string{"rag"}}},
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
