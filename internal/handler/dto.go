package handler

import "draftforge/pkg/gen"

type IngestRequest struct {
	Source string `json:"source"`
	Limit  int    `json:"limit"`
}

type IngestResponse struct {
	Source string `json:"source"`
	Status string `json:"status"`
}

type BatchStatusResponse struct {
	BatchNumber int   `json:"batch_number"`
	Pages       []int `json:"pages"`
}

type IngestStatusResponse struct {
	Incomplete []BatchStatusResponse `json:"incomplete"`
}

type BatchRunResponse struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type PageStatusResponse struct {
	PageNumber int    `json:"page_number"`
	Status     string `json:"status"`
	UpdatedAt  string `json:"updated_at"`
}

type BatchDetailResponse struct {
	BatchNumber int                  `json:"batch_number"`
	Runs        []BatchRunResponse   `json:"runs"`
	Pages       []PageStatusResponse `json:"pages"`
}

type ResearchFetchRequest struct {
	ResearchQuestions []gen.ResearchQuestion `json:"research_questions"`
	Limit             int                    `json:"limit"`
}

type ResearchDocResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Author  string `json:"author,omitempty"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source"`
}

type ResearchFetchResponse struct {
	Docs  []ResearchDocResponse `json:"docs"`
	Total int                   `json:"total"`
}

type PostResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Excerpt      string `json:"excerpt"`
	CleanContent string `json:"clean_content,omitempty"`
	Link         string `json:"link"`
	AuthorName   string `json:"author_name"`
	Source       string `json:"source"`
	DateGMT      string `json:"date_gmt"`
}

type PostFeedResponse struct {
	Posts  []PostResponse `json:"posts"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
