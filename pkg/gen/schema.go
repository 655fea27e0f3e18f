package gen

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Stage names, used for prompt lookup and error reporting.
const (
	StageResearchQuestions = "generate_research_questions"
	StageHeadlines         = "generate_headlines"
	StageDraft             = "generate_draft"
	StageTopicSentences    = "generate_topic_sentences"
	StageFullContent       = "generate_full_content"
	StageEditContent       = "edit_content"
)

// Edit modes for the edit stage.
const (
	EditStructure = "structure"
	EditFlair     = "flair"
)

// OptionalParams are shared knobs accepted by every stage. Absent fields
// default to empty in the prompt so template formatting never fails.
type OptionalParams struct {
	Data          string   `json:"data,omitempty"`
	Publication   string   `json:"publication,omitempty"`
	Country       string   `json:"country,omitempty"`
	Personas      []string `json:"personas,omitempty"`
	DesiredLength int      `json:"desired_length,omitempty"`
	Scratchpad    string   `json:"scratchpad,omitempty"`
	Limit         int      `json:"limit,omitempty"`
}

type ResearchQuestionsRequest struct {
	Topics         []string        `json:"topics"`
	ArticleTypes   []string        `json:"article_types"`
	Platforms      []string        `json:"platforms"`
	Personas       []string        `json:"personas,omitempty"`
	TargetAudience string          `json:"target_audience,omitempty"`
	OptionalParams *OptionalParams `json:"optional_params,omitempty"`
}

type ResearchQuestion struct {
	Platform string   `json:"platform"`
	Keywords []string `json:"keywords"`
}

type ResearchQuestionsResponse struct {
	ResearchQuestions []ResearchQuestion `json:"research_questions"`
	TokenCount        int                `json:"token_count,omitempty"`
}

type HeadlinesRequest struct {
	Topics         []string          `json:"topics"`
	ArticleTypes   string            `json:"article_types"`
	Context        map[string]string `json:"context,omitempty"`
	OptionalParams *OptionalParams   `json:"optional_params,omitempty"`
}

type Headline struct {
	Headline    string `json:"headline"`
	ArticleType string `json:"article_type"`
	Hook        string `json:"hook"`
	Thesis      string `json:"thesis"`
}

type HeadlinesResponse struct {
	Headlines  []Headline `json:"headlines"`
	TokenCount int        `json:"token_count,omitempty"`
}

type DraftRequest struct {
	Headline       string          `json:"headline"`
	Hook           string          `json:"hook"`
	Thesis         string          `json:"thesis"`
	ArticleType    string          `json:"article_type"`
	OptionalParams *OptionalParams `json:"optional_params,omitempty"`
}

// ContentBlock is one named section of an article outline.
type ContentBlock struct {
	ContentBlock string  `json:"content_block"`
	Details      Details `json:"details"`
}

type Draft struct {
	Headline       string          `json:"headline"`
	Hook           string          `json:"hook"`
	Thesis         string          `json:"thesis"`
	ArticleType    string          `json:"article_type"`
	Structure      []ContentBlock  `json:"structure"`
	OptionalParams *OptionalParams `json:"optional_params,omitempty"`
}

type DraftResponse struct {
	Drafts     []Draft `json:"drafts"`
	TokenCount int     `json:"token_count,omitempty"`
}

type TopicSentencesRequest struct {
	Headline       string          `json:"headline"`
	Hook           string          `json:"hook"`
	Thesis         string          `json:"thesis"`
	ArticleType    string          `json:"article_type"`
	Structure      []ContentBlock  `json:"structure"`
	OptionalParams *OptionalParams `json:"optional_params,omitempty"`
}

// OutlineBlock is a content block annotated with topic sentences.
type OutlineBlock struct {
	ContentBlock   string   `json:"content_block"`
	Details        Details  `json:"details"`
	TopicSentences []string `json:"topic_sentences"`
}

type TopicSentencesResponse struct {
	DraftOutlines []OutlineBlock `json:"draft_outlines"`
	TokenCount    int            `json:"token_count,omitempty"`
}

type FullContentRequest struct {
	Headline       string          `json:"headline"`
	Hook           string          `json:"hook"`
	Thesis         string          `json:"thesis"`
	ArticleType    string          `json:"article_type"`
	DraftOutlines  []OutlineBlock  `json:"draft_outlines"`
	OptionalParams *OptionalParams `json:"optional_params,omitempty"`
}

// ContentSection is an outline block expanded into full paragraphs.
type ContentSection struct {
	ContentBlock   string   `json:"content_block"`
	Details        Details  `json:"details,omitempty"`
	TopicSentences []string `json:"topic_sentences,omitempty"`
	Paragraphs     []string `json:"paragraphs"`
}

type FullContentResponse struct {
	FullContent []ContentSection `json:"full_content"`
	TokenCount  int              `json:"token_count,omitempty"`
}

type EditContentRequest struct {
	Headline       string           `json:"headline"`
	Hook           string           `json:"hook"`
	Thesis         string           `json:"thesis"`
	ArticleType    string           `json:"article_type"`
	DraftOutlines  []OutlineBlock   `json:"draft_outlines"`
	FullContent    []ContentSection `json:"full_content,omitempty"`
	EditType       string           `json:"edit_type"`
	OptionalParams *OptionalParams  `json:"optional_params,omitempty"`
}

type EditedBlock struct {
	ContentBlock string   `json:"content_block"`
	Paragraphs   []string `json:"paragraphs"`
}

type EditContentResponse struct {
	EditedContent []EditedBlock `json:"edited_content"`
	TokenCount    int           `json:"token_count,omitempty"`
}

// Details tolerates the three shapes models produce for a block's details:
// a plain string, an array (items joined with spaces), or an object
// (serialized to compact JSON). One decode path instead of duck-typing at
// every call site.
type Details string

func (d *Details) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = Details(s)
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err == nil {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			var str string
			if err := json.Unmarshal(item, &str); err == nil {
				parts = append(parts, str)
				continue
			}
			parts = append(parts, compactJSON(item))
		}
		*d = Details(strings.Join(parts, " "))
		return nil
	}

	// Anything else (an object, a number) is kept as compact JSON text.
	if !json.Valid(b) {
		return errors.New("details: invalid JSON value")
	}
	*d = Details(compactJSON(b))
	return nil
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
