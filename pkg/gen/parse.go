package gen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around the JSON.
	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if end := strings.LastIndex(content, "]"); end > arrStart {
			return content[arrStart : end+1]
		}
		return content
	}
	if end := strings.LastIndex(content, "}"); objStart >= 0 && end > objStart {
		content = content[objStart : end+1]
	}
	return content
}

// unwrapEnvelope peels the envelopes models sometimes put around a payload:
// a single-element array, or a two-element [json_string, token_count] pair.
func unwrapEnvelope(data []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return trimmed, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}

	switch len(items) {
	case 1:
		return unwrapElement(items[0])
	case 2:
		var s string
		var n json.Number
		if json.Unmarshal(items[0], &s) == nil && json.Unmarshal(items[1], &n) == nil {
			return unwrapEnvelope([]byte(s))
		}
	}
	return trimmed, nil
}

func unwrapElement(item json.RawMessage) ([]byte, error) {
	var s string
	if json.Unmarshal(item, &s) == nil && json.Valid([]byte(s)) {
		return unwrapEnvelope([]byte(s))
	}
	return unwrapEnvelope(item)
}

func decodeStage(raw, stage string, out interface{}) error {
	payload, err := unwrapEnvelope([]byte(cleanJSONResponse(raw)))
	if err != nil {
		return &DataError{Stage: stage, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &DataError{Stage: stage, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return nil
}

func ParseResearchQuestions(raw string) (*ResearchQuestionsResponse, error) {
	var resp ResearchQuestionsResponse
	if err := decodeStage(raw, StageResearchQuestions, &resp); err != nil {
		return nil, err
	}

	if len(resp.ResearchQuestions) == 0 {
		return nil, &DataError{Stage: StageResearchQuestions, Field: "research_questions", Err: errors.New("empty")}
	}
	for _, q := range resp.ResearchQuestions {
		if q.Platform == "" {
			return nil, &DataError{Stage: StageResearchQuestions, Field: "platform", Err: errors.New("empty")}
		}
		if len(q.Keywords) == 0 {
			return nil, &DataError{Stage: StageResearchQuestions, Field: "keywords", Err: errors.New("empty")}
		}
	}
	return &resp, nil
}

func ParseHeadlines(raw string) (*HeadlinesResponse, error) {
	var resp HeadlinesResponse
	if err := decodeStage(raw, StageHeadlines, &resp); err != nil {
		return nil, err
	}

	if len(resp.Headlines) == 0 {
		return nil, &DataError{Stage: StageHeadlines, Field: "headlines", Err: errors.New("empty")}
	}
	for _, h := range resp.Headlines {
		if h.Headline == "" {
			return nil, &DataError{Stage: StageHeadlines, Field: "headline", Err: errors.New("empty")}
		}
	}
	return &resp, nil
}

// ParseDraft validates the draft stage output. Models frequently return a
// bare {"structure": [...]} without the drafts wrapper; when that happens
// the wrapper is synthesized from the request context. A draft whose
// headline or thesis disagrees with the request is malformed, not coerced.
func ParseDraft(raw string, req DraftRequest) (*DraftResponse, error) {
	var probe struct {
		Drafts    []Draft        `json:"drafts"`
		Structure []ContentBlock `json:"structure"`
	}
	if err := decodeStage(raw, StageDraft, &probe); err != nil {
		return nil, err
	}

	drafts := probe.Drafts
	if len(drafts) == 0 {
		if len(probe.Structure) == 0 {
			return nil, &DataError{Stage: StageDraft, Field: "drafts", Err: errors.New("no drafts and no structure to synthesize from")}
		}
		drafts = []Draft{{
			Headline:       req.Headline,
			Hook:           req.Hook,
			Thesis:         req.Thesis,
			ArticleType:    req.ArticleType,
			Structure:      probe.Structure,
			OptionalParams: req.OptionalParams,
		}}
	}

	for _, d := range drafts {
		if req.Headline != "" && d.Headline != "" && d.Headline != req.Headline {
			return nil, &DataError{Stage: StageDraft, Field: "headline",
				Err: fmt.Errorf("draft headline %q does not match request %q", d.Headline, req.Headline)}
		}
		if req.Thesis != "" && d.Thesis != "" && d.Thesis != req.Thesis {
			return nil, &DataError{Stage: StageDraft, Field: "thesis",
				Err: fmt.Errorf("draft thesis does not match request")}
		}
		if len(d.Structure) == 0 {
			return nil, &DataError{Stage: StageDraft, Field: "structure", Err: errors.New("empty")}
		}
		for _, block := range d.Structure {
			if block.ContentBlock == "" {
				return nil, &DataError{Stage: StageDraft, Field: "content_block", Err: errors.New("empty")}
			}
		}
	}

	return &DraftResponse{Drafts: drafts}, nil
}

func ParseTopicSentences(raw string) (*TopicSentencesResponse, error) {
	var resp TopicSentencesResponse
	if err := decodeStage(raw, StageTopicSentences, &resp); err != nil {
		return nil, err
	}

	if len(resp.DraftOutlines) == 0 {
		return nil, &DataError{Stage: StageTopicSentences, Field: "draft_outlines", Err: errors.New("empty")}
	}
	for _, block := range resp.DraftOutlines {
		if len(block.TopicSentences) == 0 {
			return nil, &DataError{Stage: StageTopicSentences, Field: "topic_sentences",
				Err: fmt.Errorf("block %q has no topic sentences", block.ContentBlock)}
		}
	}
	return &resp, nil
}

func ParseFullContent(raw string) (*FullContentResponse, error) {
	var resp FullContentResponse
	if err := decodeStage(raw, StageFullContent, &resp); err != nil {
		return nil, err
	}

	if len(resp.FullContent) == 0 {
		return nil, &DataError{Stage: StageFullContent, Field: "full_content", Err: errors.New("empty")}
	}
	for _, section := range resp.FullContent {
		if len(section.Paragraphs) == 0 {
			return nil, &DataError{Stage: StageFullContent, Field: "paragraphs",
				Err: fmt.Errorf("section %q has no paragraphs", section.ContentBlock)}
		}
	}
	return &resp, nil
}

func ParseEditedContent(raw string) (*EditContentResponse, error) {
	var resp EditContentResponse
	if err := decodeStage(raw, StageEditContent, &resp); err != nil {
		return nil, err
	}

	if len(resp.EditedContent) == 0 {
		return nil, &DataError{Stage: StageEditContent, Field: "edited_content", Err: errors.New("empty")}
	}
	return &resp, nil
}
