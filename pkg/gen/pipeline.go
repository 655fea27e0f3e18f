package gen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

const styleExamplesPerCategory = 3

// Pipeline runs the content generation stages against a single model
// provider. Stage methods validate their own inputs and the model's
// outputs; callers chain them draft -> topic sentences -> full content
// -> edit.
type Pipeline struct {
	completer Completer
	prompts   *Prompts
	styles    *StyleBank
}

func NewPipeline(completer Completer, prompts *Prompts, styles *StyleBank) *Pipeline {
	return &Pipeline{completer: completer, prompts: prompts, styles: styles}
}

func (p *Pipeline) call(ctx context.Context, stage string, params map[string]string) (string, error) {
	system, message, err := p.prompts.Render(stage, params)
	if err != nil {
		return "", err
	}

	slog.Info("calling model", "stage", stage, "model", p.completer.ModelName())
	raw, err := p.completer.StreamCompletion(ctx, system, message)
	if err != nil {
		return "", &LLMError{Stage: stage, Err: err}
	}
	slog.Debug("model responded", "stage", stage, "chars", len(raw))
	return raw, nil
}

func (p *Pipeline) GenerateResearchQuestions(ctx context.Context, req ResearchQuestionsRequest) (*ResearchQuestionsResponse, error) {
	if len(req.Topics) == 0 {
		return nil, &DataError{Stage: StageResearchQuestions, Field: "topics", Err: errors.New("required")}
	}
	if len(req.Platforms) == 0 {
		return nil, &DataError{Stage: StageResearchQuestions, Field: "platforms", Err: errors.New("required")}
	}

	params := optionalParamMap(req.OptionalParams)
	params["topics"] = strings.Join(req.Topics, ", ")
	params["article_types"] = strings.Join(req.ArticleTypes, ", ")
	params["platforms"] = strings.Join(req.Platforms, ", ")
	params["target_audience"] = req.TargetAudience
	if len(req.Personas) > 0 {
		params["personas"] = strings.Join(req.Personas, "; ")
	}

	raw, err := p.call(ctx, StageResearchQuestions, params)
	if err != nil {
		return nil, err
	}
	resp, err := ParseResearchQuestions(raw)
	if err != nil {
		return nil, err
	}
	resp.TokenCount = estimateTokens(raw)
	return resp, nil
}

func (p *Pipeline) GenerateHeadlines(ctx context.Context, req HeadlinesRequest) (*HeadlinesResponse, error) {
	if len(req.Topics) == 0 {
		return nil, &DataError{Stage: StageHeadlines, Field: "topics", Err: errors.New("required")}
	}

	params := optionalParamMap(req.OptionalParams)
	params["topics"] = strings.Join(req.Topics, ", ")
	params["article_types"] = req.ArticleTypes
	params["context"] = renderContext(req.Context)

	raw, err := p.call(ctx, StageHeadlines, params)
	if err != nil {
		return nil, err
	}
	resp, err := ParseHeadlines(raw)
	if err != nil {
		return nil, err
	}
	resp.TokenCount = estimateTokens(raw)
	return resp, nil
}

func (p *Pipeline) GenerateDraft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	if req.Headline == "" {
		return nil, &DataError{Stage: StageDraft, Field: "headline", Err: errors.New("required")}
	}

	params := optionalParamMap(req.OptionalParams)
	params["headline"] = req.Headline
	params["hook"] = req.Hook
	params["thesis"] = req.Thesis
	params["article_type"] = req.ArticleType

	raw, err := p.call(ctx, StageDraft, params)
	if err != nil {
		return nil, err
	}
	resp, err := ParseDraft(raw, req)
	if err != nil {
		return nil, err
	}
	resp.TokenCount = estimateTokens(raw)
	return resp, nil
}

func (p *Pipeline) GenerateTopicSentences(ctx context.Context, req TopicSentencesRequest) (*TopicSentencesResponse, error) {
	if len(req.Structure) == 0 {
		return nil, &DataError{Stage: StageTopicSentences, Field: "structure", Err: errors.New("required")}
	}

	params := optionalParamMap(req.OptionalParams)
	params["headline"] = req.Headline
	params["hook"] = req.Hook
	params["thesis"] = req.Thesis
	params["article_type"] = req.ArticleType
	params["structure"] = jsonParam(req.Structure)

	raw, err := p.call(ctx, StageTopicSentences, params)
	if err != nil {
		return nil, err
	}
	resp, err := ParseTopicSentences(raw)
	if err != nil {
		return nil, err
	}

	if len(resp.DraftOutlines) != len(req.Structure) {
		return nil, &DataError{Stage: StageTopicSentences, Field: "draft_outlines",
			Err: fmt.Errorf("got %d blocks, expected %d", len(resp.DraftOutlines), len(req.Structure))}
	}
	for i, block := range resp.DraftOutlines {
		if block.ContentBlock != req.Structure[i].ContentBlock {
			return nil, &DataError{Stage: StageTopicSentences, Field: "content_block",
				Err: fmt.Errorf("block %d is %q, expected %q", i, block.ContentBlock, req.Structure[i].ContentBlock)}
		}
	}

	resp.TokenCount = estimateTokens(raw)
	return resp, nil
}

func (p *Pipeline) GenerateFullContent(ctx context.Context, req FullContentRequest) (*FullContentResponse, error) {
	if len(req.DraftOutlines) == 0 {
		return nil, &DataError{Stage: StageFullContent, Field: "draft_outlines", Err: errors.New("required")}
	}

	params := optionalParamMap(req.OptionalParams)
	params["headline"] = req.Headline
	params["hook"] = req.Hook
	params["thesis"] = req.Thesis
	params["article_type"] = req.ArticleType
	params["draft_outlines"] = jsonParam(req.DraftOutlines)

	raw, err := p.call(ctx, StageFullContent, params)
	if err != nil {
		return nil, err
	}
	resp, err := ParseFullContent(raw)
	if err != nil {
		return nil, err
	}

	if len(resp.FullContent) != len(req.DraftOutlines) {
		return nil, &DataError{Stage: StageFullContent, Field: "full_content",
			Err: fmt.Errorf("got %d sections, expected %d", len(resp.FullContent), len(req.DraftOutlines))}
	}

	resp.TokenCount = estimateTokens(raw)
	return resp, nil
}

func (p *Pipeline) EditContent(ctx context.Context, req EditContentRequest) (*EditContentResponse, error) {
	if len(req.DraftOutlines) == 0 {
		return nil, &DataError{Stage: StageEditContent, Field: "draft_outlines", Err: errors.New("required")}
	}

	params := optionalParamMap(req.OptionalParams)
	params["headline"] = req.Headline
	params["hook"] = req.Hook
	params["thesis"] = req.Thesis
	params["article_type"] = req.ArticleType
	params["draft_outlines"] = jsonParam(req.DraftOutlines)
	params["full_content"] = jsonParam(req.FullContent)
	params["edit_type"] = req.EditType

	switch req.EditType {
	case EditStructure:
		params["style_examples"] = ""
	case EditFlair:
		if p.styles == nil {
			return nil, &ConfigurationError{Msg: "flair edits require style examples"}
		}
		params["style_examples"] = p.styles.InstructionsBlock(styleExamplesPerCategory)
	default:
		return nil, &DataError{Stage: StageEditContent, Field: "edit_type",
			Err: fmt.Errorf("unknown edit type %q", req.EditType)}
	}

	raw, err := p.call(ctx, StageEditContent, params)
	if err != nil {
		return nil, err
	}
	resp, err := ParseEditedContent(raw)
	if err != nil {
		return nil, err
	}
	resp.TokenCount = estimateTokens(raw)
	return resp, nil
}

// optionalParamMap seeds every optional template key so unfilled
// placeholders render as empty strings rather than leaking braces.
func optionalParamMap(op *OptionalParams) map[string]string {
	params := map[string]string{
		"data":            "",
		"publication":     "",
		"country":         "",
		"personas":        "",
		"desired_length":  "",
		"scratchpad":      "",
		"limit":           "",
		"target_audience": "",
		"context":         "",
		"style_examples":  "",
	}
	if op == nil {
		return params
	}

	params["data"] = op.Data
	params["publication"] = op.Publication
	params["country"] = op.Country
	params["scratchpad"] = op.Scratchpad
	if len(op.Personas) > 0 {
		params["personas"] = strings.Join(op.Personas, "; ")
	}
	if op.DesiredLength > 0 {
		params["desired_length"] = strconv.Itoa(op.DesiredLength)
	}
	if op.Limit > 0 {
		params["limit"] = strconv.Itoa(op.Limit)
	}
	return params
}

func renderContext(context map[string]string) string {
	if len(context) == 0 {
		return ""
	}
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, context[k]))
	}
	return strings.Join(lines, "\n")
}

func jsonParam(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
