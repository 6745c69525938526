package generator

import (
	"context"
	"errors"
)

// ModelClient glues prompt building, the LLM call, and response parsing into
// the two model interactions the pipeline needs.
type ModelClient struct {
	llm LLMClient
}

func NewModelClient(llm LLMClient) (*ModelClient, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &ModelClient{llm: llm}, nil
}

// GenerateTopics asks the model for blog topics. Items are trimmed; blanks are
// kept for the caller to skip.
func (c *ModelClient) GenerateTopics(ctx context.Context) ([]string, error) {
	raw, err := c.llm.Complete(ctx, BuildTopicsPrompt())
	if err != nil {
		return nil, err
	}
	return ParseTopics(raw), nil
}

// GenerateStructuredContent asks the model for a structured post about title.
// A response that fails validation comes back as a *ParseError.
func (c *ModelClient) GenerateStructuredContent(ctx context.Context, title string) (BlogContent, error) {
	raw, err := c.llm.Complete(ctx, BuildContentPrompt(title))
	if err != nil {
		return BlogContent{}, err
	}
	return ParseContent(raw)
}
