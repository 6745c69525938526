package generator

import (
	"context"
	"encoding/json"
	"strings"
)

// MockLLM is a simple placeholder for local runs; it never calls an external
// model. Topic prompts get a fixed comma-separated list, content prompts get a
// minimal valid structured response echoing the requested title.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	if strings.HasPrefix(prompt.User, "Generate") {
		return "The Future of AI Agents, Machine Learning in Production, Prompt Engineering Basics", nil
	}

	title := strings.TrimPrefix(prompt.User, "Write a blog post about: ")
	content := BlogContent{
		Title: title,
		Content: []ContentUnit{
			{Type: UnitHeading, HeadingType: "h1", Text: title},
			{Type: UnitParagraph, Text: "This is placeholder content generated without a model. It stands in for a real draft during local runs."},
		},
		Summary:     "A placeholder summary for " + title + ".",
		ImagePrompt: "An abstract illustration representing " + title + ".",
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
