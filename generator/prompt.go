package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	System string
	User   string
}

// topicCount is how many topics a batch run asks the model for.
const topicCount = 5

// BuildTopicsPrompt asks the model for a comma-separated list of blog topics.
func BuildTopicsPrompt() Prompt {
	var sb strings.Builder
	sb.WriteString("You are a blog topic generator. Generate engaging and relevant topics for an AI blog.\n")
	sb.WriteString("Your response must be a list of comma separated values, eg: `foo, bar, baz`.\n")
	sb.WriteString("Output the list only, no numbering and no extra commentary.")

	return Prompt{
		System: sb.String(),
		User:   fmt.Sprintf("Generate %d AI blog topics", topicCount),
	}
}

// BuildContentPrompt asks the model for a structured blog post about title.
// The format instructions pin the JSON shape ParseContent expects.
func BuildContentPrompt(title string) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a blog content writer. Write engaging and informative blog posts.\n")
	sb.WriteString("Respond with a single JSON object, no surrounding prose, matching this schema:\n")
	sb.WriteString("- title: string, the title of the blog post\n")
	sb.WriteString("- content: array of content blocks, each {\"content_type\": \"heading\"|\"paragraph\", \"heading_type\": \"h1\"|\"h2\"|\"h3\" (headings only), \"text\": string}\n")
	sb.WriteString("- summary: string, a brief summary of the blog post\n")
	sb.WriteString("- image_prompt: string, an image generation prompt for the blog post")

	return Prompt{
		System: sb.String(),
		User:   fmt.Sprintf("Write a blog post about: %s", title),
	}
}
