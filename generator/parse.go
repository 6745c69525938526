package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseTopics splits a comma-separated model response into topic strings.
// Items are trimmed but blanks are kept; the batch loop decides what to skip.
func ParseTopics(raw string) []string {
	parts := strings.Split(raw, ",")
	topics := make([]string, len(parts))
	for i, part := range parts {
		topics[i] = strings.TrimSpace(part)
	}
	return topics
}

// ParseContent decodes and validates a structured-content response. Models
// routinely wrap JSON in a markdown fence, so one is stripped if present. Any
// shape violation comes back as a *ParseError.
func ParseContent(raw string) (BlogContent, error) {
	var content BlogContent
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &content); err != nil {
		return BlogContent{}, &ParseError{Cause: err}
	}
	if err := validateContent(content); err != nil {
		return BlogContent{}, &ParseError{Cause: err}
	}
	return content, nil
}

func validateContent(content BlogContent) error {
	if strings.TrimSpace(content.Title) == "" {
		return fmt.Errorf("missing title")
	}
	if strings.TrimSpace(content.Summary) == "" {
		return fmt.Errorf("missing summary")
	}
	if strings.TrimSpace(content.ImagePrompt) == "" {
		return fmt.Errorf("missing image_prompt")
	}
	for i, unit := range content.Content {
		switch unit.Type {
		case UnitParagraph:
		case UnitHeading:
			switch unit.HeadingType {
			case "h1", "h2", "h3":
			default:
				return fmt.Errorf("content[%d]: invalid heading_type %q", i, unit.HeadingType)
			}
		default:
			return fmt.Errorf("content[%d]: invalid content_type %q", i, unit.Type)
		}
		if strings.TrimSpace(unit.Text) == "" {
			return fmt.Errorf("content[%d]: empty text", i)
		}
	}
	return nil
}

// stripCodeFence removes a surrounding markdown code fence, including any
// language tag on the opening line.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
