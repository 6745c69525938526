package generator

// Kinds of content unit the model may emit in a blog body.
const (
	UnitHeading   = "heading"
	UnitParagraph = "paragraph"
)

// ContentUnit is one typed unit of blog body content. The JSON field names are
// the contract the model is prompted to follow.
type ContentUnit struct {
	Type        string `json:"content_type"`           // "heading" or "paragraph"
	HeadingType string `json:"heading_type,omitempty"` // "h1".."h3", only for headings
	Text        string `json:"text"`
}

// Level maps the model's heading_type ("h1".."h3") to a numeric level. Missing
// or malformed values fall back to 1, anything deeper than h3 is clamped.
func (u ContentUnit) Level() int {
	if len(u.HeadingType) < 2 {
		return 1
	}
	switch u.HeadingType[len(u.HeadingType)-1] {
	case '2':
		return 2
	case '3':
		return 3
	default:
		return 1
	}
}

// BlogContent is the model's structured response for a single topic.
type BlogContent struct {
	Title       string        `json:"title"`
	Content     []ContentUnit `json:"content"`
	Summary     string        `json:"summary"`
	ImagePrompt string        `json:"image_prompt"`
}

// BlockType discriminates RichBlock variants.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockImage     BlockType = "image"
)

// RichBlock is a backend-agnostic rich-text block. Exactly one variant is
// populated: headings use Level+Text, paragraphs use Text, images use URL.
type RichBlock struct {
	Type  BlockType
	Level int
	Text  string
	URL   string
}

// Status is a record's lifecycle stage in the workspace. The pipeline only ever
// moves it forward: Backlog -> Draft -> Published.
type Status string

const (
	StatusBacklog   Status = "Backlog"
	StatusDraft     Status = "Draft"
	StatusPublished Status = "Published"
)

// RecordRef identifies a workspace record created for one topic.
type RecordRef struct {
	ID     string
	Title  string
	Status Status
}

// RecordSnapshot is a read of a record's publish-relevant fields. Fields not
// populated in the workspace come back empty.
type RecordSnapshot struct {
	Title     string
	Content   string
	ImageData string
	Status    Status
}

// BlogPost is the payload handed to the publishing collaborator.
type BlogPost struct {
	Title     string
	Content   string
	ImageData string
}

// GenerationResult is the per-topic outcome of a batch run. Err is nil on
// success; a failed topic's partially created record is left in the workspace.
type GenerationResult struct {
	RecordID string
	Title    string
	Err      error
}

// Succeeded reports whether the topic's pipeline ran to completion.
func (r GenerationResult) Succeeded() bool { return r.Err == nil }
