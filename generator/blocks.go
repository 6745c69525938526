package generator

// BlockCharLimit is the workspace backend's hard cap on the text length of a
// single rich-text block.
const BlockCharLimit = 2000

// BlocksFromContent renders structured content into the ordered block sequence
// appended to a record: a Summary section, an Image prompt section, the body
// units in their original order, and finally one image block when imageURL is
// set. Paragraph text is chunked to BlockCharLimit; heading text is passed
// through unchunked.
func BlocksFromContent(content BlogContent, imageURL string) []RichBlock {
	var blocks []RichBlock

	blocks = append(blocks, RichBlock{Type: BlockHeading, Level: 1, Text: "Summary"})
	blocks = append(blocks, paragraphs(content.Summary)...)

	blocks = append(blocks, RichBlock{Type: BlockHeading, Level: 1, Text: "Image prompt"})
	blocks = append(blocks, paragraphs(content.ImagePrompt)...)

	for _, unit := range content.Content {
		if unit.Type == UnitHeading {
			blocks = append(blocks, RichBlock{Type: BlockHeading, Level: unit.Level(), Text: unit.Text})
			continue
		}
		blocks = append(blocks, paragraphs(unit.Text)...)
	}

	if imageURL != "" {
		blocks = append(blocks, RichBlock{Type: BlockImage, URL: imageURL})
	}
	return blocks
}

func paragraphs(text string) []RichBlock {
	chunks := ChunkText(text, BlockCharLimit)
	blocks := make([]RichBlock, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, RichBlock{Type: BlockParagraph, Text: chunk})
	}
	return blocks
}
