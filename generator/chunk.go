package generator

import (
	"strings"
	"unicode/utf8"
)

// sentenceDelim is the boundary heuristic used when packing text into chunks.
const sentenceDelim = ". "

// ChunkText splits text into consecutive chunks of at most limit characters
// (Unicode code points), preferring sentence boundaries. Sentences are packed
// greedily; a sentence that alone exceeds the limit is hard-split so no chunk
// ever goes over. Concatenating the chunks reproduces the input exactly.
// Empty or whitespace-only input yields nil.
func ChunkText(text string, limit int) []string {
	if limit <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := strings.Split(text, sentenceDelim)
	for i := 0; i < len(sentences)-1; i++ {
		sentences[i] += sentenceDelim
	}

	var chunks []string
	current := ""
	currentLen := 0
	for _, sentence := range sentences {
		sentLen := utf8.RuneCountInString(sentence)

		for sentLen > limit {
			if current != "" {
				chunks = append(chunks, current)
				current, currentLen = "", 0
			}
			head, tail := splitRunes(sentence, limit)
			chunks = append(chunks, head)
			sentence = tail
			sentLen = utf8.RuneCountInString(sentence)
		}
		if sentence == "" {
			continue
		}

		if currentLen+sentLen > limit {
			chunks = append(chunks, current)
			current, currentLen = sentence, sentLen
		} else {
			current += sentence
			currentLen += sentLen
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitRunes cuts s after n runes.
func splitRunes(s string, n int) (string, string) {
	seen := 0
	for i := range s {
		if seen == n {
			return s[:i], s[i:]
		}
		seen++
	}
	return s, ""
}
