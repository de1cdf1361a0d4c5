// Package segment splits cleaned document text into overlapping chunks
// tagged with section metadata, the unit of retrieval for the pipeline.
//
// Section boundaries are recognized from "== Title ==" heading markers as
// produced by the extractor. Text before the first heading is tagged with
// the IntroSection sentinel. Chunks never overlap across section
// boundaries, and segmentation is deterministic for fixed input and
// parameters.
package segment

import (
	"regexp"
	"strings"
)

// IntroSection is the sentinel section for text preceding the first heading.
const IntroSection = "Introducción"

// Default splitter parameters, matching the ingestion pipeline defaults.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk is a bounded span of document text with its originating section
// and source identifier. Immutable after creation.
type Chunk struct {
	Text     string
	SourceID string
	Section  string
}

// headingPattern matches "== Title ==" section markers. Deliberately not
// line-anchored: extractors and raw wiki text can leave markers inline.
var headingPattern = regexp.MustCompile(`==\s*([^=\n]+?)\s*==`)

var (
	newlineRuns    = regexp.MustCompile(`\n+`)
	whitespaceRuns = regexp.MustCompile(`\s{2,}`)
)

// Clean collapses redundant whitespace: runs of newlines become a single
// newline, any remaining run of two or more whitespace characters becomes a
// single space, and the result is trimmed. Clean("") == "".
func Clean(text string) string {
	if text == "" {
		return ""
	}
	cleaned := newlineRuns.ReplaceAllString(text, "\n")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// Splitter produces chunks bounded by ChunkSize with ChunkOverlap
// characters of overlap between consecutive chunks of the same section.
// Sizes are measured in runes so multi-byte Spanish text is never cut
// mid-character.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewSplitter creates a Splitter, falling back to defaults for
// non-positive size and to zero for invalid overlap.
func NewSplitter(chunkSize, chunkOverlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &Splitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// BySection splits text on heading markers and chunks each section
// independently. The span before the first heading becomes the
// IntroSection; headings with no body text are dropped. Returns nil for
// empty or whitespace-only input.
func (s *Splitter) BySection(text, sourceID string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []Chunk
	emit := func(section, body string) {
		cleaned := Clean(body)
		if cleaned == "" {
			return
		}
		for _, part := range s.split(cleaned) {
			chunks = append(chunks, Chunk{
				Text:     part,
				SourceID: sourceID,
				Section:  section,
			})
		}
	}

	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)

	// Pre-heading span is the implicit introduction.
	start := len(text)
	if len(matches) > 0 {
		start = matches[0][0]
	}
	emit(IntroSection, text[:start])

	for i, m := range matches {
		title := strings.TrimSpace(text[m[2]:m[3]])
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}
		emit(title, text[bodyStart:bodyEnd])
	}

	return chunks
}

// split applies greedy word-boundary splitting bounded by ChunkSize.
// Each chunk after the first starts ChunkOverlap runes before the previous
// chunk's end. A span with no space inside the window is cut hard at
// ChunkSize rather than overflowing.
func (s *Splitter) split(text string) []string {
	runes := []rune(text)
	if len(runes) <= s.ChunkSize {
		return []string{text}
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			// Prefer breaking at the last space inside the window.
			if cut := lastSpace(runes, start, end); cut > start {
				end = cut
			}
		}

		part := strings.TrimSpace(string(runes[start:end]))
		if part != "" {
			parts = append(parts, part)
		}

		if end == len(runes) {
			break
		}

		next := end - s.ChunkOverlap
		if next <= start {
			// Overlap would not advance; move past the current chunk.
			next = end
		}
		start = next
	}

	return parts
}

// lastSpace returns the index of the last space in runes[start:end],
// or start if there is none.
func lastSpace(runes []rune, start, end int) int {
	for i := end - 1; i > start; i-- {
		if runes[i] == ' ' || runes[i] == '\n' {
			return i
		}
	}
	return start
}
