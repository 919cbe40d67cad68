package text

import (
	"errors"
	"fmt"
	"strings"
)

var ErrSplit = errors.New("split failed")

// Chunk is one ordered slice of a larger input. OverlapWithPrevious is the
// number of leading characters duplicated from the previous chunk so that
// meaning spanning a boundary is visible on both sides.
type Chunk struct {
	Index               int
	Content             string
	OverlapWithPrevious int
}

// separators, coarsest first. The empty string means a hard character cut.
var separators = []string{"\n\n", "\n", " "}

// Split cuts text into ordered chunks of at most maxChunkSize characters,
// with adjacent chunks sharing overlap characters of context. Boundaries
// prefer the coarsest separator (paragraph, then line, then word) that still
// keeps the chunk within budget. Deterministic: same input and parameters
// always produce the same boundaries.
//
// Stripping each chunk's declared leading overlap and concatenating the
// remainders reproduces the input exactly.
func Split(text string, maxChunkSize, overlap int) ([]Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: max chunk size must be positive, got %d", ErrSplit, maxChunkSize)
	}
	if overlap < 0 || overlap >= maxChunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be non-negative and smaller than max chunk size %d", ErrSplit, overlap, maxChunkSize)
	}
	if text == "" {
		return nil, nil
	}

	var chunks []Chunk
	pos := 0

	for pos < len(text) {
		// Subsequent chunks spend part of the budget on carried overlap,
		// so new content is capped at maxChunkSize - overlap.
		budget := maxChunkSize
		if pos > 0 {
			budget = maxChunkSize - overlap
		}

		end := pos + budget
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutPoint(text, pos, end)
		}

		lead := 0
		if pos > 0 {
			lead = overlap
			if lead > pos {
				lead = pos
			}
		}

		chunks = append(chunks, Chunk{
			Index:               len(chunks),
			Content:             text[pos-lead : end],
			OverlapWithPrevious: lead,
		})
		pos = end
	}

	return chunks, nil
}

// cutPoint finds the cut position in (pos, limit] closest to limit that lands
// just after the coarsest available separator. Falls back to a hard cut at
// limit when no separator fits.
func cutPoint(text string, pos, limit int) int {
	window := text[pos:limit]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := pos + idx + len(sep)
		if cut > pos && cut <= limit {
			return cut
		}
	}
	return limit
}

// Reassemble joins chunks back into the original text by stripping each
// chunk's declared leading overlap. Used by callers and tests to verify
// coverage; returns an error on out-of-order input.
func Reassemble(chunks []Chunk) (string, error) {
	var b strings.Builder
	for i, c := range chunks {
		if c.Index != i {
			return "", fmt.Errorf("%w: chunk order broken at position %d (index %d)", ErrSplit, i, c.Index)
		}
		if c.OverlapWithPrevious > len(c.Content) {
			return "", fmt.Errorf("%w: chunk %d declares overlap %d larger than content", ErrSplit, i, c.OverlapWithPrevious)
		}
		b.WriteString(c.Content[c.OverlapWithPrevious:])
	}
	return b.String(), nil
}

// JoinContents concatenates chunk contents with a separator, ignoring
// overlaps. Used to build combine-phase prompts from map partials.
func JoinContents(chunks []Chunk, sep string) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Content
	}
	return strings.Join(parts, sep)
}
