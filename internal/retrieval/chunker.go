package retrieval

import "strings"

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// Chunker splits documents into overlapping chunks sized for embedding.
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker returns a Chunker with spec defaults; size <= 0 or
// overlap < 0 (or overlap >= size) falls back to the defaults.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split breaks text into ordered chunks of at most c.Size runes,
// overlapping consecutive chunks by c.Overlap runes. It prefers to
// break on a paragraph or sentence boundary near the end of a window
// and falls back to a hard cut when no such boundary exists.
func (c *Chunker) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.Size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.Size
		if end >= len(runes) {
			chunks = append(chunks, strings.TrimSpace(string(runes[start:])))
			break
		}

		cut := boundaryCut(runes, start, end)
		chunks = append(chunks, strings.TrimSpace(string(runes[start:cut])))

		next := cut - c.Overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}

// boundaryCut looks backward from end (within window [start,end]) for a
// paragraph break, then a sentence break, falling back to end itself.
func boundaryCut(runes []rune, start, end int) int {
	window := string(runes[start:end])

	if i := strings.LastIndex(window, "\n\n"); i > 0 {
		return start + i + 2
	}
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if i := strings.LastIndex(window, sep); i > 0 {
			return start + i + len(sep)
		}
	}
	return end
}
