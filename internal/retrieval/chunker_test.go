package retrieval

import (
	"strings"
	"testing"
)

func TestSplitReturnsWholeTextWhenUnderSize(t *testing.T) {
	c := NewChunker(1000, 200)
	chunks := c.Split("a short document")
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0] != "a short document" {
		t.Fatalf("chunks[0] = %q", chunks[0])
	}
}

func TestSplitProducesOverlappingWindows(t *testing.T) {
	c := NewChunker(50, 10)
	text := strings.Repeat("word ", 40) // 200 runes, no sentence boundaries
	chunks := c.Split(text)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if len([]rune(chunk)) > c.Size {
			t.Fatalf("chunk exceeds size %d: %q", c.Size, chunk)
		}
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	c := NewChunker(40, 5)
	text := "first paragraph goes here.\n\nsecond paragraph continues after that with more words to push past the window"
	chunks := c.Split(text)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if !strings.Contains(chunks[0], "first paragraph") {
		t.Fatalf("chunks[0] = %q, expected to contain first paragraph", chunks[0])
	}
}

func TestSplitEmptyTextReturnsNil(t *testing.T) {
	c := NewChunker(0, 0)
	if chunks := c.Split(""); chunks != nil {
		t.Fatalf("Split(\"\") = %v, want nil", chunks)
	}
}

func TestNewChunkerDefaultsInvalidOverlap(t *testing.T) {
	c := NewChunker(100, 150)
	if c.Overlap != defaultChunkOverlap {
		t.Fatalf("Overlap = %d, want default %d", c.Overlap, defaultChunkOverlap)
	}
}
