package chunker

import (
	"strings"
	"testing"

	"github.com/docuchat-labs/docuchat/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, s.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		s := New(WithChunkSize(500))
		if s.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", s.chunkSize)
		}
	})

	t.Run("custom overlap", func(t *testing.T) {
		s := New(WithOverlap(100))
		if s.overlap != 100 {
			t.Errorf("expected overlap 100, got %d", s.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.overlap >= s.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1))
		if s.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", s.chunkSize)
		}
		if s.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", s.overlap)
		}
	})
}

func TestFromConfig(t *testing.T) {
	cfg := domain.SessionConfig{ChunkSize: 768, ChunkOverlap: 153}
	s := New(FromConfig(cfg)...)
	if s.ChunkSize() != 768 {
		t.Errorf("expected chunkSize 768, got %d", s.ChunkSize())
	}
	if s.Overlap() != 153 {
		t.Errorf("expected overlap 153, got %d", s.Overlap())
	}
}

func TestFromConfig_UnsetFieldsKeepDefaults(t *testing.T) {
	s := New(FromConfig(domain.SessionConfig{})...)
	if s.ChunkSize() != DefaultChunkSize {
		t.Errorf("expected default chunkSize, got %d", s.ChunkSize())
	}
}

func TestSplit_EmptyContent(t *testing.T) {
	s := New()
	chunks := s.Split("test-doc", "")
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestSplit_SmallContent(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	content := "This is a small piece of content."

	chunks := s.Split("test-doc", content)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk for small content, got %d", len(chunks))
	}

	if chunks[0].DocumentID != "test-doc" {
		t.Errorf("expected DocumentID 'test-doc', got '%s'", chunks[0].DocumentID)
	}
	if chunks[0].Content != content {
		t.Error("expected content to match document content")
	}
	if chunks[0].ID == "" {
		t.Error("expected chunk to get an ID")
	}
}

func TestSplit_LargeContent(t *testing.T) {
	s := New(WithChunkSize(100), WithOverlap(20))
	content := strings.Repeat("a", 250)

	chunks := s.Split("test-doc", content)

	// Stride is 80: starts at 0, 80, 160; the third chunk reaches the
	// end of the content, so splitting stops there.
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0].Content) != 100 {
		t.Errorf("expected first chunk of 100 chars, got %d", len(chunks[0].Content))
	}
	if len(chunks[2].Content) != 90 {
		t.Errorf("expected final chunk of 90 chars, got %d", len(chunks[2].Content))
	}
}

func TestSplit_NoRedundantTailChunk(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(4))
	content := "abcdefghijklmnopqrst" // 20 chars, strides at 0, 6, 12

	chunks := s.Split("test-doc", content)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if last := chunks[2].Content; last != "mnopqrst" {
		t.Errorf("unexpected final chunk %q", last)
	}

	// Once a chunk reaches the end of the content, no further chunk may
	// be emitted: it would be a subspan of the previous one, stored and
	// embedded twice.
	for i := 1; i < len(chunks); i++ {
		if strings.HasSuffix(chunks[i-1].Content, chunks[i].Content) {
			t.Errorf("chunk %d %q is contained in its predecessor", i, chunks[i].Content)
		}
	}
}

func TestSplit_OverlapPreserved(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(4))
	content := "abcdefghijklmnopqrst"

	chunks := s.Split("test-doc", content)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The tail of each chunk must reappear at the head of the next.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Content
		tail := prev[len(prev)-4:]
		if !strings.HasPrefix(chunks[i].Content, tail) {
			t.Errorf("chunk %d does not start with the previous chunk's overlap", i)
		}
	}
}

func TestSplit_NoOverlap(t *testing.T) {
	s := New(WithChunkSize(5), WithOverlap(0))
	content := "abcdefghij"

	chunks := s.Split("test-doc", content)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "abcde" || chunks[1].Content != "fghij" {
		t.Errorf("unexpected chunk contents: %q, %q", chunks[0].Content, chunks[1].Content)
	}
}

func TestSplit_UniqueIDs(t *testing.T) {
	s := New(WithChunkSize(5), WithOverlap(0))
	chunks := s.Split("test-doc", strings.Repeat("x", 50))

	seen := make(map[string]bool)
	for _, c := range chunks {
		if seen[c.ID] {
			t.Fatalf("duplicate chunk ID %s", c.ID)
		}
		seen[c.ID] = true
	}
}
