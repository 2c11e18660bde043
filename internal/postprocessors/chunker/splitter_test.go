package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/repochat/internal/core/domain"
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
		if s.Name() != "recursive" {
			t.Errorf("expected name 'recursive', got '%s'", s.Name())
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		s := New(WithChunkSize(500))
		if s.ChunkSize() != 500 {
			t.Errorf("expected chunkSize 500, got %d", s.ChunkSize())
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		if s.Overlap() != 25 {
			t.Errorf("expected overlap clamped to 25, got %d", s.Overlap())
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

func TestForLanguage(t *testing.T) {
	s := ForLanguage(domain.CategoryPython, WithChunkSize(300))
	if s.Name() != "python" {
		t.Errorf("expected name 'python', got '%s'", s.Name())
	}
	if s.ChunkSize() != 300 {
		t.Errorf("expected chunkSize 300, got %d", s.ChunkSize())
	}
	if last := s.separators[len(s.separators)-1]; last != " " {
		t.Errorf("expected language separators to end with a space, got %q", last)
	}
}

func TestSplit_EmptyContent(t *testing.T) {
	chunks, err := New().Split(domain.NewDocument("/r/a.txt", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}

func TestSplit_SmallContent(t *testing.T) {
	chunks, err := New(WithChunkSize(100), WithOverlap(20)).Split(domain.NewDocument("/r/a.txt", "Hello, World!"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Hello, World!" {
		t.Errorf("expected content 'Hello, World!', got '%s'", chunks[0].Content)
	}
	if chunks[0].Position != 0 {
		t.Errorf("expected position 0, got %d", chunks[0].Position)
	}
}

func TestSplitText_Overlap(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(4))

	got := s.SplitText("aaa bbb ccc ddd")
	want := []string{"aaa bbb", "bbb ccc", "ccc ddd"}

	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSplitText_RespectsChunkSize(t *testing.T) {
	s := New(WithChunkSize(50), WithOverlap(10))
	text := strings.Repeat("lorem ipsum dolor sit amet ", 40)

	for i, chunk := range s.SplitText(text) {
		if n := utf8.RuneCountInString(chunk); n > 50 {
			t.Errorf("chunk %d has %d characters, want <= 50", i, n)
		}
	}
}

func TestSplitText_GenericFallsBackToCharacters(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(0))

	chunks := s.SplitText(strings.Repeat("a", 25))
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %q", len(chunks), chunks)
	}
	for i, chunk := range chunks {
		if len(chunk) > 10 {
			t.Errorf("chunk %d too long: %d", i, len(chunk))
		}
	}
}

func TestSplitText_LanguageKeepsAtomicUnitWhole(t *testing.T) {
	s := ForLanguage(domain.CategoryPython, WithChunkSize(10), WithOverlap(0))
	long := strings.Repeat("a", 30)

	found := false
	for _, chunk := range s.SplitText("x = " + long) {
		if strings.Contains(chunk, long) {
			found = true
		}
	}
	if !found {
		t.Error("expected the oversized token to stay in one chunk")
	}
}

func TestSplitText_PythonClassBoundaries(t *testing.T) {
	s := ForLanguage(domain.CategoryPython, WithChunkSize(20), WithOverlap(0))

	chunks := s.SplitText("class A:\n    pass\nclass B:\n    pass")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "class A") || !strings.HasPrefix(chunks[1], "class B") {
		t.Errorf("expected chunks split at class boundaries, got %q", chunks)
	}
}

func TestSplitText_CountsCharactersNotBytes(t *testing.T) {
	s := New(WithChunkSize(3), WithOverlap(0))

	chunks := s.SplitText("ééééé")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "ééé" || chunks[1] != "éé" {
		t.Errorf("unexpected chunks %q", chunks)
	}
}

func TestSplitText_WithoutKeepSeparator(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(0), WithSeparators([]string{","}), WithKeepSeparator(false))

	chunks := s.SplitText("aaaa,bbbb,cccc")
	if len(chunks) != 2 || chunks[0] != "aaaa,bbbb" || chunks[1] != "cccc" {
		t.Errorf("unexpected chunks %q", chunks)
	}
}

func TestSplit_MetadataAndPositions(t *testing.T) {
	doc := domain.NewDocument("/repo/app.py", strings.Repeat("word ", 100)).
		With(domain.MetaLanguage, "python")

	chunks, err := New(WithChunkSize(50), WithOverlap(10)).Split(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Position != i {
			t.Errorf("chunk %d has position %d", i, chunk.Position)
		}
		if chunk.Source() != "/repo/app.py" || chunk.Language() != "python" {
			t.Errorf("chunk %d lost metadata: %v", i, chunk.Metadata)
		}
	}

	chunks[0].Metadata["source"] = "mutated"
	if doc.Source() != "/repo/app.py" {
		t.Error("chunk metadata must be a copy")
	}
}

func TestSplit_DeterministicIDs(t *testing.T) {
	doc := domain.NewDocument("/repo/README.md", strings.Repeat("line of text\n", 50))
	s := New(WithChunkSize(100), WithOverlap(20))

	first, _ := s.Split(doc)
	second, _ := s.Split(doc)

	seen := make(map[string]bool)
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("chunk %d ID changed between runs", i)
		}
		if seen[first[i].ID] {
			t.Errorf("duplicate chunk ID %s", first[i].ID)
		}
		seen[first[i].ID] = true
	}
}

func TestChunkID_DependsOnSourceAndPosition(t *testing.T) {
	base := ChunkID("/a", 0, "x")
	if base == ChunkID("/b", 0, "x") {
		t.Error("expected different IDs for different sources")
	}
	if base == ChunkID("/a", 1, "x") {
		t.Error("expected different IDs for different positions")
	}
	if base != ChunkID("/a", 0, "x") {
		t.Error("expected stable ID")
	}
}

func TestSeparatorsFor(t *testing.T) {
	tests := []struct {
		category domain.Category
		first    string
		last     string
	}{
		{domain.CategoryJava, "\nclass ", " "},
		{domain.CategoryPython, "\nclass ", " "},
		{domain.CategoryJavaScript, "\nfunction ", " "},
		{domain.CategoryGeneralUnstructured, "\n\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			seps := SeparatorsFor(tt.category)
			if seps[0] != tt.first || seps[len(seps)-1] != tt.last {
				t.Errorf("unexpected separators %q", seps)
			}
		})
	}
}
