// Package chunker provides a recursive character text splitter.
package chunker

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// chunkNamespace scopes chunk IDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("repochat.chunk"))

// Ensure Splitter implements the interface.
var _ driven.Splitter = (*Splitter)(nil)

// Splitter splits text on an ordered list of separators, preferring the
// earliest separator present, and merges the pieces into chunks of at
// most chunkSize characters with overlap carried across boundaries.
// Pieces still too long are split again with the remaining separators.
type Splitter struct {
	name          string
	chunkSize     int
	overlap       int
	separators    []string
	keepSeparator bool
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators sets the separators, tried in order.
func WithSeparators(seps []string) Option {
	return func(s *Splitter) {
		if len(seps) > 0 {
			s.separators = append([]string(nil), seps...)
		}
	}
}

// WithKeepSeparator controls whether a separator stays attached to the
// start of the piece that follows it.
func WithKeepSeparator(keep bool) Option {
	return func(s *Splitter) {
		s.keepSeparator = keep
	}
}

// WithName sets the name reported by Name.
func WithName(name string) Option {
	return func(s *Splitter) {
		if name != "" {
			s.name = name
		}
	}
}

// New creates a splitter with the given options.
// Without WithSeparators the generic separators are used.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		name:          "recursive",
		chunkSize:     DefaultChunkSize,
		overlap:       DefaultChunkOverlap,
		separators:    GenericSeparators(),
		keepSeparator: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ForLanguage creates a splitter using the separators of a code category.
// Unknown categories get the generic separators.
func ForLanguage(c domain.Category, opts ...Option) *Splitter {
	base := []Option{WithName(c.String()), WithSeparators(SeparatorsFor(c))}
	return New(append(base, opts...)...)
}

// Name returns the splitter name.
func (s *Splitter) Name() string {
	return s.name
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the effective overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split chunks the document. Every chunk copies the document metadata
// and gets an ID derived from the document's source, the chunk position
// and its content, so rebuilding an unchanged repository yields the same IDs.
func (s *Splitter) Split(doc domain.Document) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	texts := s.SplitText(doc.Content)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:       ChunkID(doc.Source(), i, text),
			Content:  text,
			Position: i,
			Metadata: domain.CopyMetadata(doc.Metadata),
		})
	}
	return chunks, nil
}

// ChunkID returns the deterministic ID of a chunk.
func ChunkID(source string, position int, content string) string {
	key := source + "#" + strconv.Itoa(position) + "\x00" + content
	return uuid.NewSHA1(chunkNamespace, []byte(key)).String()
}

// SplitText splits text into chunk strings.
func (s *Splitter) SplitText(text string) []string {
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var rest []string
	for i, sep := range separators {
		if sep == "" {
			separator = sep
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			rest = separators[i+1:]
			break
		}
	}

	pieces := s.splitOn(text, separator)
	mergeSep := separator
	if s.keepSeparator {
		mergeSep = ""
	}

	var out, good []string
	for _, piece := range pieces {
		if length(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good, mergeSep)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good, mergeSep)...)
	}
	return out
}

// splitOn splits text on separator, keeping the separator at the start of
// each following piece when keepSeparator is set. Empty pieces are dropped.
func (s *Splitter) splitOn(text, separator string) []string {
	var parts []string
	switch {
	case separator == "":
		parts = make([]string, 0, len(text))
		for _, r := range text {
			parts = append(parts, string(r))
		}
	case s.keepSeparator:
		raw := strings.Split(text, separator)
		parts = make([]string, 0, len(raw))
		parts = append(parts, raw[0])
		for _, p := range raw[1:] {
			parts = append(parts, separator+p)
		}
	default:
		parts = strings.Split(text, separator)
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// merge combines pieces into chunks no longer than chunkSize where
// possible, keeping up to overlap characters of the previous chunk.
func (s *Splitter) merge(pieces []string, separator string) []string {
	sepLen := length(separator)
	var docs, current []string
	total := 0

	joinLen := func() int {
		if len(current) > 0 {
			return sepLen
		}
		return 0
	}

	for _, piece := range pieces {
		n := length(piece)
		if total+n+joinLen() > s.chunkSize && len(current) > 0 {
			if doc := join(current, separator); doc != "" {
				docs = append(docs, doc)
			}
			for total > s.overlap || (total+n+joinLen() > s.chunkSize && total > 0) {
				drop := length(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if doc := join(current, separator); doc != "" {
		docs = append(docs, doc)
	}
	return docs
}

func join(pieces []string, separator string) string {
	return strings.TrimSpace(strings.Join(pieces, separator))
}

// length counts characters, not bytes.
func length(s string) int {
	return utf8.RuneCountInString(s)
}
