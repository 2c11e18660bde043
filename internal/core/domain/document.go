package domain

import "maps"

// Well-known metadata keys carried by documents and chunks.
const (
	// MetaSource is the absolute path of the file a document was loaded from.
	MetaSource = "source"

	// MetaLanguage is the detected language tag (see Category).
	// Absent for unstructured documents.
	MetaLanguage = "language"

	// MetaRepository is the name of the repository the document belongs to.
	MetaRepository = "repository"

	// MetaContentType describes what kind of segment the document holds.
	MetaContentType = "content_type"
)

// Content types set by the code loaders.
const (
	// ContentTypeFunctionsClasses marks a top-level function or class segment.
	ContentTypeFunctionsClasses = "functions_classes"

	// ContentTypeSimplifiedCode marks the remainder of a file once its
	// functions and classes have been extracted.
	ContentTypeSimplifiedCode = "simplified_code"
)

// Document is an immutable unit of text produced by a loader.
// Callers must not mutate Metadata after creation; use With to derive
// a modified copy.
type Document struct {
	// Content is the full text of the document.
	Content string

	// Metadata holds string key-value pairs. MetaSource is always set.
	Metadata map[string]string
}

// NewDocument creates a document for the given source path.
func NewDocument(source, content string) Document {
	return Document{
		Content:  content,
		Metadata: map[string]string{MetaSource: source},
	}
}

// Source returns the source path of the document.
func (d Document) Source() string {
	return d.Metadata[MetaSource]
}

// Language returns the language tag, or "" when none was detected.
func (d Document) Language() string {
	return d.Metadata[MetaLanguage]
}

// With returns a copy of the document with key set to value.
func (d Document) With(key, value string) Document {
	md := CopyMetadata(d.Metadata)
	if md == nil {
		md = make(map[string]string, 1)
	}
	md[key] = value
	return Document{Content: d.Content, Metadata: md}
}

// Chunk is a bounded slice of a Document's text.
// It inherits the originating document's metadata unchanged.
type Chunk struct {
	// ID is a stable identifier derived from source, position and content.
	ID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the source document.
	Position int

	// Metadata is a copy of the originating document's metadata.
	Metadata map[string]string
}

// Source returns the source path the chunk was split from.
func (c Chunk) Source() string {
	return c.Metadata[MetaSource]
}

// Language returns the language tag of the originating document.
func (c Chunk) Language() string {
	return c.Metadata[MetaLanguage]
}

// Repository returns the repository the chunk was indexed under.
func (c Chunk) Repository() string {
	return c.Metadata[MetaRepository]
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	return maps.Clone(src)
}
