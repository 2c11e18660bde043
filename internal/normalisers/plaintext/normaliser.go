package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
// Markdown, JSON and XML are listed so they can still be read as text
// when no dedicated normaliser is registered.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"application/json",
		"application/xml",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw document to a normalised document.
// Content that is not valid UTF-8 is rejected as a format error.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrLoaderFailure, raw.URI)
	}

	doc := domain.Document{
		Content:  string(raw.Content),
		Metadata: metadataFor(raw),
	}

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// metadataFor copies raw metadata and records source and content type.
func metadataFor(raw *domain.RawDocument) map[string]string {
	md := domain.CopyMetadata(raw.Metadata)
	if md == nil {
		md = make(map[string]string, 2)
	}
	md[domain.MetaSource] = raw.URI
	md[domain.MetaContentType] = raw.MIMEType
	return md
}
