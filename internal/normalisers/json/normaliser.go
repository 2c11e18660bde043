// Package json normalises JSON files into indented text.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// MIMEType is the JSON content type.
const MIMEType = "application/json"

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles JSON documents.
type Normaliser struct{}

// New creates a new JSON normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise validates the JSON and re-indents it so the splitter sees
// one value per line.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !json.Valid(raw.Content) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", domain.ErrLoaderFailure, raw.URI)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw.Content, "", "  "); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoaderFailure, raw.URI, err)
	}

	md := domain.CopyMetadata(raw.Metadata)
	if md == nil {
		md = make(map[string]string, 3)
	}
	md[domain.MetaSource] = raw.URI
	md[domain.MetaContentType] = raw.MIMEType
	md["format"] = "json"

	return &driven.NormaliseResult{
		Document: domain.Document{Content: buf.String(), Metadata: md},
	}, nil
}
