// Package xml normalises XML files to their character data.
package xml

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles XML documents.
type Normaliser struct{}

// New creates a new XML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/xml", "text/xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the non-blank character data of each element, one
// line per text node. Markup and attributes are dropped.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	decoder := xml.NewDecoder(bytes.NewReader(raw.Content))
	decoder.Strict = true

	var lines []string
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoaderFailure, raw.URI, err)
		}
		if cd, ok := tok.(xml.CharData); ok {
			if text := strings.TrimSpace(string(cd)); text != "" {
				lines = append(lines, text)
			}
		}
	}

	md := domain.CopyMetadata(raw.Metadata)
	if md == nil {
		md = make(map[string]string, 3)
	}
	md[domain.MetaSource] = raw.URI
	md[domain.MetaContentType] = raw.MIMEType
	md["format"] = "xml"

	return &driven.NormaliseResult{
		Document: domain.Document{Content: strings.Join(lines, "\n"), Metadata: md},
	}, nil
}
