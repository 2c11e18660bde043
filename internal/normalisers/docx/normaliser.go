// Package docx extracts paragraph text from Word (OOXML) documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driven"
)

// MIMEType is the DOCX content type.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

const (
	bodyPart = "word/document.xml"
	corePart = "docProps/core.xml"
)

var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser flattens the main document part to text, one line per
// paragraph. Paragraphs inside tables are included. Headings styled
// Heading1..Heading6 become Markdown headings so the chunker can split on
// them.
type Normaliser struct{}

// New creates a new DOCX normaliser.
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

// Normalise converts a DOCX archive to a document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	archive, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a docx archive: %v", domain.ErrLoaderFailure, raw.URI, err)
	}

	body, err := readPart(archive, bodyPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoaderFailure, raw.URI, err)
	}
	text, err := flatten(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrLoaderFailure, raw.URI, err)
	}

	md := domain.CopyMetadata(raw.Metadata)
	if md == nil {
		md = make(map[string]string, 4)
	}
	md[domain.MetaSource] = raw.URI
	md[domain.MetaContentType] = raw.MIMEType
	md["format"] = "docx"
	md["title"] = title(archive, raw.URI)

	return &driven.NormaliseResult{
		Document: domain.Document{Content: text, Metadata: md},
	}, nil
}

func readPart(archive *zip.Reader, name string) ([]byte, error) {
	f, err := archive.Open(name)
	if err != nil {
		return nil, fmt.Errorf("missing %s", name)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// flatten walks the WordprocessingML token stream. Only local names are
// matched so documents using a non-standard prefix still parse.
func flatten(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		out     strings.Builder
		para    strings.Builder
		heading int
		inText  bool
		started bool
	)
	endParagraph := func() {
		if started {
			out.WriteByte('\n')
		}
		started = true
		line := para.String()
		if heading > 0 && strings.TrimSpace(line) != "" {
			out.WriteString(strings.Repeat("#", heading) + " ")
		}
		out.WriteString(line)
		para.Reset()
		heading = 0
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parsing %s: %w", bodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			case "pStyle":
				heading = headingLevel(attr(t, "val"))
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				endParagraph()
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// headingLevel maps a paragraph style ID such as "Heading2" to 2.
func headingLevel(style string) int {
	rest, ok := strings.CutPrefix(style, "Heading")
	if !ok || len(rest) != 1 || rest[0] < '1' || rest[0] > '6' {
		return 0
	}
	return int(rest[0] - '0')
}

// title prefers dc:title from the core properties part and falls back to
// the file name with separators turned into spaces.
func title(archive *zip.Reader, uri string) string {
	if data, err := readPart(archive, corePart); err == nil {
		var core struct {
			Title string `xml:"title"`
		}
		if xml.Unmarshal(data, &core) == nil {
			if t := strings.TrimSpace(core.Title); t != "" {
				return t
			}
		}
	}

	name := strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
