package domain

// RawDocument represents the opaque bytes of a file before normalisation.
// Normalisers turn it into a Document with extracted text.
type RawDocument struct {
	// URI is the file path the bytes were read from.
	URI string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata is copied onto the normalised document.
	Metadata map[string]string
}
