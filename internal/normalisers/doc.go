// Package normalisers provides implementations of the Normaliser interface
// for the unstructured document formats repochat indexes. Each normaliser
// knows how to extract text content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup. A normaliser
// that cannot parse its input returns an error wrapping
// domain.ErrLoaderFailure so the loader can skip the file.
package normalisers
