package domain

import "time"

// BuildReport is the outcome of building one repository's index.
type BuildReport struct {
	// Repository is the repository name.
	Repository string

	// Documents is the number of documents loaded.
	Documents int

	// Chunks is the number of chunks embedded and saved.
	Chunks int

	// Skipped is true when the repository was skipped without error
	// (no documents, no chunks, or an invalid entry).
	Skipped bool

	// Reason explains a skip.
	Reason string

	// Warnings holds non-fatal problems such as failed loader categories.
	Warnings []string

	// Err is set when the build failed.
	Err error

	// Duration is the wall time spent on the repository.
	Duration time.Duration
}

// Succeeded returns true if an index was saved.
func (r BuildReport) Succeeded() bool {
	return r.Err == nil && !r.Skipped
}
