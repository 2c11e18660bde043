// Package loaders turns a repository directory into documents.
//
// A Factory is created per repository root and hands out one loader per
// content category. Code loaders split large source files into their
// top-level functions and classes; the unstructured loader extracts text
// from documentation and data files through the normaliser registry.
package loaders
