// Package services holds the repochat core: the index builder, the
// ensemble retriever, the session router and the ID-addressed chat service.
// It depends only on domain types and ports.
package services
