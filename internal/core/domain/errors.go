package domain

import "errors"

// Domain errors represent business logic failures.
var (
	// ErrNotFound indicates a requested entity does not exist.
	// Repository and vector store reads report absence as a nil result instead.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates malformed configuration, e.g. overlap >= chunk size.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates an embedding whose length differs from the store's.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStorage indicates the underlying storage medium is unavailable.
	ErrStorage = errors.New("storage unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service could not produce a vector.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrUnsupportedType indicates no document processor handles the file type.
	ErrUnsupportedType = errors.New("unsupported type")
)
