package domain

import "errors"

var (
	// ErrNotFound signals a product missing from the primary catalog.
	ErrNotFound = errors.New("product not found")
	// ErrVectorNotFound signals a missing product vector record.
	ErrVectorNotFound = errors.New("product vector not found")
	// ErrInvalidQuery signals a rewritten query that failed the shape gate.
	// Consumed as a normal branch by the RAG pipeline, not an exceptional path.
	ErrInvalidQuery = errors.New("invalid structured query")
	// ErrInvalidTopK signals an out-of-range topK value.
	ErrInvalidTopK = errors.New("topK out of range")
	// ErrEmbeddingProviderError signals an embedding provider failure or timeout.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat completion provider failure or timeout.
	ErrChatProviderError = errors.New("chat provider error")
)
