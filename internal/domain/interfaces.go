package domain

import "embedgen/internal/embedding"

// Entry is one embedded line of input, identified by its row in the matrix.
type Entry struct {
	Row  int
	Text string
}

// SearchResult represents a matching row with a similarity score.
type SearchResult struct {
	Entry Entry
	Score float64
}

// Embedder converts a batch of texts into an embedding matrix.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(texts []string) (*embedding.Matrix, error)
}

// Splitter turns free-form text into the list of texts to embed.
type Splitter interface {
	Split(text string) []string
}

// VectorStore holds vectors in memory and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(entries []Entry, vectors [][]float64) error
	Search(vector []float64, topK int) ([]SearchResult, error)
	Clear() error
	Len() int
}
