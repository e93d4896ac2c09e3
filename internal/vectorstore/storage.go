package vectorstore

import "embedgen/internal/domain"

// Storage keeps generated vectors and supports similarity search.
type Storage interface {
	Init(dimension int) error
	Upsert(entries []domain.Entry, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.SearchResult, error)
	Clear() error
	Len() int
}

var _ domain.VectorStore = Storage(nil)
