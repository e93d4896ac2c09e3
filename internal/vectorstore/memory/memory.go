package memory

import (
	"errors"
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"embedgen/internal/domain"
	"embedgen/internal/vectorstore"
)

var _ vectorstore.Storage = (*Storage)(nil)

// Storage is a simple in-memory vector store using brute-force cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	norms     []float64
	entries   []domain.Entry
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.norms = nil
	s.entries = nil
	return nil
}

func (s *Storage) Upsert(entries []domain.Entry, vectors [][]float64) error {
	if len(entries) != len(vectors) {
		return errors.New("entries and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, v := range vectors {
		s.norms = append(s.norms, floats.Norm(v, 2))
	}
	s.entries = append(s.entries, entries...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK rows most similar to vector, best first.
// Vectors are not assumed to be normalized.
func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("vector dimension mismatch")
	}
	if topK <= 0 {
		topK = 5
	}
	qn := floats.Norm(vector, 2)
	results := make([]domain.SearchResult, len(s.vectors))
	for i := range s.vectors {
		results[i] = domain.SearchResult{Entry: s.entries[i], Score: cosine(s.vectors[i], s.norms[i], vector, qn)}
	}
	// ties keep insertion order
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.norms = nil
	s.entries = nil
	return nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func cosine(a []float64, an float64, b []float64, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	return floats.Dot(a, b) / (an * bn)
}
