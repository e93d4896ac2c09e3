package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"embedgen/internal/config"
	"embedgen/internal/domain"
	"embedgen/internal/embedding"
)

// ErrNoInput is returned when there is nothing to embed.
var ErrNoInput = errors.New("no text to embed")

// Settings are the per-request embedder options chosen by the user.
type Settings struct {
	Dimension     int
	Seed          *int64
	Deterministic bool
	Normalize     bool
}

// SettingsFromConfig converts the embedder config section into Settings.
func SettingsFromConfig(cfg config.EmbedderConfig) Settings {
	s := Settings{Deterministic: true, Normalize: true}
	if cfg.Dimension != nil {
		s.Dimension = *cfg.Dimension
	}
	if cfg.Seed != nil {
		seed := *cfg.Seed
		s.Seed = &seed
	}
	if cfg.Deterministic != nil {
		s.Deterministic = *cfg.Deterministic
	}
	if cfg.Normalize != nil {
		s.Normalize = *cfg.Normalize
	}
	return s
}

// NewEmbedder builds an embedder for these settings.
func (s Settings) NewEmbedder() (*embedding.Embedder, error) {
	opts := []embedding.Option{
		embedding.WithDeterministic(s.Deterministic),
		embedding.WithNormalize(s.Normalize),
	}
	if s.Seed != nil {
		opts = append(opts, embedding.WithSeed(*s.Seed))
	}
	return embedding.New(s.Dimension, opts...)
}

// Result is one generated batch.
type Result struct {
	ID       uuid.UUID
	Texts    []string
	Matrix   *embedding.Matrix
	Settings Settings
	Embedder string
}

// EmbeddingService splits text, generates the embedding matrix and keeps
// the last batch indexed for similarity lookups.
type EmbeddingService struct {
	splitter domain.Splitter
	store    domain.VectorStore
	last     *Result
}

func NewEmbeddingService(splitter domain.Splitter, store domain.VectorStore) *EmbeddingService {
	return &EmbeddingService{splitter: splitter, store: store}
}

// Generate embeds every non-empty line of raw.
func (s *EmbeddingService) Generate(raw string, settings Settings) (*Result, error) {
	texts := s.splitter.Split(raw)
	if len(texts) == 0 {
		return nil, ErrNoInput
	}
	return s.GenerateTexts(texts, settings)
}

// GenerateTexts embeds texts as given. An empty list is valid and yields
// a (0, dimension) matrix.
func (s *EmbeddingService) GenerateTexts(texts []string, settings Settings) (*Result, error) {
	emb, err := settings.NewEmbedder()
	if err != nil {
		return nil, err
	}
	return s.run(emb, texts, settings)
}

// GenerateAny embeds a batch of unknown static type, such as decoded JSON.
func (s *EmbeddingService) GenerateAny(input any, settings Settings) (*Result, error) {
	emb, err := settings.NewEmbedder()
	if err != nil {
		return nil, err
	}
	texts, err := embedding.ToTexts(input)
	if err != nil {
		return nil, err
	}
	return s.run(emb, texts, settings)
}

func (s *EmbeddingService) run(emb domain.Embedder, texts []string, settings Settings) (*Result, error) {
	m, err := emb.Embed(texts)
	if err != nil {
		return nil, err
	}
	if err := s.store.Init(emb.Dimension()); err != nil {
		return nil, err
	}
	entries := make([]domain.Entry, len(texts))
	for i, t := range texts {
		entries[i] = domain.Entry{Row: i, Text: t}
	}
	if err := s.store.Upsert(entries, m.Rows()); err != nil {
		return nil, err
	}
	rows, cols := m.Shape()
	res := &Result{
		ID:       uuid.New(),
		Texts:    texts,
		Matrix:   m,
		Settings: settings,
		Embedder: emb.Name(),
	}
	s.last = res
	log.Debug().
		Str("batch_id", res.ID.String()).
		Str("embedder", res.Embedder).
		Int("rows", rows).
		Int("dim", cols).
		Msg("Embeddings generated")
	return res, nil
}

// Last returns the most recent batch, or nil.
func (s *EmbeddingService) Last() *Result { return s.last }

// Similar returns the rows of the last batch closest to row, excluding row itself.
func (s *EmbeddingService) Similar(row, topK int) ([]domain.SearchResult, error) {
	if s.last == nil {
		return nil, ErrNoInput
	}
	if row < 0 || row >= s.last.Matrix.Len() {
		return nil, fmt.Errorf("row %d out of range [0,%d)", row, s.last.Matrix.Len())
	}
	if topK <= 0 {
		return nil, nil
	}
	res, err := s.store.Search(s.last.Matrix.Row(row), topK+1)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, r := range res {
		if r.Entry.Row == row {
			continue
		}
		out = append(out, r)
		if len(out) == topK {
			break
		}
	}
	return out, nil
}
