package embedding

import (
	"crypto/sha256"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// seedStream is the second PCG word. It is fixed so a seed alone decides the stream.
const seedStream = 0x9e3779b97f4a7c15

// Embedder produces placeholder embeddings of a fixed dimension.
// In deterministic mode each vector is derived from the SHA-256 of the text.
// Otherwise vectors are drawn from a generator owned by the instance, which
// makes random mode unsafe for concurrent use without external locking.
type Embedder struct {
	dimension     int
	seed          *int64
	deterministic bool
	normalize     bool
	rng           *rand.Rand
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithSeed makes random mode reproducible.
func WithSeed(seed int64) Option {
	return func(e *Embedder) {
		s := seed
		e.seed = &s
	}
}

// WithDeterministic selects hashing (true, the default) or random vectors (false).
func WithDeterministic(deterministic bool) Option {
	return func(e *Embedder) { e.deterministic = deterministic }
}

// WithNormalize toggles unit-norm output. Enabled by default.
func WithNormalize(normalize bool) Option {
	return func(e *Embedder) { e.normalize = normalize }
}

// New creates an Embedder producing vectors of the given dimension.
func New(dimension int, opts ...Option) (*Embedder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be > 0, got %d", ErrInvalidConfiguration, dimension)
	}
	e := &Embedder{
		dimension:     dimension,
		deterministic: true,
		normalize:     true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.seed != nil {
		e.rng = rand.New(rand.NewPCG(uint64(*e.seed), seedStream))
	} else {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e, nil
}

// Name returns the identifier of the active strategy.
func (e *Embedder) Name() string {
	if e.deterministic {
		return "hash"
	}
	return "random"
}

// Dimension returns the length of every produced vector.
func (e *Embedder) Dimension() int { return e.dimension }

func (e *Embedder) Deterministic() bool { return e.deterministic }

func (e *Embedder) Normalize() bool { return e.normalize }

// Seed reports the configured seed, if any.
func (e *Embedder) Seed() (int64, bool) {
	if e.seed == nil {
		return 0, false
	}
	return *e.seed, true
}

// HashToVector maps text to a vector derived only from its SHA-256 digest.
// The digest bytes repeat from the start until the dimension is filled.
func (e *Embedder) HashToVector(text string) []float64 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float64, e.dimension)
	for i := range vec {
		vec[i] = float64(sum[i%len(sum)]) / 255.0
	}
	if e.normalize {
		normalizeInPlace(vec)
	}
	return vec
}

// GenerateVector returns the embedding of a single text using the configured strategy.
func (e *Embedder) GenerateVector(text string) []float64 {
	if e.deterministic {
		return e.HashToVector(text)
	}
	vec := make([]float64, e.dimension)
	for i := range vec {
		vec[i] = e.rng.Float64()
	}
	if e.normalize {
		normalizeInPlace(vec)
	}
	return vec
}

// Embed generates one row per text, preserving order.
// An empty batch yields a matrix of shape (0, dimension).
func (e *Embedder) Embed(texts []string) (*Matrix, error) {
	rows := make([][]float64, 0, len(texts))
	for _, text := range texts {
		rows = append(rows, e.GenerateVector(text))
	}
	return newMatrix(rows, e.dimension), nil
}

// EmbedAny embeds a batch whose static type is unknown, such as a decoded
// JSON array. The whole batch is rejected if it is not a list of strings.
func (e *Embedder) EmbedAny(input any) (*Matrix, error) {
	texts, err := ToTexts(input)
	if err != nil {
		return nil, err
	}
	return e.Embed(texts)
}

// ToTexts validates that input is a list of strings without coercing any element.
func ToTexts(input any) ([]string, error) {
	switch v := input.(type) {
	case []string:
		return v, nil
	case []any:
		texts := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: item %d is %T, want string", ErrInvalidInputType, i, item)
			}
			texts[i] = s
		}
		return texts, nil
	default:
		return nil, fmt.Errorf("%w: input is %T, want a list of strings", ErrInvalidInputType, input)
	}
}

// normalizeInPlace scales vec to unit L2 norm; all-zero vectors are left as is.
func normalizeInPlace(vec []float64) {
	norm := floats.Norm(vec, 2)
	if norm > 0 {
		floats.Scale(1/norm, vec)
	}
}
