package embedding

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestNew_InvalidDimension(t *testing.T) {
	for _, dim := range []int{0, -1, -128} {
		e, err := New(dim)
		assert.Nil(t, e)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidConfiguration), "dim=%d: %v", dim, err)
	}
}

func TestNew_Defaults(t *testing.T) {
	e, err := New(128)
	require.NoError(t, err)
	assert.Equal(t, 128, e.Dimension())
	assert.True(t, e.Deterministic())
	assert.True(t, e.Normalize())
	assert.Equal(t, "hash", e.Name())
	_, ok := e.Seed()
	assert.False(t, ok)

	r, err := New(8, WithDeterministic(false), WithSeed(7))
	require.NoError(t, err)
	assert.Equal(t, "random", r.Name())
	seed, ok := r.Seed()
	assert.True(t, ok)
	assert.Equal(t, int64(7), seed)
}

func TestEmbed_Shape(t *testing.T) {
	for _, dim := range []int{1, 16, 31, 32, 33, 64, 100, 512} {
		e, err := New(dim)
		require.NoError(t, err)
		m, err := e.Embed([]string{"text"})
		require.NoError(t, err)
		rows, cols := m.Shape()
		assert.Equal(t, 1, rows)
		assert.Equal(t, dim, cols)
		assert.Len(t, m.Row(0), dim)
	}
}

func TestEmbed_EdgeCaseTexts(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
	}{
		{name: "empty string", texts: []string{""}},
		{name: "very long input", texts: []string{strings.Repeat("a", 10000)}},
		{name: "unicode and emoji", texts: []string{"hello 🌍", "emoji 😎", "unicode 世界"}},
		{name: "case variants", texts: []string{"Text", "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(32)
			require.NoError(t, err)
			m, err := e.Embed(tt.texts)
			require.NoError(t, err)
			rows, cols := m.Shape()
			assert.Equal(t, len(tt.texts), rows)
			assert.Equal(t, 32, cols)
		})
	}
}

func TestHashMode_Deterministic(t *testing.T) {
	texts := []string{"x", "", strings.Repeat("long ", 2000), "emoji 😎 世界"}
	a, err := New(32)
	require.NoError(t, err)
	b, err := New(32, WithSeed(99))
	require.NoError(t, err)

	for _, text := range texts {
		first, err := a.Embed([]string{text})
		require.NoError(t, err)
		second, err := a.Embed([]string{text})
		require.NoError(t, err)
		other, err := b.Embed([]string{text})
		require.NoError(t, err)
		assert.Equal(t, first.Row(0), second.Row(0))
		assert.Equal(t, first.Row(0), other.Row(0))
	}
}

func TestHashToVector_TilesDigest(t *testing.T) {
	e, err := New(70, WithNormalize(false))
	require.NoError(t, err)
	vec := e.HashToVector("tile me")
	require.Len(t, vec, 70)
	for i := 32; i < 70; i++ {
		assert.Equal(t, vec[i%32], vec[i], "index %d should repeat index %d", i, i%32)
	}
	for _, v := range vec {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestHashToVector_KnownDigest(t *testing.T) {
	// sha256("") starts with e3 b0 c4 42.
	e, err := New(4, WithNormalize(false))
	require.NoError(t, err)
	vec := e.HashToVector("")
	assert.Equal(t, []float64{0xe3 / 255.0, 0xb0 / 255.0, 0xc4 / 255.0, 0x42 / 255.0}, vec)
}

func TestHashToVector_PrefixStable(t *testing.T) {
	short, err := New(16, WithNormalize(false))
	require.NoError(t, err)
	long, err := New(48, WithNormalize(false))
	require.NoError(t, err)
	assert.Equal(t, short.HashToVector("prefix"), long.HashToVector("prefix")[:16])
}

func TestHashMode_IgnoresRandomState(t *testing.T) {
	e, err := New(16, WithSeed(1))
	require.NoError(t, err)
	_ = e.rng.Uint64()
	_ = e.HashToVector("a")
	_, err = e.Embed([]string{"b", "c"})
	require.NoError(t, err)

	f, err := New(16, WithSeed(1))
	require.NoError(t, err)
	_ = f.rng.Uint64()
	assert.Equal(t, f.rng.Uint64(), e.rng.Uint64(), "hash mode must not advance the generator")
}

func TestRandomMode_SeedReproducible(t *testing.T) {
	texts := []string{"consistency", "again", "consistency"}
	a, err := New(32, WithDeterministic(false), WithSeed(123))
	require.NoError(t, err)
	b, err := New(32, WithDeterministic(false), WithSeed(123))
	require.NoError(t, err)

	ma, err := a.Embed(texts)
	require.NoError(t, err)
	mb, err := b.Embed(texts)
	require.NoError(t, err)
	assert.Equal(t, ma.Rows(), mb.Rows())

	// The stream keeps advancing across calls.
	na, err := a.Embed(texts[:1])
	require.NoError(t, err)
	nb, err := b.Embed(texts[:1])
	require.NoError(t, err)
	assert.Equal(t, na.Row(0), nb.Row(0))
	assert.NotEqual(t, ma.Row(0), na.Row(0))
}

func TestRandomMode_DifferentSeeds(t *testing.T) {
	a, err := New(32, WithDeterministic(false), WithSeed(1))
	require.NoError(t, err)
	b, err := New(32, WithDeterministic(false), WithSeed(2))
	require.NoError(t, err)

	ma, err := a.Embed([]string{"variation"})
	require.NoError(t, err)
	mb, err := b.Embed([]string{"variation"})
	require.NoError(t, err)
	assert.NotEqual(t, ma.Row(0), mb.Row(0))
}

func TestRandomMode_ValuesInRange(t *testing.T) {
	e, err := New(256, WithDeterministic(false), WithNormalize(false), WithSeed(5))
	require.NoError(t, err)
	vec := e.GenerateVector("ignored")
	for _, v := range vec {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestNormalization(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{name: "hash", opts: nil},
		{name: "random", opts: []Option{WithDeterministic(false), WithSeed(3)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on, err := New(32, tt.opts...)
			require.NoError(t, err)
			m, err := on.Embed([]string{"test"})
			require.NoError(t, err)
			assert.InDelta(t, 1.0, floats.Norm(m.Row(0), 2), 1e-9)

			off, err := New(32, append(tt.opts, WithNormalize(false))...)
			require.NoError(t, err)
			m, err = off.Embed([]string{"test"})
			require.NoError(t, err)
			assert.Greater(t, floats.Norm(m.Row(0), 2), 1.0+1e-6)
		})
	}
}

func TestNormalizeInPlace_ZeroVector(t *testing.T) {
	vec := make([]float64, 8)
	normalizeInPlace(vec)
	assert.Equal(t, make([]float64, 8), vec)
}

func TestEmbedAny_RejectsNonStrings(t *testing.T) {
	e, err := New(32)
	require.NoError(t, err)

	tests := []struct {
		name  string
		input any
	}{
		{name: "nil element", input: []any{nil}},
		{name: "int element", input: []any{123}},
		{name: "float element", input: []any{45.6}},
		{name: "bool element", input: []any{true}},
		{name: "mixed", input: []any{"ok", 1}},
		{name: "bare string", input: "not-a-list"},
		{name: "nil input", input: nil},
		{name: "map input", input: map[string]any{"text": "x"}},
		{name: "int slice", input: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := e.EmbedAny(tt.input)
			assert.Nil(t, m)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInputType), "%v", err)
		})
	}
}

func TestEmbedAny_NoPartialDraws(t *testing.T) {
	a, err := New(8, WithDeterministic(false), WithSeed(11))
	require.NoError(t, err)
	b, err := New(8, WithDeterministic(false), WithSeed(11))
	require.NoError(t, err)

	_, err = a.EmbedAny([]any{"first", 2})
	require.Error(t, err)

	ma, err := a.EmbedAny([]any{"first"})
	require.NoError(t, err)
	mb, err := b.Embed([]string{"first"})
	require.NoError(t, err)
	assert.Equal(t, mb.Row(0), ma.Row(0))
}

func TestEmbedAny_AcceptsStringLists(t *testing.T) {
	e, err := New(16)
	require.NoError(t, err)

	m, err := e.EmbedAny([]any{"a", "b"})
	require.NoError(t, err)
	rows, _ := m.Shape()
	assert.Equal(t, 2, rows)

	m, err = e.EmbedAny([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestEmbed_OrderPreserved(t *testing.T) {
	e, err := New(32)
	require.NoError(t, err)
	pair, err := e.Embed([]string{"a", "b"})
	require.NoError(t, err)
	single, err := e.Embed([]string{"a"})
	require.NoError(t, err)
	second, err := e.Embed([]string{"b"})
	require.NoError(t, err)
	assert.Equal(t, single.Row(0), pair.Row(0))
	assert.Equal(t, second.Row(0), pair.Row(1))
}

func TestEmbed_EmptyBatch(t *testing.T) {
	e, err := New(32)
	require.NoError(t, err)
	for _, texts := range [][]string{{}, nil} {
		m, err := e.Embed(texts)
		require.NoError(t, err)
		rows, cols := m.Shape()
		assert.Equal(t, 0, rows)
		assert.Equal(t, 32, cols)
	}

	m, err := e.EmbedAny([]any{})
	require.NoError(t, err)
	rows, cols := m.Shape()
	assert.Equal(t, 0, rows)
	assert.Equal(t, 32, cols)
}

func TestEmbed_DemoBatch(t *testing.T) {
	texts := []string{"hello world", "test text", "another one"}
	e, err := New(64, WithDeterministic(true))
	require.NoError(t, err)
	m, err := e.Embed(texts)
	require.NoError(t, err)

	rows, cols := m.Shape()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 64, cols)
	for i := range texts {
		assert.InDelta(t, 1.0, floats.Norm(m.Row(i), 2), 1e-9)
	}

	again, err := New(64)
	require.NoError(t, err)
	m2, err := again.Embed(texts)
	require.NoError(t, err)
	assert.Equal(t, m.Rows(), m2.Rows())
}
