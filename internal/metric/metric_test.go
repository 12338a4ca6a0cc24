package metric

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		p, q     []float64
		expected float64
	}{
		{"OneDimension", []float64{0}, []float64{5}, 5.0},
		{"TwoDimensions", []float64{0, 0}, []float64{4, 4}, 5.656854249},
		{"ThreeDimensions", []float64{0, 0, 0}, []float64{-2, -2, -4}, 4.898979486},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Euclidean(tt.p, tt.q)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestEuclidean_DimensionMismatch(t *testing.T) {
	_, err := Euclidean([]float64{0, 0}, []float64{4, 4, 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	var dm *DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 2, dm.Left)
	assert.Equal(t, 3, dm.Right)
}

func TestEuclidean_ManySmallTerms(t *testing.T) {
	// 10^6 coordinates differing by 1e-3 give sqrt(1e6 * 1e-6) = 1.
	n := 1_000_000
	p := make([]float64, n)
	q := make([]float64, n)
	for i := range q {
		q[i] = 1e-3
	}
	got, err := Euclidean(p, q)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		p, q     string
		expected int
	}{
		{"kitten", "kitten", 0},
		{"kitten", "kittens", 1},
		{"cat", "catch", 2},
		{"kitten", "sitting", 3},
		{"", "foobarbaz", 9},
		{"foobarbaz", "", 9},
		{"", "", 0},
		{"flaw", "lawn", 2},
		{"héllo", "hello", 1},
	}

	for _, tt := range tests {
		t.Run(tt.p+"/"+tt.q, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.p, tt.q))
		})
	}
}

func TestLevenshteinSeq(t *testing.T) {
	assert.Equal(t, 1, LevenshteinSeq([]int{1, 2, 3}, []int{1, 3}))
	assert.Equal(t, 0, LevenshteinSeq([]int{1, 2, 3}, []int{1, 2, 3}))
	assert.Equal(t, 3, LevenshteinSeq(nil, []int{1, 2, 3}))
}

func TestHamming(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uint64
		expected int
	}{
		{"identical", 0, 0, 0},
		{"one bit", 1, 0, 1},
		{"two bits", 3, 0, 2},
		{"all bits", 0xFFFFFFFFFFFFFFFF, 0, 64},
		{"half bits", 0xAAAAAAAAAAAAAAAA, 0x5555555555555555, 64},
		{"similar", 0x8000000000000000, 0x8000000000000001, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Hamming(tt.a, tt.b))
		})
	}
}

// checkAxioms samples triples and verifies identity, symmetry and the
// triangle inequality.
func checkAxioms[T any](t *testing.T, gen func(*rand.Rand) T, m func(a, b T) float64) {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	const eps = 1e-9
	for i := 0; i < 500; i++ {
		a, b, c := gen(rng), gen(rng), gen(rng)
		require.InDelta(t, 0, m(a, a), eps, "identity")
		require.InDelta(t, m(a, b), m(b, a), eps, "symmetry")
		require.LessOrEqual(t, m(a, c), m(a, b)+m(b, c)+eps, "triangle inequality")
	}
}

func TestAxioms_Euclidean(t *testing.T) {
	gen := func(r *rand.Rand) []float64 {
		v := make([]float64, 4)
		for i := range v {
			v[i] = r.NormFloat64() * 10
		}
		return v
	}
	checkAxioms(t, gen, func(a, b []float64) float64 {
		d, err := Euclidean(a, b)
		require.NoError(t, err)
		return d
	})
}

func TestAxioms_Levenshtein(t *testing.T) {
	gen := func(r *rand.Rand) string {
		var sb strings.Builder
		for n := r.IntN(8); n > 0; n-- {
			sb.WriteByte(byte('a' + r.IntN(4)))
		}
		return sb.String()
	}
	checkAxioms(t, gen, func(a, b string) float64 {
		return float64(Levenshtein(a, b))
	})
}

func TestAxioms_Hamming(t *testing.T) {
	checkAxioms(t, func(r *rand.Rand) uint64 { return r.Uint64() }, func(a, b uint64) float64 {
		return float64(Hamming(a, b))
	})
}

func BenchmarkLevenshtein(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Levenshtein("internationalization", "internationalisation")
	}
}
