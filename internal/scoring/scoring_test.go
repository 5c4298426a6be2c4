package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagesmith/ocrqa-cli/internal/bloomdict"
)

func dict(entries ...string) *bloomdict.Dictionary {
	return bloomdict.New("en", entries, 1e-6)
}

func TestUnknownTypeRatio(t *testing.T) {
	d := dict("the", "quick", "fox")

	// "The quick brown fox" after normalization: one unknown type of four.
	score, ok := UnknownTypeRatio([]string{"the", "quick", "brown", "fox"}, d, DefaultCosts())
	require.True(t, ok)
	assert.InDelta(t, 0.25, score, 1e-9)

	// Repeats do not change a type-based score.
	score, ok = UnknownTypeRatio([]string{"the", "the", "the", "brown", "brown"}, d, DefaultCosts())
	require.True(t, ok)
	assert.InDelta(t, 0.5, score, 1e-9)

	// Empty text carries no quality signal.
	_, ok = UnknownTypeRatio(nil, d, DefaultCosts())
	assert.False(t, ok)

	// Absent dictionary: no score.
	_, ok = UnknownTypeRatio([]string{"the"}, nil, DefaultCosts())
	assert.False(t, ok)
}

func TestUnknownRatio(t *testing.T) {
	d := dict("the", "quick", "fox")

	score, ok := UnknownRatio([]string{"the", "quick", "brown", "fox"}, d, DefaultCosts())
	require.True(t, ok)
	assert.InDelta(t, 0.25, score, 1e-9)

	// Token-based scoring penalizes recurring corruption.
	score, ok = UnknownRatio([]string{"the", "brown", "brown", "brown"}, d, DefaultCosts())
	require.True(t, ok)
	assert.InDelta(t, 0.75, score, 1e-9)

	_, ok = UnknownRatio(nil, d, DefaultCosts())
	assert.False(t, ok)
}

func TestRatiosCoincideWhenTypesAreSingletons(t *testing.T) {
	d := dict("alpha", "beta")
	seq := []string{"alpha", "gamma", "delta", "beta"}

	tr, ok := UnknownTypeRatio(seq, d, DefaultCosts())
	require.True(t, ok)
	ur, ok := UnknownRatio(seq, d, DefaultCosts())
	require.True(t, ok)
	assert.Equal(t, tr, ur)
}

func TestSingleCharCost(t *testing.T) {
	d := dict("xyzzy")

	// "a b xyzzy": two unknown single letters, down-weighted to 0.7 each.
	score, ok := SingleCharCost([]string{"a", "b", "xyzzy"}, d, DefaultCosts())
	require.True(t, ok)
	assert.InDelta(t, 1.4/3.0, score, 1e-9)

	// A multi-character unknown carries full unit cost.
	score, ok = SingleCharCost([]string{"brown", "xyzzy"}, d, DefaultCosts())
	require.True(t, ok)
	assert.InDelta(t, 0.5, score, 1e-9)

	// Symbols and digits cost less than letters.
	score, ok = SingleCharCost([]string{"€", "xyzzy"}, d, DefaultCosts())
	require.True(t, ok)
	assert.InDelta(t, 0.15, score, 1e-9)

	_, ok = SingleCharCost(nil, d, DefaultCosts())
	assert.False(t, ok)
}

func TestSingleCharCostMonotoneInMultiCharUnknowns(t *testing.T) {
	d := dict("known")
	costs := DefaultCosts()

	base := []string{"a", "known", "known"}
	prev, ok := SingleCharCost(base, d, costs)
	require.True(t, ok)

	// Replacing known tokens with unknown multi-character tokens never
	// lowers the score.
	for i := 1; i < len(base); i++ {
		seq := append([]string{}, base...)
		for j := 1; j <= i; j++ {
			seq[j] = "garbl"
		}
		score, ok := SingleCharCost(seq, d, costs)
		require.True(t, ok)
		assert.GreaterOrEqual(t, score, prev)
		prev = score
	}
}

func TestScoresStayWithinUnitInterval(t *testing.T) {
	d := dict("one", "two")
	seqs := [][]string{
		{"one"},
		{"one", "two", "three"},
		{"x", "y", "z", "z", "z"},
	}
	for _, seq := range seqs {
		for _, name := range []string{MethodUnknownTypeRatio, MethodUnknownRatio} {
			f, ok := Lookup(name)
			require.True(t, ok)
			score, ok := f(seq, d, DefaultCosts())
			require.True(t, ok)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"slc", "unk_ratio", "unk_type_ratio"}, Names())

	_, ok := Lookup("unk_type_ratio")
	assert.True(t, ok)
	_, ok = Lookup("nope")
	assert.False(t, ok)

	assert.NoError(t, Validate([]string{"slc", "unk_ratio"}))
	assert.Error(t, Validate([]string{"slc", "nope"}))
}
