package optimization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/frontier/internal/domain"
)

func TestBuildBounds_Defaults(t *testing.T) {
	b, err := BuildBounds([]string{"AAA", "BBB", "CCC"}, 0, 1, nil)

	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, b.Min)
	assert.Equal(t, []float64{1, 1, 1}, b.Max)
	assert.Equal(t, 0.0, b.PinnedMass())
}

func TestBuildBounds_Overrides(t *testing.T) {
	b, err := BuildBounds([]string{"AAA", "BBB"}, 0, 1, []domain.AssetConstraint{
		{Asset: "AAA", Min: 0.3, Max: 0.3},
	})

	require.NoError(t, err)
	assert.Equal(t, 0.3, b.Min[0])
	assert.Equal(t, 0.3, b.Max[0])
	assert.Equal(t, 0.3, b.PinnedMass())
}

func TestBuildBounds_InvalidGlobal(t *testing.T) {
	_, err := BuildBounds([]string{"AAA", "BBB"}, 0.8, 0.2, nil)
	assert.Equal(t, domain.KindInfeasibleConstraints, domain.KindOf(err))

	_, err = BuildBounds([]string{"AAA", "BBB"}, -0.1, 1, nil)
	assert.Equal(t, domain.KindInfeasibleConstraints, domain.KindOf(err))
}

func TestBuildBounds_UnknownAsset(t *testing.T) {
	_, err := BuildBounds([]string{"AAA", "BBB"}, 0, 1, []domain.AssetConstraint{
		{Asset: "ZZZ", Min: 0, Max: 0.5},
	})

	require.Error(t, err)
	assert.Equal(t, domain.KindInfeasibleConstraints, domain.KindOf(err))
}

func TestBuildBounds_InfeasibleSums(t *testing.T) {
	// Minimums exceed the full budget
	_, err := BuildBounds([]string{"AAA", "BBB"}, 0.6, 1, nil)
	assert.Equal(t, domain.KindInfeasibleConstraints, domain.KindOf(err))

	// Maximums cannot reach the full budget
	_, err = BuildBounds([]string{"AAA", "BBB"}, 0, 0.4, nil)
	assert.Equal(t, domain.KindInfeasibleConstraints, domain.KindOf(err))
}

func TestPostProcess_PinsExactly(t *testing.T) {
	b, err := BuildBounds([]string{"AAA", "BBB", "CCC"}, 0, 1, []domain.AssetConstraint{
		{Asset: "AAA", Min: 0.3, Max: 0.3},
	})
	require.NoError(t, err)

	weights, err := postProcess([]float64{0.31, 0.40, 0.25}, b)

	require.NoError(t, err)
	// Pinned weight is bit-exact, free weights absorb the drift
	assert.Equal(t, 0.3, weights[0])
	sum := weights[0] + weights[1] + weights[2]
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestPostProcess_ClipsAndRedistributesUpperBound(t *testing.T) {
	b, err := BuildBounds([]string{"AAA", "BBB"}, 0, 1, []domain.AssetConstraint{
		{Asset: "BBB", Min: 0, Max: 0.1},
	})
	require.NoError(t, err)

	// A uniform rescale of 0.05/0.05 would push BBB far past its 0.1 cap;
	// the excess must land on AAA instead.
	weights, err := postProcess([]float64{0.05, 0.05}, b)

	require.NoError(t, err)
	assert.InDelta(t, 0.9, weights[0], 1e-9)
	assert.InDelta(t, 0.1, weights[1], 1e-9)
}

func TestPostProcess_RedistributionHonorsAllBounds(t *testing.T) {
	b, err := BuildBounds([]string{"AAA", "BBB", "CCC"}, 0.1, 0.6, nil)
	require.NoError(t, err)

	// Scaling 0.8 of mass up to 1.0 uniformly would lift CCC to 0.75; the
	// clipped surplus flows to the remaining free weights.
	weights, err := postProcess([]float64{0.1, 0.1, 0.6}, b)

	require.NoError(t, err)
	sum := 0.0
	for i, w := range weights {
		sum += w
		assert.GreaterOrEqual(t, w, b.Min[i]-1e-9)
		assert.LessOrEqual(t, w, b.Max[i]+1e-9)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.6, weights[2], 1e-9)
}

func TestPostProcess_ScaleDownKeepsLowerBounds(t *testing.T) {
	b, err := BuildBounds([]string{"AAA", "BBB", "CCC"}, 0.1, 1, nil)
	require.NoError(t, err)

	// Scaling 1.2 of mass down to 1.0 uniformly would drag BBB and CCC
	// under the 0.1 floor; they freeze there and AAA absorbs the cut.
	weights, err := postProcess([]float64{1.0, 0.1, 0.1}, b)

	require.NoError(t, err)
	sum := 0.0
	for i, w := range weights {
		sum += w
		assert.GreaterOrEqual(t, w, b.Min[i]-1e-9)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.InDelta(t, 0.1, weights[1], 1e-9)
	assert.InDelta(t, 0.1, weights[2], 1e-9)
}
