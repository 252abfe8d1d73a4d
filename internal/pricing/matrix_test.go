package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableBothPrintTypes(t *testing.T) {
	m := Matrix{
		"تحریر": {
			"70": {BW: 350, Color: 950},
		},
	}

	filtered := m.FilterWeights()
	require.Contains(t, filtered, "تحریر")
	require.Len(t, filtered["تحریر"], 1)
	assert.Equal(t, "70", filtered["تحریر"][0].Weight)
	assert.Equal(t, []string{PrintBW, PrintColor}, filtered["تحریر"][0].AvailablePrints)
}

func TestAvailableSinglePrintType(t *testing.T) {
	m := Matrix{
		"بالک": {
			"80": {BW: 400, Color: 0},
		},
	}

	filtered := m.FilterWeights()
	require.Contains(t, filtered, "بالک")
	require.Len(t, filtered["بالک"], 1)
	assert.Equal(t, []string{PrintBW}, filtered["بالک"][0].AvailablePrints)
}

func TestWeightWithAllZeroPricesExcluded(t *testing.T) {
	m := Matrix{
		"گلاسه": {
			"100": {BW: 0, Color: 0},
		},
	}

	filtered := m.FilterWeights()
	assert.NotContains(t, filtered, "گلاسه", "paper type with no offered weight must be dropped entirely")
}

func TestFilterWeightsMixedMatrix(t *testing.T) {
	m := Matrix{
		"تحریر": {
			"60": {BW: 350, Color: 950},
			"70": {BW: 0, Color: 0},
			"80": {BW: 400, Color: 0},
		},
	}

	filtered := m.FilterWeights()
	require.Contains(t, filtered, "تحریر")
	weights := filtered["تحریر"]
	require.Len(t, weights, 2)

	assert.Equal(t, "60", weights[0].Weight)
	assert.Equal(t, []string{PrintBW, PrintColor}, weights[0].AvailablePrints)
	assert.Equal(t, "80", weights[1].Weight)
	assert.Equal(t, []string{PrintBW}, weights[1].AvailablePrints)
}

func TestFilterWeightsNumericOrdering(t *testing.T) {
	m := Matrix{
		"تحریر": {
			"100": {BW: 500},
			"60":  {BW: 350},
			"80":  {BW: 400},
		},
	}

	weights := m.FilterWeights()["تحریر"]
	require.Len(t, weights, 3)
	assert.Equal(t, "60", weights[0].Weight)
	assert.Equal(t, "80", weights[1].Weight)
	assert.Equal(t, "100", weights[2].Weight)
}

func TestFilterWeightsIdempotent(t *testing.T) {
	m := Matrix{
		"تحریر": {
			"60": {BW: 350, Color: 950},
			"70": {BW: 0, Color: 0},
		},
		"بالک": {
			"80": {BW: 400},
		},
	}

	first := m.FilterWeights()
	second := m.FilterWeights()
	assert.Equal(t, first, second, "filter must not keep hidden mutable state")
}

func TestFilterWeightsNegativePriceExcluded(t *testing.T) {
	m := Matrix{
		"تحریر": {
			"60": {BW: -5, Color: 0},
		},
	}

	assert.Empty(t, m.FilterWeights())
}

func TestUnitPriceLookup(t *testing.T) {
	m := Matrix{
		"تحریر": {
			"70": {BW: 350, Color: 950},
			"80": {BW: 400, Color: 0},
		},
	}

	price, err := m.UnitPrice("تحریر", "70", PrintBW)
	require.NoError(t, err)
	assert.Equal(t, 350, price)

	_, err = m.UnitPrice("گلاسه", "70", PrintBW)
	assert.ErrorIs(t, err, ErrUnknownPaperType)

	_, err = m.UnitPrice("تحریر", "90", PrintBW)
	assert.ErrorIs(t, err, ErrUnknownWeight)

	_, err = m.UnitPrice("تحریر", "70", "uv")
	assert.ErrorIs(t, err, ErrUnknownPrintType)

	_, err = m.UnitPrice("تحریر", "80", PrintColor)
	assert.ErrorIs(t, err, ErrNotOffered)
}

func TestIsConfigMismatch(t *testing.T) {
	for _, err := range []error{ErrUnknownPaperType, ErrUnknownWeight, ErrUnknownPrintType, ErrNotOffered} {
		assert.True(t, IsConfigMismatch(err))
	}
	assert.False(t, IsConfigMismatch(assert.AnError))
}
