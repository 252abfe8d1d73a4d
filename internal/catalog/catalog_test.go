package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabeshpress/order-panel/internal/pricing"
)

func TestBuildFormConfigFiltersMatrix(t *testing.T) {
	s := &Settings{
		BookSizes: []string{"وزیری"},
		PageCosts: pricing.Matrix{
			"تحریر": {
				"60": {BW: 350, Color: 950},
				"70": {BW: 0, Color: 0},
			},
			"گلاسه": {
				"100": {BW: 0, Color: 0},
			},
		},
		PrintTypes:   []string{pricing.PrintBW, pricing.PrintColor},
		MinQuantity:  10,
		MaxQuantity:  5000,
		QuantityStep: 10,
	}

	cfg := BuildFormConfig(s)

	require.Contains(t, cfg.PaperTypes, "تحریر")
	assert.NotContains(t, cfg.PaperTypes, "گلاسه")
	require.Len(t, cfg.PaperTypes["تحریر"], 1)
	assert.Equal(t, "60", cfg.PaperTypes["تحریر"][0].Weight)

	assert.Equal(t, 10, cfg.MinQuantity)
	assert.Equal(t, 5000, cfg.MaxQuantity)
	assert.Equal(t, 10, cfg.QuantityStep)
}

func TestDefaultSettingsAreInternallyConsistent(t *testing.T) {
	s := DefaultSettings()

	assert.NotEmpty(t, s.BookSizes)
	assert.NotEmpty(t, s.PageCosts)
	assert.Greater(t, s.MinQuantity, 0)
	assert.GreaterOrEqual(t, s.MaxQuantity, s.MinQuantity)
	assert.Greater(t, s.QuantityStep, 0)

	// Every priced addon key must be a published enumeration value.
	for _, b := range s.BindingTypes {
		assert.Contains(t, s.Rates.BindingPrices, b)
	}
	for _, w := range s.CoverPaperWeights {
		assert.Contains(t, s.Rates.CoverPrices, w)
	}
	for _, l := range s.LaminationTypes {
		assert.Contains(t, s.Rates.LaminationPrices, l)
	}
	for _, e := range s.Extras {
		assert.Contains(t, s.Rates.ExtrasPrices, e)
	}

	// The default matrix must expose at least one orderable combination.
	cfg := BuildFormConfig(s)
	assert.NotEmpty(t, cfg.PaperTypes)
}
