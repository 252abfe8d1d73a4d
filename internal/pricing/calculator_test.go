package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMatrix() Matrix {
	return Matrix{
		"تحریر": {
			"70": {BW: 350, Color: 950},
			"80": {BW: 400, Color: 0},
		},
	}
}

func testRates() Rates {
	return Rates{
		PaperPrices: map[string]map[string]int{
			"تحریر": {"70": 50},
		},
		BindingPrices:    map[string]int{"چسب گرم": 8000, "فنر": 12000},
		CoverPrices:      map[string]int{"250": 9000, "300": 11000},
		LaminationPrices: map[string]int{"مات": 3000, "براق": 2500},
		ExtrasPrices:     map[string]int{"طرح جلد": 150000, "شابک": 50000},
	}
}

func bwInput() QuoteInput {
	return QuoteInput{
		PaperType:   "تحریر",
		PaperWeight: "70",
		PrintType:   PrintBW,
		Quantity:    100,
	}
}

func TestQuoteUnitTimesQuantity(t *testing.T) {
	in := bwInput()
	in.Quantity = 100

	q, err := CalculateQuote(testMatrix(), Rates{}, in)
	require.NoError(t, err)

	assert.Equal(t, 350, q.UnitPrice)
	assert.Equal(t, 35000, q.TotalPrice)
	require.NotNil(t, q.Breakdown)
	assert.Equal(t, q.TotalPrice, q.Breakdown.Sum())
}

func TestQuoteOverrideKeepsMatrixUnitPrice(t *testing.T) {
	override := 300
	in := bwInput()
	in.OverrideUnitPrice = &override

	q, err := CalculateQuote(testMatrix(), Rates{}, in)
	require.NoError(t, err)

	assert.Equal(t, 350, q.UnitPrice, "reported unit price stays matrix-derived")
	assert.Equal(t, 30000, q.TotalPrice, "total scales with the override")
	assert.Equal(t, q.TotalPrice, q.Breakdown.Sum())
}

func TestQuoteNonPositiveOverrideIgnored(t *testing.T) {
	override := 0
	in := bwInput()
	in.OverrideUnitPrice = &override

	q, err := CalculateQuote(testMatrix(), Rates{}, in)
	require.NoError(t, err)
	assert.Equal(t, 35000, q.TotalPrice)
}

func TestQuotePageCountMultiplies(t *testing.T) {
	in := bwInput()
	in.PageCountTotal = 200
	in.Quantity = 10

	q, err := CalculateQuote(testMatrix(), Rates{}, in)
	require.NoError(t, err)

	assert.Equal(t, 350*200, q.UnitPrice)
	assert.Equal(t, 350*200*10, q.TotalPrice)
}

func TestQuoteMixedPagesUseBothRows(t *testing.T) {
	in := bwInput()
	in.PageCountTotal = 200
	in.PageCountBW = 180
	in.PageCountColor = 20
	in.Quantity = 10

	q, err := CalculateQuote(testMatrix(), Rates{}, in)
	require.NoError(t, err)

	wantUnit := 350*180 + 950*20
	assert.Equal(t, wantUnit, q.UnitPrice)
	assert.Equal(t, wantUnit*10, q.TotalPrice)
}

func TestQuoteMixedPagesRequireBothOffered(t *testing.T) {
	in := bwInput()
	in.PaperWeight = "80" // color priced zero here
	in.PageCountBW = 180
	in.PageCountColor = 20

	_, err := CalculateQuote(testMatrix(), Rates{}, in)
	assert.ErrorIs(t, err, ErrNotOffered)
}

func TestQuoteAddonsAndExtras(t *testing.T) {
	in := bwInput()
	in.Quantity = 100
	in.BindingType = "چسب گرم"
	in.CoverPaperWeight = "250"
	in.LaminationType = "مات"
	in.Extras = []string{"طرح جلد", "شابک"}

	q, err := CalculateQuote(testMatrix(), testRates(), in)
	require.NoError(t, err)

	// per copy: print 350 + paper 50 + binding 8000 + cover 9000+3000
	wantUnit := 350 + 50 + 8000 + 12000
	assert.Equal(t, wantUnit, q.UnitPrice)
	assert.Equal(t, wantUnit*100+200000, q.TotalPrice)

	require.NotNil(t, q.Breakdown)
	assert.Equal(t, 50*100, q.Breakdown.PaperCost)
	assert.Equal(t, 350*100, q.Breakdown.PrintCost)
	assert.Equal(t, 8000*100, q.Breakdown.BindingCost)
	assert.Equal(t, 12000*100, q.Breakdown.CoverCost)
	assert.Equal(t, 200000, q.Breakdown.ExtrasCost)
	assert.Equal(t, q.TotalPrice, q.Breakdown.Sum())
}

func TestQuoteExtrasAreFlatFees(t *testing.T) {
	in := bwInput()
	in.Quantity = 100
	in.Extras = []string{"شابک"}

	q, err := CalculateQuote(testMatrix(), testRates(), in)
	require.NoError(t, err)

	// The extra is charged once per order, not per copy.
	assert.Equal(t, 350+50, q.UnitPrice)
	assert.Equal(t, (350+50)*100+50000, q.TotalPrice)
}

func TestQuoteOverrideWithExtrasSumsExactly(t *testing.T) {
	override := 500
	in := bwInput()
	in.Quantity = 100
	in.BindingType = "فنر"
	in.Extras = []string{"شابک"}
	in.OverrideUnitPrice = &override

	q, err := CalculateQuote(testMatrix(), testRates(), in)
	require.NoError(t, err)

	assert.Equal(t, 500*100+50000, q.TotalPrice)
	assert.Equal(t, q.TotalPrice, q.Breakdown.Sum())
}

func TestQuoteUnknownCombination(t *testing.T) {
	in := bwInput()
	in.PaperType = "گلاسه"

	_, err := CalculateQuote(testMatrix(), testRates(), in)
	assert.True(t, IsConfigMismatch(err))
}

func TestQuoteZeroPriceIsNotFree(t *testing.T) {
	in := bwInput()
	in.PaperWeight = "80"
	in.PrintType = PrintColor

	_, err := CalculateQuote(testMatrix(), testRates(), in)
	assert.ErrorIs(t, err, ErrNotOffered)
}

func TestQuoteDefaultsQuantityToOne(t *testing.T) {
	in := bwInput()
	in.Quantity = 0

	q, err := CalculateQuote(testMatrix(), Rates{}, in)
	require.NoError(t, err)
	assert.Equal(t, 350, q.TotalPrice)
}

func TestQuoteOutputsNonNegative(t *testing.T) {
	q, err := CalculateQuote(testMatrix(), testRates(), bwInput())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, q.UnitPrice, 0)
	assert.GreaterOrEqual(t, q.TotalPrice, 0)
}
