package pricing

// Rates are the per-copy addon price tables and flat extras fees that sit
// next to the page-cost matrix in the catalog settings. Missing keys simply
// contribute zero; rates never fail a quote.
type Rates struct {
	PaperPrices      map[string]map[string]int `json:"paper_prices"`
	BindingPrices    map[string]int            `json:"binding_prices"`
	CoverPrices      map[string]int            `json:"cover_prices"`
	LaminationPrices map[string]int            `json:"lamination_prices"`
	ExtrasPrices     map[string]int            `json:"extras_prices"` // flat per order
}

// QuoteInput is the possibly partial order configuration a quote is computed
// from. PaperType, PaperWeight and PrintType are mandatory for the matrix
// lookup; everything else contributes zero when absent.
type QuoteInput struct {
	PaperType   string `json:"paper_type"`
	PaperWeight string `json:"paper_weight"`
	PrintType   string `json:"print_type"`
	BindingType string `json:"binding_type"`

	Quantity       int `json:"quantity"`
	PageCountTotal int `json:"page_count_total"`
	PageCountColor int `json:"page_count_color"`
	PageCountBW    int `json:"page_count_bw"`

	CoverPaperWeight string   `json:"cover_paper_weight"`
	LaminationType   string   `json:"lamination_type"`
	Extras           []string `json:"extras"`

	OverrideUnitPrice *int `json:"override_unit_price"`
}

type Breakdown struct {
	PaperCost   int `json:"paper_cost"`
	PrintCost   int `json:"print_cost"`
	BindingCost int `json:"binding_cost"`
	CoverCost   int `json:"cover_cost"`
	ExtrasCost  int `json:"extras_cost"`
}

func (b Breakdown) Sum() int {
	return b.PaperCost + b.PrintCost + b.BindingCost + b.CoverCost + b.ExtrasCost
}

// Quote is derived, never persisted directly; orders store a JSON snapshot.
// UnitPrice is always the matrix-derived per-copy price, even when an
// operator override changed the total.
type Quote struct {
	UnitPrice  int        `json:"unit_price"`
	TotalPrice int        `json:"total_price"`
	Breakdown  *Breakdown `json:"breakdown,omitempty"`
}

// CalculateQuote prices one configuration against the matrix and rates.
// All arithmetic is integer, in whole currency units, so the breakdown sums
// to the total exactly.
//
// The matrix price is per page. The per-copy print cost is price x total
// pages when a page count is given, the bare price otherwise; when both
// color and bw page counts are set the copy is priced as a mixed book from
// both print-type rows. An override replaces the whole per-copy price for
// the total while the matrix-derived unit price is still reported, and the
// overridden amount is attributed entirely to print_cost so the breakdown
// stays exact.
func CalculateQuote(m Matrix, r Rates, in QuoteInput) (*Quote, error) {
	printUnit, err := printCostPerCopy(m, in)
	if err != nil {
		return nil, err
	}

	paperUnit := nestedRate(r.PaperPrices, in.PaperType, in.PaperWeight)
	bindingUnit := rate(r.BindingPrices, in.BindingType)
	coverUnit := rate(r.CoverPrices, in.CoverPaperWeight) + rate(r.LaminationPrices, in.LaminationType)

	extrasCost := 0
	for _, extra := range in.Extras {
		extrasCost += rate(r.ExtrasPrices, extra)
	}

	quantity := in.Quantity
	if quantity < 1 {
		quantity = 1
	}

	unitPrice := printUnit + paperUnit + bindingUnit + coverUnit

	breakdown := Breakdown{
		PaperCost:   paperUnit * quantity,
		PrintCost:   printUnit * quantity,
		BindingCost: bindingUnit * quantity,
		CoverCost:   coverUnit * quantity,
		ExtrasCost:  extrasCost,
	}

	effectiveUnit := unitPrice
	if in.OverrideUnitPrice != nil && *in.OverrideUnitPrice > 0 {
		effectiveUnit = *in.OverrideUnitPrice
		breakdown = Breakdown{
			PrintCost:  effectiveUnit * quantity,
			ExtrasCost: extrasCost,
		}
	}

	return &Quote{
		UnitPrice:  unitPrice,
		TotalPrice: effectiveUnit*quantity + extrasCost,
		Breakdown:  &breakdown,
	}, nil
}

func printCostPerCopy(m Matrix, in QuoteInput) (int, error) {
	perPage, err := m.UnitPrice(in.PaperType, in.PaperWeight, in.PrintType)
	if err != nil {
		return 0, err
	}

	switch {
	case in.PageCountColor > 0 && in.PageCountBW > 0:
		// Mixed book: both print types must be offered for this weight.
		bwPrice, err := m.UnitPrice(in.PaperType, in.PaperWeight, PrintBW)
		if err != nil {
			return 0, err
		}
		colorPrice, err := m.UnitPrice(in.PaperType, in.PaperWeight, PrintColor)
		if err != nil {
			return 0, err
		}
		return bwPrice*in.PageCountBW + colorPrice*in.PageCountColor, nil
	case in.PageCountTotal > 0:
		return perPage * in.PageCountTotal, nil
	default:
		return perPage, nil
	}
}

func rate(table map[string]int, key string) int {
	if key == "" {
		return 0
	}
	if v := table[key]; v > 0 {
		return v
	}
	return 0
}

func nestedRate(table map[string]map[string]int, outer, inner string) int {
	if outer == "" || inner == "" {
		return 0
	}
	return rate(table[outer], inner)
}
