package pricing

import (
	"errors"
	"sort"
	"strconv"
)

const (
	PrintBW    = "bw"
	PrintColor = "color"
)

var (
	ErrUnknownPaperType = errors.New("unknown paper type")
	ErrUnknownWeight    = errors.New("unknown paper weight")
	ErrUnknownPrintType = errors.New("unknown print type")
	// ErrNotOffered means the combination exists in the matrix but is priced
	// zero. The form config never exposes such combinations, so hitting this
	// from a client request indicates a stale client cache, not bad input.
	ErrNotOffered = errors.New("combination not offered")
)

// PrintPrices holds the per-page price of each print type for one paper
// weight. A zero price means "not offered", never "free"; absent JSON fields
// decode to zero and are treated the same way.
type PrintPrices struct {
	BW    int `json:"bw"`
	Color int `json:"color"`
}

// Available returns the print-type keys priced above zero, bw before color.
func (p PrintPrices) Available() []string {
	var keys []string
	if p.BW > 0 {
		keys = append(keys, PrintBW)
	}
	if p.Color > 0 {
		keys = append(keys, PrintColor)
	}
	return keys
}

func (p PrintPrices) price(printType string) (int, error) {
	switch printType {
	case PrintBW:
		return p.BW, nil
	case PrintColor:
		return p.Color, nil
	}
	return 0, ErrUnknownPrintType
}

// Matrix maps paper type -> paper weight -> per-page print prices. It is an
// immutable value passed explicitly into the calculator and the form-config
// provider; nothing reads it from ambient state.
type Matrix map[string]map[string]PrintPrices

// AvailableWeight is derived per form-config fetch and never persisted.
type AvailableWeight struct {
	Weight          string   `json:"weight"`
	AvailablePrints []string `json:"available_prints"`
}

// FilterWeights derives, per paper type, the weights with at least one
// positively priced print type. Weights with nothing to offer are dropped
// silently, as are paper types left with no weights. The function is total:
// zero and malformed entries are excluded, never an error.
func (m Matrix) FilterWeights() map[string][]AvailableWeight {
	out := make(map[string][]AvailableWeight, len(m))
	for paperType, weights := range m {
		var allowed []AvailableWeight
		for _, weight := range sortedWeights(weights) {
			prints := weights[weight].Available()
			if len(prints) == 0 {
				continue
			}
			allowed = append(allowed, AvailableWeight{
				Weight:          weight,
				AvailablePrints: prints,
			})
		}
		if len(allowed) > 0 {
			out[paperType] = allowed
		}
	}
	return out
}

// UnitPrice resolves the per-page price for a combination. Every failure is
// a typed error; zero prices surface as ErrNotOffered.
func (m Matrix) UnitPrice(paperType, weight, printType string) (int, error) {
	weights, ok := m[paperType]
	if !ok {
		return 0, ErrUnknownPaperType
	}
	prices, ok := weights[weight]
	if !ok {
		return 0, ErrUnknownWeight
	}
	price, err := prices.price(printType)
	if err != nil {
		return 0, err
	}
	if price <= 0 {
		return 0, ErrNotOffered
	}
	return price, nil
}

// IsConfigMismatch reports whether err is a matrix lookup failure, i.e. the
// client selected something the published form config cannot contain.
func IsConfigMismatch(err error) bool {
	return errors.Is(err, ErrUnknownPaperType) ||
		errors.Is(err, ErrUnknownWeight) ||
		errors.Is(err, ErrUnknownPrintType) ||
		errors.Is(err, ErrNotOffered)
}

// Weight labels are numeric strings ("60", "70"); sort them numerically so
// the filtered output is deterministic, with a lexical fallback for any
// non-numeric label.
func sortedWeights(weights map[string]PrintPrices) []string {
	keys := make([]string, 0, len(weights))
	for w := range weights {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}
