package pantry

import "strings"

// conversions maps a source unit to the multiplier per target unit. Volume
// and weight families only; there is deliberately no bridge between them
// because it would need a per-ingredient density.
var conversions = map[string]map[string]float64{
	"cup":  {"tbsp": 16, "tsp": 48, "ml": 237, "l": 0.237},
	"tbsp": {"tsp": 3, "ml": 15, "cup": 0.0625},
	"tsp":  {"ml": 5, "tbsp": 0.333, "cup": 0.0208},
	"lb":   {"oz": 16, "g": 453.6, "kg": 0.4536},
	"oz":   {"g": 28.35, "lb": 0.0625, "kg": 0.0283},
	"kg":   {"g": 1000, "lb": 2.205, "oz": 35.27},
	"g":    {"kg": 0.001, "oz": 0.0353, "lb": 0.0022},
}

// ConvertUnit converts a quantity between units. The second return value is
// false when no conversion exists; callers must treat that as an
// incomparable pair, never as equivalence.
func ConvertUnit(quantity float64, from, to string) (float64, bool) {
	from = normalizeUnit(from)
	to = normalizeUnit(to)
	if from == to {
		return quantity, true
	}
	factors, ok := conversions[from]
	if !ok {
		return 0, false
	}
	factor, ok := factors[to]
	if !ok {
		return 0, false
	}
	return quantity * factor, true
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}
