package pantry

import (
	"math"
	"testing"
)

func TestConvertUnit(t *testing.T) {
	cases := []struct {
		name     string
		quantity float64
		from, to string
		want     float64
		ok       bool
	}{
		{"same unit passes through", 3, "cup", "cup", 3, true},
		{"case and spacing ignored", 2, " Cup ", "CUP", 2, true},
		{"cup to tbsp", 1, "cup", "tbsp", 16, true},
		{"cup to ml", 2, "cup", "ml", 474, true},
		{"lb to g", 1, "lb", "g", 453.6, true},
		{"kg to oz", 1, "kg", "oz", 35.27, true},
		{"g to kg", 500, "g", "kg", 0.5, true},
		{"volume to weight has no bridge", 1, "cup", "g", 0, false},
		{"unknown source unit", 1, "bunch", "g", 0, false},
		{"unknown target unit", 1, "cup", "bunch", 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := ConvertUnit(c.quantity, c.from, c.to)
			if ok != c.ok {
				t.Fatalf("ConvertUnit(%v, %q, %q) ok = %v, want %v", c.quantity, c.from, c.to, ok, c.ok)
			}
			if math.Abs(got-c.want) > 1e-9 {
				t.Errorf("ConvertUnit(%v, %q, %q) = %v, want %v", c.quantity, c.from, c.to, got, c.want)
			}
		})
	}
}
