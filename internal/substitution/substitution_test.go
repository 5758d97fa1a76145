package substitution

import (
	"reflect"
	"testing"

	"contextchef/internal/taxonomy"
)

func TestResolve(t *testing.T) {
	t.Run("unknown ingredient resolves to nothing", func(t *testing.T) {
		if got := Resolve("dragon fruit", nil, taxonomy.None); len(got) != 0 {
			t.Errorf("expected no alternatives, got %v", got)
		}
	})

	t.Run("normalizes name before lookup", func(t *testing.T) {
		got := Resolve("  Chicken Breast ", nil, taxonomy.None)
		want := []string{"turkey breast", "tofu", "tempeh", "chickpeas"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("allergen token removes matching alternatives", func(t *testing.T) {
		got := Resolve("milk", []string{"nut"}, taxonomy.None)
		for _, alt := range got {
			if alt == "almond milk" || alt == "coconut milk" {
				t.Errorf("allergen filter let %q through", alt)
			}
		}
		want := []string{"soy milk", "oat milk"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("allergen match is case-insensitive", func(t *testing.T) {
		got := Resolve("milk", []string{"SOY"}, taxonomy.None)
		for _, alt := range got {
			if alt == "soy milk" {
				t.Error("allergen filter should ignore case")
			}
		}
	})

	t.Run("dietary profile filters alternatives", func(t *testing.T) {
		got := Resolve("ground beef", nil, taxonomy.Vegan)
		want := []string{"lentils", "black beans", "mushrooms"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("keto rejects carb-heavy substitutes", func(t *testing.T) {
		got := Resolve("sugar", nil, taxonomy.Keto)
		want := []string{"maple syrup", "stevia"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("all alternatives filtered is a valid outcome", func(t *testing.T) {
		got := Resolve("milk", []string{"almond", "soy", "oat", "coconut"}, taxonomy.None)
		if len(got) != 0 {
			t.Errorf("expected empty result, got %v", got)
		}
	})
}

func TestConversionFactor(t *testing.T) {
	cases := []struct {
		ingredient string
		want       float64
	}{
		{"butter", 0.75},
		{"fresh spinach", 0.2},
		{"salt", 0.5},
		{"chicken breast", 1},
		{"unknown thing", 1},
	}
	for _, c := range cases {
		if got := ConversionFactor(c.ingredient); got != c.want {
			t.Errorf("ConversionFactor(%q) = %v, want %v", c.ingredient, got, c.want)
		}
	}
}

func TestLookup(t *testing.T) {
	entry, ok := Lookup("Butter")
	if !ok {
		t.Fatal("expected butter to be in the table")
	}
	if entry.Notes == "" {
		t.Error("expected advisory notes for butter")
	}
	if _, ok := Lookup("unobtainium"); ok {
		t.Error("expected lookup miss for unknown ingredient")
	}
}
