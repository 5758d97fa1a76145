package substitution

import (
	"strings"

	"contextchef/internal/taxonomy"
)

// Entry describes the curated alternatives for one ingredient.
// ConversionFactor is the multiplier from the original quantity to the
// substitute quantity; zero means no factor was recorded. Both the factor and
// the notes are advisory only.
type Entry struct {
	Alternatives     []string
	ConversionFactor float64
	Notes            string
}

// table is the static substitution knowledge base, keyed by normalized
// ingredient name.
var table = map[string]Entry{
	// Proteins
	"chicken breast": {
		Alternatives: []string{"turkey breast", "tofu", "tempeh", "chickpeas"},
		Notes:        "For vegetarian options, use tofu or chickpeas",
	},
	"ground beef": {
		Alternatives: []string{"ground turkey", "ground chicken", "lentils", "black beans", "mushrooms"},
		Notes:        "Lentils and beans work well for vegetarian versions",
	},
	"bacon": {
		Alternatives: []string{"turkey bacon", "tempeh bacon", "mushrooms", "smoked paprika"},
		Notes:        "Add smoked paprika for smoky flavor in vegetarian dishes",
	},

	// Dairy
	"milk": {
		Alternatives:     []string{"almond milk", "soy milk", "oat milk", "coconut milk"},
		ConversionFactor: 1,
		Notes:            "Use unsweetened versions for savory dishes",
	},
	"butter": {
		Alternatives:     []string{"olive oil", "coconut oil", "vegan butter", "applesauce"},
		ConversionFactor: 0.75,
		Notes:            "Use 3/4 cup oil for 1 cup butter",
	},
	"sour cream": {
		Alternatives:     []string{"greek yogurt", "cottage cheese", "cashew cream"},
		ConversionFactor: 1,
	},
	"heavy cream": {
		Alternatives:     []string{"coconut cream", "cashew cream", "silken tofu"},
		ConversionFactor: 1,
	},

	// Vegetables
	"fresh spinach": {
		Alternatives:     []string{"frozen spinach", "kale", "swiss chard", "arugula"},
		ConversionFactor: 0.2,
		Notes:            "1 cup fresh = 1/5 cup frozen",
	},
	"fresh herbs": {
		Alternatives:     []string{"dried herbs"},
		ConversionFactor: 0.33,
		Notes:            "Use 1/3 amount of dried herbs",
	},

	// Pantry staples
	"all-purpose flour": {
		Alternatives: []string{"whole wheat flour", "almond flour", "coconut flour", "gluten-free flour"},
		Notes:        "Gluten-free options may need xanthan gum",
	},
	"white rice": {
		Alternatives: []string{"brown rice", "quinoa", "cauliflower rice", "bulgur"},
		Notes:        "Adjust cooking times accordingly",
	},
	"pasta": {
		Alternatives: []string{"whole wheat pasta", "rice noodles", "zucchini noodles", "spaghetti squash"},
		Notes:        "Vegetable noodles for low-carb options",
	},

	// Seasonings
	"salt": {
		Alternatives:     []string{"soy sauce", "tamari", "miso paste"},
		ConversionFactor: 0.5,
		Notes:            "Liquid alternatives add umami",
	},
	"sugar": {
		Alternatives:     []string{"honey", "maple syrup", "stevia", "dates"},
		ConversionFactor: 0.75,
		Notes:            "Reduce liquid in recipe when using liquid sweeteners",
	},
}

// Resolve returns the viable alternatives for an ingredient, in table order.
// An unknown ingredient resolves to an empty list; absence is a valid
// outcome, not an error.
//
// Alternatives whose name contains an allergen token are removed. The match
// is a case-insensitive substring test, which intentionally over-matches to
// err toward safety. Alternatives that violate the dietary profile are also
// removed.
func Resolve(ingredient string, allergens []string, profile taxonomy.Profile) []string {
	entry, ok := table[normalize(ingredient)]
	if !ok {
		return nil
	}

	alternatives := make([]string, 0, len(entry.Alternatives))
	for _, alt := range entry.Alternatives {
		if containsAllergen(alt, allergens) {
			continue
		}
		if taxonomy.SubstituteUnsuitable(profile, alt) {
			continue
		}
		alternatives = append(alternatives, alt)
	}
	return alternatives
}

// Lookup returns the raw table entry for an ingredient, unfiltered.
func Lookup(ingredient string) (Entry, bool) {
	entry, ok := table[normalize(ingredient)]
	return entry, ok
}

// ConversionFactor returns the quantity multiplier from an ingredient to its
// substitutes, or 1 when none was recorded.
func ConversionFactor(ingredient string) float64 {
	entry, ok := table[normalize(ingredient)]
	if !ok || entry.ConversionFactor == 0 {
		return 1
	}
	return entry.ConversionFactor
}

func containsAllergen(name string, allergens []string) bool {
	lower := strings.ToLower(name)
	for _, allergen := range allergens {
		if allergen == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(allergen)) {
			return true
		}
	}
	return false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
