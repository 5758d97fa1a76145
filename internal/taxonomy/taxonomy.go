package taxonomy

import "strings"

// Profile is a dietary profile a household can follow.
type Profile string

const (
	Vegan      Profile = "vegan"
	Vegetarian Profile = "vegetarian"
	Keto       Profile = "keto"
	Paleo      Profile = "paleo"
	None       Profile = "none"
)

// ParseProfile normalizes a raw string into a known Profile.
// Unknown values map to None.
func ParseProfile(s string) Profile {
	switch Profile(strings.ToLower(strings.TrimSpace(s))) {
	case Vegan:
		return Vegan
	case Vegetarian:
		return Vegetarian
	case Keto:
		return Keto
	case Paleo:
		return Paleo
	default:
		return None
	}
}

// recipeUnsuitable lists ingredient-name keywords that disqualify a whole
// recipe for a profile. Keto is not keyword-based; it is a carb threshold
// checked by the ranker.
var recipeUnsuitable = map[Profile][]string{
	Vegan:      {"meat", "chicken", "beef", "pork", "fish", "egg", "milk", "cheese", "butter", "cream", "honey"},
	Vegetarian: {"meat", "chicken", "beef", "pork", "fish", "bacon", "ham"},
	Paleo:      {"grain", "wheat", "bread", "pasta", "rice", "bean", "legume", "dairy", "milk", "cheese"},
}

// substituteUnsuitable lists keywords that disqualify a suggested substitute
// for a profile. The lists differ from recipeUnsuitable on purpose: a keto
// household can keep a recipe that is low-carb overall, but a suggested
// substitute that is itself a carb bomb is still rejected.
var substituteUnsuitable = map[Profile][]string{
	Vegan:      {"milk", "butter", "cream", "yogurt", "cheese", "egg", "honey", "meat", "chicken", "turkey", "beef", "pork", "fish", "bacon"},
	Vegetarian: {"meat", "chicken", "turkey", "beef", "pork", "fish", "bacon"},
	Keto:       {"rice", "pasta", "flour", "sugar", "honey", "dates", "beans", "lentils"},
	Paleo:      {"rice", "pasta", "flour", "beans", "lentils", "tofu", "soy"},
}

// RecipeIngredientUnsuitable reports whether an ingredient name disqualifies
// a recipe for the given profile.
func RecipeIngredientUnsuitable(p Profile, ingredientName string) bool {
	return matchesAny(ingredientName, recipeUnsuitable[p])
}

// SubstituteUnsuitable reports whether a candidate substitute name violates
// the given profile.
func SubstituteUnsuitable(p Profile, substituteName string) bool {
	return matchesAny(substituteName, substituteUnsuitable[p])
}

func matchesAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Category is a coarse ingredient category used for price estimation when no
// price entry exists for an item.
type Category string

const (
	CategoryMeat      Category = "meat"
	CategoryChicken   Category = "chicken"
	CategoryFish      Category = "fish"
	CategoryTofu      Category = "tofu"
	CategoryMilk      Category = "milk"
	CategoryCheese    Category = "cheese"
	CategoryYogurt    Category = "yogurt"
	CategoryVegetable Category = "vegetable"
	CategoryFruit     Category = "fruit"
	CategoryGrain     Category = "grain"
	CategorySpice     Category = "spice"
	CategoryOil       Category = "oil"
)

// categoryPrices holds the default per-unit price estimate for each category.
// The match order is fixed so overlapping keywords resolve deterministically.
var categoryOrder = []Category{
	CategoryMeat, CategoryChicken, CategoryFish, CategoryTofu,
	CategoryMilk, CategoryCheese, CategoryYogurt,
	CategoryVegetable, CategoryFruit,
	CategoryGrain, CategorySpice, CategoryOil,
}

var categoryPrices = map[Category]float64{
	CategoryMeat:      5.00,
	CategoryChicken:   3.00,
	CategoryFish:      8.00,
	CategoryTofu:      2.50,
	CategoryMilk:      3.00,
	CategoryCheese:    4.00,
	CategoryYogurt:    2.00,
	CategoryVegetable: 2.00,
	CategoryFruit:     2.50,
	CategoryGrain:     1.50,
	CategorySpice:     3.00,
	CategoryOil:       4.00,
}

// DefaultUnitPrice is the fallback estimate for items that match no category.
const DefaultUnitPrice = 2.00

// EstimateUnitPrice returns a per-unit price estimate for an ingredient by
// matching its name and tags against the category table.
func EstimateUnitPrice(name string, tags []string) float64 {
	lower := strings.ToLower(name)
	for _, cat := range categoryOrder {
		if strings.Contains(lower, string(cat)) || hasTag(tags, string(cat)) {
			return categoryPrices[cat]
		}
	}
	return DefaultUnitPrice
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
