package shopping

import (
	"time"

	"contextchef/internal/grocer"
)

// ListItem is one aggregated line of a shopping list. Purchased is mutated
// externally as the user shops.
type ListItem struct {
	Name             string  `json:"name"`
	Quantity         float64 `json:"quantity"`
	Unit             string  `json:"unit"`
	PreferredStoreID string  `json:"preferred_store_id,omitempty"`
	EstimatedPrice   float64 `json:"estimated_price"`
	Purchased        bool    `json:"purchased"`
}

// PricedItem is a list item priced at a specific store. SalePrice is only
// meaningful when OnSale is set.
type PricedItem struct {
	ListItem
	OnSale       bool    `json:"on_sale"`
	SalePrice    float64 `json:"sale_price,omitempty"`
	RegularPrice float64 `json:"regular_price"`
	Savings      float64 `json:"savings"`
}

// StorePlan is the portion of the list assigned to one store.
type StorePlan struct {
	Store    grocer.Store `json:"store"`
	Items    []PricedItem `json:"items"`
	Subtotal float64      `json:"subtotal"`
	Savings  float64      `json:"savings"`
	Distance float64      `json:"distance"`
}

// Substitution is a money-saving swap suggested when the list exceeds budget.
type Substitution struct {
	Original      string  `json:"original"`
	Substitute    string  `json:"substitute"`
	SavingsAmount float64 `json:"savings_amount"`
	Reason        string  `json:"reason"`
}

// Optimized is the store-partitioned result of list optimization.
type Optimized struct {
	Stores                 []StorePlan    `json:"stores"`
	TotalCost              float64        `json:"total_cost"`
	TotalSavings           float64        `json:"total_savings"`
	SuggestedSubstitutions []Substitution `json:"suggested_substitutions"`
}

// List is a persisted shopping list tied to a meal plan.
type List struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	MealPlanID int64      `json:"meal_plan_id"`
	Items      []ListItem `json:"items"`
	CreatedAt  time.Time  `json:"created_at"`
}
