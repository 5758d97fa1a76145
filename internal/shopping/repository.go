package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save creates a new shopping list row and returns its id.
func (r *Repository) Save(ctx context.Context, list *List) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO shopping_lists (user_id, meal_plan_id, items, created_at)
		VALUES (?, ?, ?, ?)`,
		list.UserID, list.MealPlanID, string(itemsJSON), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read shopping list id: %w", err)
	}
	return id, nil
}

// GetByMealPlanID retrieves the shopping list for a meal plan. Returns nil
// without error when none exists.
func (r *Repository) GetByMealPlanID(ctx context.Context, mealPlanID int64) (*List, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, meal_plan_id, items, created_at
		FROM shopping_lists WHERE meal_plan_id = ?
		ORDER BY created_at DESC LIMIT 1`, mealPlanID)
	return scanList(row)
}

// GetLatestByUserID retrieves the most recently created list for a user.
// Returns nil without error when none exists.
func (r *Repository) GetLatestByUserID(ctx context.Context, userID string) (*List, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, meal_plan_id, items, created_at
		FROM shopping_lists WHERE user_id = ?
		ORDER BY created_at DESC LIMIT 1`, userID)
	return scanList(row)
}

// DeleteByMealPlanID deletes the shopping lists tied to a meal plan.
func (r *Repository) DeleteByMealPlanID(ctx context.Context, mealPlanID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}

func scanList(row *sql.Row) (*List, error) {
	var list List
	var itemsJSON string
	err := row.Scan(&list.ID, &list.UserID, &list.MealPlanID, &itemsJSON, &list.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan shopping list: %w", err)
	}

	if err := json.Unmarshal([]byte(itemsJSON), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	return &list, nil
}
