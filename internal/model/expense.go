package model

import "time"

type Expense struct {
	ID        int64     `json:"id"`
	BudgetID  int64     `json:"budget_id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
