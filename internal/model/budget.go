package model

import "time"

type Budget struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated only when fetching a single budget with its expenses.
	Expenses []Expense `json:"expenses,omitzero"`
}
