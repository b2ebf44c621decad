package store

import (
	"database/sql"
	"fmt"

	"github.com/cashtrackr/cashtrackr/internal/model"
)

type BudgetStore struct {
	db *sql.DB
}

func NewBudgetStore(db *sql.DB) *BudgetStore {
	return &BudgetStore{db: db}
}

func scanBudget(scanner interface{ Scan(...any) error }) (*model.Budget, error) {
	var b model.Budget
	err := scanner.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const budgetCols = `id, user_id, name, amount, created_at, updated_at`

func (s *BudgetStore) Create(userID int64, name string, amount float64) (*model.Budget, error) {
	result, err := s.db.Exec(
		`INSERT INTO budgets (user_id, name, amount) VALUES (?, ?, ?)`,
		userID, name, amount,
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *BudgetStore) GetByID(id int64) (*model.Budget, error) {
	row := s.db.QueryRow(`SELECT `+budgetCols+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// ListByUser returns the user's budgets, newest first.
func (s *BudgetStore) ListByUser(userID int64) ([]model.Budget, error) {
	rows, err := s.db.Query(
		`SELECT `+budgetCols+` FROM budgets WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []model.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func (s *BudgetStore) Update(id int64, name string, amount float64) (*model.Budget, error) {
	_, err := s.db.Exec(
		`UPDATE budgets SET name = ?, amount = ?, updated_at = datetime('now') WHERE id = ?`,
		name, amount, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes the budget; expenses go with it via the cascade.
func (s *BudgetStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}
