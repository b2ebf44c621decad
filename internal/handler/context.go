package handler

import (
	"context"

	"github.com/cashtrackr/cashtrackr/internal/model"
)

type budgetKey struct{}
type expenseKey struct{}

// WithBudget stores the resolved budget in the context so downstream
// handlers don't repeat the lookup.
func WithBudget(ctx context.Context, b *model.Budget) context.Context {
	return context.WithValue(ctx, budgetKey{}, b)
}

// BudgetFromContext retrieves the budget resolved by the ownership middleware.
func BudgetFromContext(ctx context.Context) *model.Budget {
	b, _ := ctx.Value(budgetKey{}).(*model.Budget)
	return b
}

// WithExpense stores the resolved expense in the context.
func WithExpense(ctx context.Context, e *model.Expense) context.Context {
	return context.WithValue(ctx, expenseKey{}, e)
}

// ExpenseFromContext retrieves the expense resolved by the ownership middleware.
func ExpenseFromContext(ctx context.Context) *model.Expense {
	e, _ := ctx.Value(expenseKey{}).(*model.Expense)
	return e
}
