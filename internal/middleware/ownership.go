package middleware

import (
	"net/http"
	"strconv"

	"github.com/cashtrackr/cashtrackr/internal/auth"
	"github.com/cashtrackr/cashtrackr/internal/handler"
	"github.com/cashtrackr/cashtrackr/internal/store"
)

// parsePathID validates a path segment as a positive integer id. On failure
// it returns a validation-style field error matching the input-shape checks.
func parsePathID(r *http.Request, param string) (int64, *handler.FieldError) {
	raw := r.PathValue(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &handler.FieldError{Field: param, Msg: "ID must be an integer"}
	}
	if id <= 0 {
		return 0, &handler.FieldError{Field: param, Msg: "ID must be greater than zero"}
	}
	return id, nil
}

// BudgetOwnership resolves the {budgetId} path segment to a budget, enforces
// that the authenticated caller owns it, and attaches it to the context.
func BudgetOwnership(budgets *store.BudgetStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ferr := parsePathID(r, "budgetId")
			if ferr != nil {
				handler.WriteFieldErrors(w, []handler.FieldError{*ferr})
				return
			}

			budget, err := budgets.GetByID(id)
			if err != nil {
				handler.WriteError(w, http.StatusInternalServerError, "Unexpected error")
				return
			}
			if budget == nil {
				handler.WriteError(w, http.StatusNotFound, "Budget not found")
				return
			}

			if budget.UserID != auth.UserID(r.Context()) {
				handler.WriteError(w, http.StatusForbidden, "Not authorized")
				return
			}

			ctx := handler.WithBudget(r.Context(), budget)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExpenseOwnership resolves {expenseId} and cross-checks that the expense
// actually belongs to the budget already resolved from the path. A mismatch
// is answered as not-found so expenses under other budgets are not revealed.
// Must run after BudgetOwnership.
func ExpenseOwnership(expenses *store.ExpenseStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ferr := parsePathID(r, "expenseId")
			if ferr != nil {
				handler.WriteFieldErrors(w, []handler.FieldError{*ferr})
				return
			}

			expense, err := expenses.GetByID(id)
			if err != nil {
				handler.WriteError(w, http.StatusInternalServerError, "Unexpected error")
				return
			}

			budget := handler.BudgetFromContext(r.Context())
			if expense == nil || budget == nil || expense.BudgetID != budget.ID {
				handler.WriteError(w, http.StatusNotFound, "Expense not found")
				return
			}

			ctx := handler.WithExpense(r.Context(), expense)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
