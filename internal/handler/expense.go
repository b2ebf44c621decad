package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/cashtrackr/cashtrackr/internal/store"
)

type ExpenseHandler struct {
	expenseStore *store.ExpenseStore
	logger       *slog.Logger
}

func NewExpenseHandler(es *store.ExpenseStore, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenseStore: es, logger: logger}
}

type expenseRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func (r expenseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Expense is required")),
		validation.Field(&r.Amount, validation.Required.Error("Amount is required"),
			validation.Min(0.0).Exclusive().Error("Amount must be greater than zero")),
	)
}

// Create adds an expense under the budget resolved by the ownership middleware.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	budget := BudgetFromContext(r.Context())

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	if _, err := h.expenseStore.Create(budget.ID, req.Name, req.Amount); err != nil {
		h.logger.Error("create expense", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusCreated, "Expense created")
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ExpenseFromContext(r.Context()))
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	expense := ExpenseFromContext(r.Context())

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	if _, err := h.expenseStore.Update(expense.ID, req.Name, req.Amount); err != nil {
		h.logger.Error("update expense", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Updated successfully")
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	expense := ExpenseFromContext(r.Context())

	if err := h.expenseStore.Delete(expense.ID); err != nil {
		h.logger.Error("delete expense", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Deleted successfully")
}
