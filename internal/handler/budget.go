package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/cashtrackr/cashtrackr/internal/auth"
	"github.com/cashtrackr/cashtrackr/internal/model"
	"github.com/cashtrackr/cashtrackr/internal/store"
)

type BudgetHandler struct {
	budgetStore  *store.BudgetStore
	expenseStore *store.ExpenseStore
	logger       *slog.Logger
}

func NewBudgetHandler(bs *store.BudgetStore, es *store.ExpenseStore, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{budgetStore: bs, expenseStore: es, logger: logger}
}

type budgetRequest struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func (r budgetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Budget is required")),
		validation.Field(&r.Amount, validation.Required.Error("Amount is required"),
			validation.Min(0.0).Exclusive().Error("Amount must be greater than zero")),
	)
}

// List returns the budgets owned by the caller, newest first.
func (h *BudgetHandler) List(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.budgetStore.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list budgets", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if budgets == nil {
		budgets = []model.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	if _, err := h.budgetStore.Create(auth.UserID(r.Context()), req.Name, req.Amount); err != nil {
		h.logger.Error("create budget", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusCreated, "Budget created successfully")
}

// Get returns the budget resolved by the ownership middleware, with its
// expenses nested.
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	budget := BudgetFromContext(r.Context())

	expenses, err := h.expenseStore.ListByBudget(budget.ID)
	if err != nil {
		h.logger.Error("list budget expenses", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if expenses == nil {
		expenses = []model.Expense{}
	}
	budget.Expenses = expenses

	writeJSON(w, http.StatusOK, budget)
}

func (h *BudgetHandler) Update(w http.ResponseWriter, r *http.Request) {
	budget := BudgetFromContext(r.Context())

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	if _, err := h.budgetStore.Update(budget.ID, req.Name, req.Amount); err != nil {
		h.logger.Error("update budget", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Budget updated successfully")
}

func (h *BudgetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	budget := BudgetFromContext(r.Context())

	if err := h.budgetStore.Delete(budget.ID); err != nil {
		h.logger.Error("delete budget", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Budget deleted successfully")
}
