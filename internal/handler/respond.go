package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
)

// FieldError is one entry of a validation-failure list.
type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a single-error body: {"error": "<message>"}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// WriteFieldErrors writes a validation-failure list: {"errors": [{field, msg}, ...]}.
func WriteFieldErrors(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string][]FieldError{"errors": errs})
}

// writeValidation renders an ozzo validation result as a field-error list.
// Map iteration order is randomized, so entries are sorted by field name.
func writeValidation(w http.ResponseWriter, err error) {
	verrs, ok := err.(validation.Errors)
	if !ok {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	errs := make([]FieldError, 0, len(verrs))
	for _, field := range fields {
		errs = append(errs, FieldError{Field: field, Msg: verrs[field].Error()})
	}
	WriteFieldErrors(w, errs)
}
