package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "Budget not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Budget not found" {
		t.Errorf("error = %q, want %q", body["error"], "Budget not found")
	}
}

func TestWriteValidationSortsFields(t *testing.T) {
	verrs := validation.Errors{
		"password": errors.New("Password must be at least 8 characters"),
		"email":    errors.New("Invalid email"),
		"name":     errors.New("Name is required"),
	}

	rec := httptest.NewRecorder()
	writeValidation(rec, verrs)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body struct {
		Errors []FieldError `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := []FieldError{
		{Field: "email", Msg: "Invalid email"},
		{Field: "name", Msg: "Name is required"},
		{Field: "password", Msg: "Password must be at least 8 characters"},
	}
	if len(body.Errors) != len(want) {
		t.Fatalf("errors = %d, want %d", len(body.Errors), len(want))
	}
	for i, fe := range body.Errors {
		if fe != want[i] {
			t.Errorf("errors[%d] = %+v, want %+v", i, fe, want[i])
		}
	}
}

func TestWriteValidationPlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeValidation(rec, errors.New("something else"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "something else" {
		t.Errorf("error = %q", body["error"])
	}
}
