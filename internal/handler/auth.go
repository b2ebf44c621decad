package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/cashtrackr/cashtrackr/internal/auth"
	"github.com/cashtrackr/cashtrackr/internal/email"
	"github.com/cashtrackr/cashtrackr/internal/store"
)

type AuthHandler struct {
	userStore   *store.UserStore
	tokens      *auth.TokenManager
	emailClient *email.Client
	logger      *slog.Logger
}

func NewAuthHandler(us *store.UserStore, tokens *auth.TokenManager, ec *email.Client, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:   us,
		tokens:      tokens,
		emailClient: ec,
		logger:      logger,
	}
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r createAccountRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
		validation.Field(&r.Email, validation.Required.Error("Invalid email"), is.Email.Error("Invalid email")),
		validation.Field(&r.Password, validation.Required.Error("Password must be at least 8 characters"),
			validation.Length(8, 0).Error("Password must be at least 8 characters")),
	)
}

// CreateAccount registers a new user and dispatches the confirmation code.
// Email delivery is best-effort: a failed send is logged, never rolled back.
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if existing != nil {
		WriteError(w, http.StatusConflict, "The email is already in use")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	code, err := auth.GenerateCode()
	if err != nil {
		h.logger.Error("generate code", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	user, err := h.userStore.Create(req.Name, req.Email, hash, code)
	if err != nil {
		h.logger.Error("create user", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	if h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendConfirmationEmail(r.Context(), user.Name, user.Email, code); err != nil {
			h.logger.Error("send confirmation email", "email", user.Email, "error", err)
		}
	} else {
		h.logger.Info("confirmation code generated", "email", user.Email, "code", code)
	}

	writeJSON(w, http.StatusCreated, "Account created successfully")
}

type tokenRequest struct {
	Token string `json:"token"`
}

func (r tokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required.Error("Token is required"),
			validation.Length(6, 6).Error("Token must be 6 characters")),
	)
}

// ConfirmAccount flips confirmed and clears the one-time code, exactly once.
func (h *AuthHandler) ConfirmAccount(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	user, err := h.userStore.GetByToken(req.Token)
	if err != nil {
		h.logger.Error("confirm lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if user == nil {
		WriteError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := h.userStore.Confirm(user.ID); err != nil {
		h.logger.Error("confirm user", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Account confirmed successfully")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("Invalid email"), is.Email.Error("Invalid email")),
		validation.Field(&r.Password, validation.Required.Error("Password is required")),
	)
}

// Login checks existence, then confirmation, then password — in that order,
// each short-circuiting — and returns a signed bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	user, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if user == nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if !user.Confirmed {
		WriteError(w, http.StatusForbidden, "Account is not confirmed")
		return
	}
	if !auth.CheckPassword(req.Password, user.Password) {
		WriteError(w, http.StatusUnauthorized, "Incorrect password")
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("generate token", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, token)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r forgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("Invalid email"), is.Email.Error("Invalid email")),
	)
}

// ForgotPassword issues a fresh reset code, overwriting any previous one.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	user, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("forgot password lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if user == nil {
		WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if !user.Confirmed {
		WriteError(w, http.StatusForbidden, "Account is not confirmed")
		return
	}

	code, err := auth.GenerateCode()
	if err != nil {
		h.logger.Error("generate code", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if err := h.userStore.SetToken(user.ID, code); err != nil {
		h.logger.Error("set reset token", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	if h.emailClient != nil && h.emailClient.Configured() {
		if err := h.emailClient.SendPasswordResetToken(r.Context(), user.Name, user.Email, code); err != nil {
			h.logger.Error("send reset email", "email", user.Email, "error", err)
		}
	} else {
		h.logger.Info("reset code generated", "email", user.Email, "code", code)
	}

	writeJSON(w, http.StatusOK, "Check your email for instructions")
}

// ValidateToken checks a reset code without consuming it.
func (h *AuthHandler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	user, err := h.userStore.GetByToken(req.Token)
	if err != nil {
		h.logger.Error("validate token lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if user == nil {
		WriteError(w, http.StatusNotFound, "Invalid token")
		return
	}

	writeJSON(w, http.StatusOK, "Valid token")
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required.Error("Password must be at least 8 characters"),
			validation.Length(8, 0).Error("Password must be at least 8 characters")),
	)
}

// ResetPassword stores a new password for the user holding the path token
// and clears the token so it cannot be replayed.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("token")

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	user, err := h.userStore.GetByToken(code)
	if err != nil {
		h.logger.Error("reset password lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if user == nil {
		WriteError(w, http.StatusNotFound, "Invalid token")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if err := h.userStore.ResetPassword(user.ID, hash); err != nil {
		h.logger.Error("reset password", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Password updated successfully")
}

// GetUser returns the authenticated caller's identity.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.FromContext(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "No authenticated")
		return
	}
	writeJSON(w, http.StatusOK, identity)
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r updateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required.Error("Name is required")),
		validation.Field(&r.Email, validation.Required.Error("Invalid email"), is.Email.Error("Invalid email")),
	)
}

// UpdateProfile changes the caller's name and email. The target email must
// not belong to another user.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	existing, err := h.userStore.GetByEmail(req.Email)
	if err != nil {
		h.logger.Error("update profile lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if existing != nil && existing.ID != identity.UserID {
		WriteError(w, http.StatusConflict, "The email is already in use")
		return
	}

	if _, err := h.userStore.UpdateProfile(identity.UserID, req.Name, req.Email); err != nil {
		h.logger.Error("update profile", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Profile updated successfully")
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r updatePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required.Error("Current password is required")),
		validation.Field(&r.NewPassword, validation.Required.Error("Password must be at least 8 characters"),
			validation.Length(8, 0).Error("Password must be at least 8 characters")),
	)
}

// UpdatePassword verifies the current password before storing the new one.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	user, err := h.userStore.GetByID(identity.UserID)
	if err != nil || user == nil {
		h.logger.Error("update password lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	if !auth.CheckPassword(req.CurrentPassword, user.Password) {
		WriteError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}
	if err := h.userStore.UpdatePassword(user.ID, hash); err != nil {
		h.logger.Error("update password", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	writeJSON(w, http.StatusOK, "Password updated successfully")
}

type checkPasswordRequest struct {
	Password string `json:"password"`
}

func (r checkPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required.Error("Password is required")),
	)
}

// CheckPassword reports whether the submitted password matches the caller's.
func (h *AuthHandler) CheckPassword(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())

	var req checkPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		writeValidation(w, err)
		return
	}

	user, err := h.userStore.GetByID(identity.UserID)
	if err != nil || user == nil {
		h.logger.Error("check password lookup", "error", err)
		WriteError(w, http.StatusInternalServerError, "Unexpected error")
		return
	}

	if !auth.CheckPassword(req.Password, user.Password) {
		WriteError(w, http.StatusUnauthorized, "Incorrect password")
		return
	}

	writeJSON(w, http.StatusOK, true)
}
