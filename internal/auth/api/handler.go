package api

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"ticketgenie/internal/auth"
	"ticketgenie/internal/dialogue"
	"ticketgenie/internal/logger"
	"ticketgenie/internal/utils"
)

type Handler struct {
	Auth     *auth.Service
	Sessions *dialogue.Manager
	Logger   *logger.Logger
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	created, err := h.Auth.CreateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("signup failed", err.Error()))
		return
	}
	if !created {
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("username already exists", ""))
		return
	}

	h.Logger.Info("AUTH", "user registered: "+req.Username)
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("registration successful", nil))
}

// Login verifies credentials, starts a fresh dialogue session and returns
// the token that ties the two together.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("invalid request body", err.Error()))
		return
	}

	if !h.Auth.Verify(r.Context(), req.Username, req.Password) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("invalid credentials", ""))
		return
	}

	sessionID := uuid.NewString()
	h.Sessions.Create(sessionID, req.Username)

	token, err := h.Auth.IssueToken(req.Username, sessionID)
	if err != nil {
		h.Sessions.Delete(sessionID)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("login failed", err.Error()))
		return
	}

	h.Logger.Info("AUTH", "login: "+req.Username)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("login successful", map[string]string{"token": token}))
}

// Logout drops the session and its dialogue state.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := auth.SessionID(r.Context())
	if sessionID != "" {
		h.Sessions.Delete(sessionID)
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("logged out", nil))
}
