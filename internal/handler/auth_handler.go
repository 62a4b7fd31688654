package handler

import (
	"errors"
	"net/http"

	"github.com/Chetan2520/RathWale-Backend/internal/auth"
	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

type meResponse struct {
	User userResponse `json:"user"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decode(r, &req); err != nil {
		h.writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			h.writeMessage(w, r, http.StatusConflict, "Username already taken")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, authResponse{Token: token, User: newUserResponse(*user)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := h.decode(r, &req); err != nil {
		if errors.Is(err, errInvalidBody) {
			h.writeMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		// credentials outside the registration rules match no account
		h.writeMessage(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			h.writeMessage(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, authResponse{Token: token, User: newUserResponse(*user)})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		h.writeMessage(w, r, http.StatusUnauthorized, "Authorization token required")
		return
	}

	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			h.writeMessage(w, r, http.StatusUnauthorized, "User not found")
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, meResponse{User: newUserResponse(*user)})
}
