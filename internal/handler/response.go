package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

type itemResponse struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

type entryResponse struct {
	ID           uuid.UUID      `json:"id"`
	User         uuid.UUID      `json:"user"`
	CustomerName string         `json:"customerName"`
	BookingDate  string         `json:"bookingDate"`
	Items        []itemResponse `json:"items"`
	Total        json.Number    `json:"total"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// number renders a decimal as a bare JSON number without float rounding.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func newEntryResponse(e model.Entry) entryResponse {
	items := make([]itemResponse, len(e.Items))
	for i, it := range e.Items {
		items[i] = itemResponse{Name: it.Name, Price: number(it.Price), Quantity: it.Quantity}
	}
	return entryResponse{
		ID:           e.ID,
		User:         e.Owner,
		CustomerName: e.CustomerName,
		BookingDate:  e.BookingDate.Format(time.DateOnly),
		Items:        items,
		Total:        number(e.Total),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func newUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, messageResponse{Message: msg})
}

// serverError logs err and answers with a generic 500.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	h.writeMessage(w, r, http.StatusInternalServerError, "Server error")
}
