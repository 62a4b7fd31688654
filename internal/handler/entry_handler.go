package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Chetan2520/RathWale-Backend/internal/auth"
	"github.com/Chetan2520/RathWale-Backend/internal/model"
)

const entryNotFound = "Entry not found"

// entryScope returns the caller and the entry id from the URL. An id that is
// not a UUID cannot name any entry and is answered like a missing one.
func (h *Handler) entryScope(w http.ResponseWriter, r *http.Request) (id, owner uuid.UUID, ok bool) {
	owner, ok = auth.OwnerFromContext(r.Context())
	if !ok {
		h.writeMessage(w, r, http.StatusUnauthorized, "Authorization token required")
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeMessage(w, r, http.StatusNotFound, entryNotFound)
		return uuid.Nil, uuid.Nil, false
	}
	return id, owner, true
}

func (h *Handler) entryError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, model.ErrNotFound) {
		h.writeMessage(w, r, http.StatusNotFound, entryNotFound)
		return
	}
	h.serverError(w, r, err)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		h.writeMessage(w, r, http.StatusUnauthorized, "Authorization token required")
		return
	}

	entries, err := h.entries.List(r.Context(), owner)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = newEntryResponse(e)
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		h.writeMessage(w, r, http.StatusUnauthorized, "Authorization token required")
		return
	}

	var req entryRequest
	if err := h.decode(r, &req); err != nil {
		h.writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.entries.Create(r.Context(), owner, in)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, newEntryResponse(*entry))
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, owner, ok := h.entryScope(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.Get(r.Context(), id, owner)
	if err != nil {
		h.entryError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newEntryResponse(*entry))
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, owner, ok := h.entryScope(w, r)
	if !ok {
		return
	}

	var req entryRequest
	if err := h.decode(r, &req); err != nil {
		h.writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		h.writeMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.entries.Update(r.Context(), id, owner, in)
	if err != nil {
		h.entryError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newEntryResponse(*entry))
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, owner, ok := h.entryScope(w, r)
	if !ok {
		return
	}

	if err := h.entries.Delete(r.Context(), id, owner); err != nil {
		h.entryError(w, r, err)
		return
	}
	h.writeMessage(w, r, http.StatusOK, "Entry deleted")
}

// EntryPDF renders the invoice fully before writing headers so a render
// failure can still become a JSON 500.
func (h *Handler) EntryPDF(w http.ResponseWriter, r *http.Request) {
	id, owner, ok := h.entryScope(w, r)
	if !ok {
		return
	}

	entry, err := h.entries.Get(r.Context(), id, owner)
	if err != nil {
		h.entryError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, h.invoices.Build(*entry)); err != nil {
		h.serverError(w, r, fmt.Errorf("invoice for entry %s: %w", entry.ID, err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bill_%s.pdf", entry.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to send invoice", "entry_id", entry.ID, "error", err)
	}
}
