package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/emberhav/pricewatch/internal/httpserver/deps"
	"github.com/emberhav/pricewatch/internal/logger"
	"github.com/emberhav/pricewatch/internal/tracker"
)

type createItemRequest struct {
	OwnerID    string `json:"owner_id"`
	URL        string `json:"url"`
	Note       string `json:"note"`
	AutoRemove bool   `json:"auto_remove"`
}

type noteRequest struct {
	Note string `json:"note"`
}

type notificationsRequest struct {
	Enabled bool `json:"enabled"`
}

// CreateItem handles POST /api/items.
func CreateItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.OwnerID == "" || req.URL == "" {
			writeError(w, http.StatusBadRequest, "owner_id and url are required")
			return
		}

		item, err := d.Tracker.Create(r.Context(), tracker.CreateInput{
			OwnerID:    req.OwnerID,
			URL:        req.URL,
			Note:       req.Note,
			AutoRemove: req.AutoRemove,
		})
		if err != nil {
			d.Logger.Warn("item creation rejected",
				logger.String("owner_id", req.OwnerID),
				logger.Error(err))
			writeTrackerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": item.ID})
	}
}

// ListItems handles GET /api/items?owner_id=...
func ListItems(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.URL.Query().Get("owner_id")
		if ownerID == "" {
			writeError(w, http.StatusBadRequest, "owner_id is required")
			return
		}

		views, err := d.Tracker.List(r.Context(), ownerID)
		if err != nil {
			writeTrackerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

// GetItem handles GET /api/items/{id}.
func GetItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := d.Tracker.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeTrackerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// DeleteItem handles DELETE /api/items/{id}.
func DeleteItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Tracker.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeTrackerError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateNote handles PATCH /api/items/{id}/note.
func UpdateNote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req noteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := d.Tracker.SetNote(r.Context(), chi.URLParam(r, "id"), req.Note); err != nil {
			writeTrackerError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpdateNotifications handles PATCH /api/items/{id}/notifications.
func UpdateNotifications(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notificationsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := d.Tracker.SetNotifications(r.Context(), chi.URLParam(r, "id"), req.Enabled); err != nil {
			writeTrackerError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PurchaseItem handles POST /api/items/{id}/purchase.
func PurchaseItem(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Tracker.MarkPurchased(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeTrackerError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// History handles GET /api/history?owner_id=...
func History(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.URL.Query().Get("owner_id")
		if ownerID == "" {
			writeError(w, http.StatusBadRequest, "owner_id is required")
			return
		}

		view, err := d.Tracker.History(r.Context(), ownerID)
		if err != nil {
			writeTrackerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
