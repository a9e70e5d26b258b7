package handlers

import (
	"net/http"

	"github.com/bossnova23/shopify-tracker/internal/apperr"
	"github.com/bossnova23/shopify-tracker/internal/tracker"
)

type StoreHandler struct {
	svc *tracker.Service
}

func NewStoreHandler(svc *tracker.Service) *StoreHandler {
	return &StoreHandler{svc: svc}
}

// Data serves a tracked store's aggregates together with its products.
func (h *StoreHandler) Data(w http.ResponseWriter, r *http.Request) {
	website := r.URL.Query().Get("website")
	if website == "" {
		writeError(w, r, http.StatusOK, apperr.New(apperr.KindInvalidInput, "website is required"))
		return
	}

	data, err := h.svc.StoreData(r.Context(), website)
	if err != nil {
		writeError(w, r, http.StatusOK, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"store":    data.Store,
		"products": data.Products,
	})
}
