package handlers

import (
	"net/http"

	"github.com/bossnova23/shopify-tracker/internal/apperr"
	"github.com/bossnova23/shopify-tracker/internal/tracker"
)

// Tracker endpoints answer 200 and carry the outcome in "status", which is
// what the storefront dashboard expects.
type ProductHandler struct {
	svc *tracker.Service
}

func NewProductHandler(svc *tracker.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

type trackProductRequest struct {
	ProductLink string `json:"product_link" validate:"required"`
}

func (h *ProductHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req trackProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusOK, err)
		return
	}

	product, err := h.svc.Track(r.Context(), req.ProductLink)
	if apperr.Is(err, apperr.KindDuplicate) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "already_tracked",
			"message": apperr.Message(err),
		})
		return
	}
	if err != nil {
		writeError(w, r, http.StatusOK, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"message": "Product tracking started",
		"product": product,
	})
}

// Data serves the stored snapshot of a single product.
func (h *ProductHandler) Data(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("product_link")
	if link == "" {
		writeError(w, r, http.StatusOK, apperr.New(apperr.KindInvalidInput, "product_link is required"))
		return
	}

	product, err := h.svc.ProductData(r.Context(), link)
	if err != nil {
		writeError(w, r, http.StatusOK, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"product": product,
	})
}
