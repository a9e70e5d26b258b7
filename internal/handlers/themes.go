package handlers

import (
	"net/http"

	"github.com/bossnova23/shopify-tracker/internal/apperr"
	"github.com/bossnova23/shopify-tracker/internal/models"
	"github.com/bossnova23/shopify-tracker/internal/theme"
)

type ThemeHandler struct {
	svc *theme.Service
}

func NewThemeHandler(svc *theme.Service) *ThemeHandler {
	return &ThemeHandler{svc: svc}
}

type generateThemeRequest struct {
	Style string `json:"style" validate:"omitempty,oneof=modern elegant playful minimal"`
}

type themeJSON struct {
	ID     int64         `json:"id"`
	Name   string        `json:"name"`
	Style  string        `json:"style"`
	Colors models.Colors `json:"colors"`
	Fonts  models.Fonts  `json:"fonts"`
}

func toThemeJSON(t *models.Theme) themeJSON {
	return themeJSON{ID: t.ID, Name: t.Name, Style: t.Style, Colors: t.Colors(), Fonts: t.Fonts()}
}

func (h *ThemeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	t, err := h.svc.Generate(r.Context(), req.Style)
	if err != nil {
		status := http.StatusInternalServerError
		if apperr.Is(err, apperr.KindInvalidInput) {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"theme":  toThemeJSON(t),
	})
}

func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	themes, err := h.svc.Recent(r.Context(), theme.DefaultListLimit)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	out := make([]themeJSON, 0, len(themes))
	for i := range themes {
		out = append(out, toThemeJSON(&themes[i]))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"themes": out,
	})
}
