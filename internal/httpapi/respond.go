package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"

	"github.com/andreasstove999/resource-panel/internal/middleware"
	"github.com/andreasstove999/resource-panel/internal/panel"
	"github.com/andreasstove999/resource-panel/internal/views"
)

const (
	headerHXTrigger = "HX-Trigger"
	headerHXReswap  = "HX-Reswap"

	eventAlert     = "panel:alert"
	eventResetForm = "panel:reset-form"
)

type alertDetail struct {
	Message string `json:"message"`
}

// respondHTMX maps an outcome onto htmx response headers and, when the outcome
// carries a renderable list, the replacement table body.
func (h *Handler) respondHTMX(w http.ResponseWriter, r *http.Request, out panel.Outcome) {
	triggers := map[string]any{}
	if out.Alert != "" {
		triggers[eventAlert] = alertDetail{Message: out.Alert}
	}
	if out.ResetForm {
		triggers[eventResetForm] = true
	}
	if len(triggers) > 0 {
		b, err := json.Marshal(triggers)
		if err == nil {
			w.Header().Set(headerHXTrigger, string(b))
		}
	}

	if out.Redirect != "" {
		w.Header().Set(middleware.HeaderHXRedirect, out.Redirect)
		w.WriteHeader(http.StatusOK)
		return
	}

	if out.List == nil || out.List.State == panel.ListMalformed {
		w.Header().Set(headerHXReswap, "none")
		w.WriteHeader(http.StatusOK)
		return
	}

	h.render(w, r, http.StatusOK, views.ResourceTableBody(*out.List))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Printf("render: %v cid=%s", err, middleware.GetCorrelationID(r.Context()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
