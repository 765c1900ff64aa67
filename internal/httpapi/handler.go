package httpapi

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/resource-panel/internal/clients"
	"github.com/andreasstove999/resource-panel/internal/middleware"
	"github.com/andreasstove999/resource-panel/internal/panel"
	"github.com/andreasstove999/resource-panel/internal/session"
	"github.com/andreasstove999/resource-panel/internal/views"
)

const loggedOutQuery = "logged_out"

type Handler struct {
	panel        *panel.Panel
	sessions     session.Store
	sessionTTL   time.Duration
	cookieSecure bool
	checks       []clients.HealthTarget
	logger       *log.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		panel:        d.Panel,
		sessions:     d.Sessions,
		sessionTTL:   d.SessionTTL,
		cookieSecure: d.CookieSecure,
		checks:       d.HealthChecks,
		logger:       d.Logger,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "resource-panel",
	})
}

func (h *Handler) Upstreams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"service":  "resource-panel",
		"upstream": clients.CheckAll(r.Context(), h.checks),
	})
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	msg := ""
	if r.URL.Query().Has(loggedOutQuery) {
		msg = panel.MsgLoggedOut
	}
	h.render(w, r, http.StatusOK, views.LoginPage(msg))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	out := h.panel.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if out.Principal != "" {
		s, err := h.sessions.Create(r.Context(), out.Principal, h.sessionTTL)
		if err != nil {
			h.logger.Printf("create session: %v cid=%s", err, middleware.GetCorrelationID(r.Context()))
			out = panel.Outcome{Alert: panel.MsgLoginFailed}
		} else {
			middleware.SetSessionCookie(w, s, h.cookieSecure)
		}
	}

	if middleware.IsHTMX(r) {
		h.respondHTMX(w, r, out)
		return
	}
	if out.Redirect != "" {
		http.Redirect(w, r, out.Redirect, http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, views.LoginPage(out.Alert))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	out := h.panel.Logout(r.Context(), r.PostForm.Get("confirmed") == "true")
	if out.Redirect == "" {
		if middleware.IsHTMX(r) {
			h.respondHTMX(w, r, out)
			return
		}
		http.Redirect(w, r, panel.RouteDashboard, http.StatusSeeOther)
		return
	}

	if c, err := r.Cookie(middleware.SessionCookie); err == nil && c.Value != "" {
		if err := h.sessions.Delete(r.Context(), c.Value); err != nil {
			h.logger.Printf("delete session: %v cid=%s", err, middleware.GetCorrelationID(r.Context()))
		}
	}
	middleware.ClearSessionCookie(w)

	if middleware.IsHTMX(r) {
		h.respondHTMX(w, r, out)
		return
	}
	http.Redirect(w, r, out.Redirect+"?"+loggedOutQuery+"=1", http.StatusSeeOther)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, "", nil)
}

func (h *Handler) LoadResources(w http.ResponseWriter, r *http.Request) {
	list := h.panel.LoadResources(r.Context())
	if middleware.IsHTMX(r) {
		h.respondHTMX(w, r, panel.Outcome{List: &list})
		return
	}
	h.render(w, r, http.StatusOK, views.ResourceTableBody(list))
}

func (h *Handler) AddResource(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	out := h.panel.AddResource(r.Context(), r.PostForm.Get("newResource"), r.PostForm.Get("maxUnits"))
	h.respondDashboard(w, r, out)
}

// UpdateQuantity takes the resource name from the path, or from the form body
// on the dashboard's own route.
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "bad request")
		return
	}

	name := chi.URLParam(r, "name")
	if name == "" {
		name = r.PostForm.Get("name")
	} else if r.URL.RawPath != "" {
		// chi matches on the escaped path when one is present
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}
	if name == "" {
		middleware.WriteError(w, r, http.StatusBadRequest, "resource name is required")
		return
	}
	change, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get("change")))
	if err != nil {
		middleware.WriteError(w, r, http.StatusBadRequest, "change must be an integer")
		return
	}

	out := h.panel.UpdateQuantity(r.Context(), name, change)
	h.respondDashboard(w, r, out)
}

func (h *Handler) respondDashboard(w http.ResponseWriter, r *http.Request, out panel.Outcome) {
	if middleware.IsHTMX(r) {
		h.respondHTMX(w, r, out)
		return
	}
	if out.Alert == "" {
		http.Redirect(w, r, panel.RouteDashboard, http.StatusSeeOther)
		return
	}
	h.renderDashboard(w, r, out.Alert, out.List)
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, msg string, list *panel.ListView) {
	username := ""
	if s, ok := middleware.GetSession(r.Context()); ok {
		username = s.Username
	}
	if list == nil {
		fresh := h.panel.LoadResources(r.Context())
		list = &fresh
	}
	h.render(w, r, http.StatusOK, views.DashboardPage(username, msg, *list))
}
