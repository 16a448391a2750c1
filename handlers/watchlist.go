package handlers

import (
	"bytes"
	"log"
	"net/http"

	"showtrackr/config"
	"showtrackr/models"
	"showtrackr/services/prefs"
	"showtrackr/services/watchlist"
)

// WatchlistHandler serves the list view: the full page and the HTMX
// fragment refreshes.
type WatchlistHandler struct {
	watchlist *watchlist.Service
	prefs     *prefs.Service
	render    *Renderer
	settings  config.Settings
}

// NewWatchlistHandler creates the list-view handler.
func NewWatchlistHandler(svc *watchlist.Service, prefsSvc *prefs.Service, render *Renderer, settings config.Settings) *WatchlistHandler {
	return &WatchlistHandler{watchlist: svc, prefs: prefsSvc, render: render, settings: settings}
}

type listContext struct {
	pageContext
	Items         []models.WatchlistItem
	Pagination    watchlist.Pagination
	Query         watchlist.Query
	DistinctYears []int
	PageSize      int
}

func (h *WatchlistHandler) listContext(r *http.Request) (*listContext, error) {
	preferences := h.prefs.Get(r.Context(), SessionID(r))
	query := watchlist.ParseQuery(r.URL.Query(), preferences.PageSize)

	result, err := h.watchlist.List(r.Context(), query)
	if err != nil {
		return nil, err
	}

	return &listContext{
		pageContext:   newPageContext(r, h.prefs, h.settings),
		Items:         result.Items,
		Pagination:    result.Pagination,
		Query:         result.Query,
		DistinctYears: result.DistinctYears,
		PageSize:      preferences.PageSize,
	}, nil
}

// Index renders the main page. The watchlist body itself is fetched by the
// client right after load.
func (h *WatchlistHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.listContext(r)
	if err != nil {
		log.Printf("[watchlist] failed to build list view: %v", err)
		h.render.Render(w, http.StatusInternalServerError, "500.html", newPageContext(r, h.prefs, h.settings))
		return
	}
	h.render.Render(w, http.StatusOK, "index.html", ctx)
}

// Load answers both HTMX refreshes and direct navigation. HTMX requests
// get the items fragment plus an out-of-band controls update; everything
// else gets the full page.
func (h *WatchlistHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx, err := h.listContext(r)
	if err != nil {
		log.Printf("[watchlist] failed to build list view: %v", err)
		h.render.Render(w, http.StatusInternalServerError, "500.html", newPageContext(r, h.prefs, h.settings))
		return
	}

	if r.Header.Get("HX-Request") == "" {
		h.render.Render(w, http.StatusOK, "index.html", ctx)
		return
	}

	var buf bytes.Buffer
	if err := h.render.RenderTo(&buf, "_watchlist_items.html", ctx); err != nil {
		log.Printf("[watchlist] failed to render items fragment: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := h.render.RenderTo(&buf, "_controls_bar.html", ctx); err != nil {
		log.Printf("[watchlist] failed to render controls fragment: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// About renders the about page.
func (h *WatchlistHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "about.html", newPageContext(r, h.prefs, h.settings))
}
