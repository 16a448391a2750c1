package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"showtrackr/config"
	"showtrackr/services/prefs"
)

// pageContext carries the globals every full page needs.
type pageContext struct {
	Theme       string
	Version     string
	FeedbackURL string
	SheetURL    string
}

func newPageContext(r *http.Request, prefsSvc *prefs.Service, settings config.Settings) pageContext {
	theme := config.DefaultTheme
	if prefsSvc != nil {
		theme = prefsSvc.Get(r.Context(), SessionID(r)).Theme
	}
	return pageContext{
		Theme:       theme,
		Version:     config.AppVersion,
		FeedbackURL: settings.FeedbackURL,
		SheetURL:    settings.SheetURL,
	}
}

// Recover converts panics anywhere in request handling into the generic
// 500 page. The client never sees a stack trace.
func Recover(render *Renderer, prefsSvc *prefs.Service, settings config.Settings) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Printf("[http] panic handling %s %s: %v", r.Method, r.URL.Path, rec)
					render.Render(w, http.StatusInternalServerError, "500.html",
						newPageContext(r, prefsSvc, settings))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// NotFound renders the themed 404 page for unknown routes.
func NotFound(render *Renderer, prefsSvc *prefs.Service, settings config.Settings) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.Render(w, http.StatusNotFound, "404.html", newPageContext(r, prefsSvc, settings))
	})
}
