package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"showtrackr/config"
	"showtrackr/services/backup"
	"showtrackr/services/prefs"
)

// maxImportSize bounds uploaded backup files.
const maxImportSize = 32 << 20 // 32 MB

// SettingsHandler serves the settings page, theme and page-size selection,
// and the backup export/import endpoints.
type SettingsHandler struct {
	prefs    *prefs.Service
	backup   *backup.Service
	render   *Renderer
	settings config.Settings
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(prefsSvc *prefs.Service, backupSvc *backup.Service, render *Renderer, settings config.Settings) *SettingsHandler {
	return &SettingsHandler{prefs: prefsSvc, backup: backupSvc, render: render, settings: settings}
}

type flashMessage struct {
	Text  string
	Level string // success | warning | error
}

type settingsContext struct {
	pageContext
	ValidThemes          []string
	ValidPaginationSizes []int
	CurrentPageSize      int
	Messages             []flashMessage
}

func (h *SettingsHandler) settingsContext(r *http.Request, messages ...flashMessage) settingsContext {
	preferences := h.prefs.Get(r.Context(), SessionID(r))
	return settingsContext{
		pageContext:          newPageContext(r, h.prefs, h.settings),
		ValidThemes:          config.ValidThemes,
		ValidPaginationSizes: config.ValidPaginationSizes,
		CurrentPageSize:      preferences.PageSize,
		Messages:             messages,
	}
}

// Show renders the settings page.
func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "settings.html", h.settingsContext(r))
}

// SetTheme stores the selected theme and asks the client for a full
// refresh so the new theme applies everywhere.
func (h *SettingsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	theme := r.PostFormValue("theme")
	if !config.IsValidTheme(theme) {
		log.Printf("[settings] invalid theme selected: %q", theme)
		http.Error(w, "Invalid theme", http.StatusBadRequest)
		return
	}
	if err := h.prefs.SetTheme(r.Context(), SessionID(r), theme); err != nil {
		log.Printf("[settings] failed to store theme: %v", err)
		http.Error(w, "Failed to save theme", http.StatusInternalServerError)
		return
	}
	log.Printf("[settings] theme set to: %s", theme)
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}

// SetPaginationSize stores the items-per-page choice and triggers a list
// reload.
func (h *SettingsHandler) SetPaginationSize(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(r.PostFormValue("pagination_size"))
	if err != nil {
		log.Printf("[settings] non-integer pagination size submitted")
		w.Header().Set("X-HX-Alert", "Invalid pagination size input.")
		w.Header().Set("X-HX-Alert-Type", "error")
		http.Error(w, "Invalid input", http.StatusBadRequest)
		return
	}
	if !config.IsValidPaginationSize(size) {
		log.Printf("[settings] invalid pagination size selected: %d", size)
		w.Header().Set("X-HX-Alert", "Invalid pagination size selected.")
		w.Header().Set("X-HX-Alert-Type", "error")
		http.Error(w, "Invalid size", http.StatusBadRequest)
		return
	}
	if err := h.prefs.SetPageSize(r.Context(), SessionID(r), size); err != nil {
		log.Printf("[settings] failed to store pagination size: %v", err)
		http.Error(w, "Failed to save pagination size", http.StatusInternalServerError)
		return
	}
	log.Printf("[settings] pagination size set to: %d", size)
	w.Header().Set("HX-Trigger", "loadWatchlist")
	w.Header().Set("X-HX-Alert", fmt.Sprintf("Items per page set to %d.", size))
	w.Header().Set("X-HX-Alert-Type", "success")
	w.WriteHeader(http.StatusOK)
}

// Export streams the whole watchlist as a downloadable JSON backup.
func (h *SettingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.backup.Export(r.Context())
	if err != nil {
		log.Printf("[settings] error during data export: %v", err)
		h.render.Render(w, http.StatusInternalServerError, "settings.html",
			h.settingsContext(r, flashMessage{Text: "Error exporting data. Please check logs.", Level: "error"}))
		return
	}

	filename := backup.Filename(time.Now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Import replaces the watchlist with an uploaded JSON backup. Every
// outcome lands back on the settings page with a message.
func (h *SettingsHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		h.render.Render(w, http.StatusBadRequest, "settings.html",
			h.settingsContext(r, flashMessage{Text: "No file part in the request.", Level: "error"}))
		return
	}

	file, header, err := r.FormFile("backup_file")
	if err != nil {
		h.render.Render(w, http.StatusBadRequest, "settings.html",
			h.settingsContext(r, flashMessage{Text: "No file part in the request.", Level: "error"}))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.render.Render(w, http.StatusBadRequest, "settings.html",
			h.settingsContext(r, flashMessage{Text: "No file selected for uploading.", Level: "warning"}))
		return
	}
	if !allowedBackupFile(header.Filename) {
		h.render.Render(w, http.StatusBadRequest, "settings.html",
			h.settingsContext(r, flashMessage{Text: "Invalid file type. Please upload a .json file.", Level: "error"}))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[settings] failed to read uploaded backup: %v", err)
		h.render.Render(w, http.StatusInternalServerError, "settings.html",
			h.settingsContext(r, flashMessage{Text: "An unexpected error occurred during import.", Level: "error"}))
		return
	}

	// Uploads are sniffed, not trusted by extension alone
	if mtype := mimetype.Detect(data); !mtype.Is("application/json") && !mtype.Is("text/plain") {
		h.render.Render(w, http.StatusBadRequest, "settings.html",
			h.settingsContext(r, flashMessage{Text: "Invalid file type. Please upload a .json file.", Level: "error"}))
		return
	}

	result, err := h.backup.Import(r.Context(), data)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidJSON) {
			h.render.Render(w, http.StatusBadRequest, "settings.html",
				h.settingsContext(r, flashMessage{Text: "Invalid JSON file. Please upload a valid backup.", Level: "error"}))
			return
		}
		log.Printf("[settings] database error during import: %v", err)
		h.render.Render(w, http.StatusInternalServerError, "settings.html",
			h.settingsContext(r, flashMessage{Text: "Database error during import. Data rolled back.", Level: "error"}))
		return
	}

	message := fmt.Sprintf("%d items imported successfully.", result.Imported)
	if result.Skipped > 0 {
		message += fmt.Sprintf(" %d items were skipped due to missing data.", result.Skipped)
	}
	h.render.Render(w, http.StatusOK, "settings.html",
		h.settingsContext(r, flashMessage{Text: message, Level: "success"}))
}

func allowedBackupFile(filename string) bool {
	dot := strings.LastIndex(filename, ".")
	if dot <= 0 {
		return false
	}
	return strings.EqualFold(filename[dot+1:], "json")
}
