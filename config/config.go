package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// AppVersion is the released application version shown on the about page.
const AppVersion = "0.2.1"

// Watchlist defaults.
const (
	DefaultItemsPerPage = 15
	DefaultSortColumn   = "date_watched"
	DefaultSortOrder    = "desc"
	DefaultTheme        = "cupcake"
)

// ValidPaginationSizes are the page sizes the UI may select.
var ValidPaginationSizes = []int{10, 15, 20, 30, 40, 50}

// ValidSortColumns are the columns the watchlist can be ordered by.
var ValidSortColumns = []string{"date_watched", "date_added", "title", "year", "rating"}

// ValidThemes lists every theme name the frontend ships.
var ValidThemes = []string{
	"cupcake", "dracula", "light", "dark", "bumblebee", "synthwave",
	"emerald", "halloween", "corporate", "forest", "retro", "black",
	"valentine", "luxury", "garden", "business", "lofi", "night",
	"pastel", "coffee", "fantasy", "dim", "wireframe", "sunset",
	"cmyk", "abyss", "autumn", "acid", "lemonade", "winter", "nord",
	"caramellatte", "silk",
}

// Settings holds the process-level configuration resolved from the
// environment at startup.
type Settings struct {
	// DataDir holds the database, log files and the optional .env file.
	DataDir string
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string
	// FeedbackURL and SheetURL are optional links surfaced on the about page.
	FeedbackURL string
	SheetURL    string
	Debug       bool
}

// Load resolves settings from the environment. Missing values fall back to
// defaults suitable for a self-hosted single-user deployment.
func Load() Settings {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	debug, _ := strconv.ParseBool(os.Getenv("SHOWTRACKR_DEBUG"))

	return Settings{
		DataDir:     dataDir,
		ListenAddr:  ":" + port,
		FeedbackURL: os.Getenv("GOOGLE_APPS_SCRIPT_FEEDBACK_URL"),
		SheetURL:    os.Getenv("GOOGLE_SHEET_PUBLIC_URL"),
		Debug:       debug,
	}
}

// DatabasePath returns the sqlite database location inside the data dir.
func (s Settings) DatabasePath() string {
	return filepath.Join(s.DataDir, "database.db")
}

// LogPath returns the rotating log file location inside the data dir.
func (s Settings) LogPath() string {
	return filepath.Join(s.DataDir, "logs", "showtrackr.log")
}

// IsValidTheme reports whether name is one of the shipped themes.
func IsValidTheme(name string) bool {
	for _, t := range ValidThemes {
		if t == name {
			return true
		}
	}
	return false
}

// IsValidPaginationSize reports whether size is an allowed page size.
func IsValidPaginationSize(size int) bool {
	for _, s := range ValidPaginationSizes {
		if s == size {
			return true
		}
	}
	return false
}

// IsValidSortColumn reports whether column can be sorted on.
func IsValidSortColumn(column string) bool {
	for _, c := range ValidSortColumns {
		if c == column {
			return true
		}
	}
	return false
}
