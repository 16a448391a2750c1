package models

import (
	"strconv"
	"strings"
	"time"
)

// Media types a watchlist item can have.
const (
	TypeMovie = "movie"
	TypeTV    = "tv"
)

// Watch statuses a watchlist item can have.
const (
	StatusPlanToWatch = "Plan to Watch"
	StatusWatched     = "Watched"
)

// WatchlistItem represents one tracked movie or TV show.
type WatchlistItem struct {
	ID           int        `db:"id" json:"id"`
	Title        string     `db:"title" json:"title"`
	Type         string     `db:"type" json:"type"` // movie | tv
	Year         *int       `db:"year" json:"year,omitempty"`
	Status       string     `db:"status" json:"status"`
	Rating       *int       `db:"rating" json:"rating,omitempty"`
	Overview     *string    `db:"overview" json:"overview,omitempty"`
	Notes        *string    `db:"notes" json:"notes,omitempty"`
	PosterURL    *string    `db:"poster_url" json:"posterUrl,omitempty"`
	TmdbID       *string    `db:"tmdb_id" json:"tmdbId,omitempty"`
	ImdbID       *string    `db:"imdb_id" json:"imdbId,omitempty"`
	BoxdID       *string    `db:"boxd_id" json:"boxdId,omitempty"`
	DateAdded    time.Time  `db:"date_added" json:"dateAdded"`
	DateModified time.Time  `db:"date_modified" json:"dateModified"`
	DateWatched  *time.Time `db:"date_watched" json:"dateWatched,omitempty"`
}

// Quicklink is a derived external-site link for an item.
type Quicklink struct {
	Label string
	URL   string
}

// DisplayPoster returns the poster URL when one is set, nil otherwise.
// Whitespace-only URLs count as unset.
func (w *WatchlistItem) DisplayPoster() *string {
	if w.PosterURL == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*w.PosterURL)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// PrimaryQuicklink picks the external link to show for the item using a
// fixed priority: IMDb, then Letterboxd, then TMDb. Returns nil when the
// item carries no external IDs.
func (w *WatchlistItem) PrimaryQuicklink() *Quicklink {
	if id := stringValue(w.ImdbID); id != "" {
		return &Quicklink{Label: "IMDb", URL: "https://www.imdb.com/title/" + id}
	}
	if id := stringValue(w.BoxdID); id != "" {
		return &Quicklink{Label: "Letterboxd", URL: "https://boxd.it/" + id}
	}
	if id := stringValue(w.TmdbID); id != "" {
		segment := TypeMovie
		if w.Type == TypeTV {
			segment = TypeTV
		}
		return &Quicklink{Label: "TMDb", URL: "https://www.themoviedb.org/" + segment + "/" + id}
	}
	return nil
}

// YearString formats the year for display, empty when unset.
func (w *WatchlistItem) YearString() string {
	if w.Year == nil {
		return ""
	}
	return strconv.Itoa(*w.Year)
}

// RatingString formats the rating for display, empty when unset.
func (w *WatchlistItem) RatingString() string {
	if w.Rating == nil {
		return ""
	}
	return strconv.Itoa(*w.Rating)
}

// DateWatchedString formats the watch date for form display.
func (w *WatchlistItem) DateWatchedString() string {
	if w.DateWatched == nil {
		return ""
	}
	return w.DateWatched.Format("2006-01-02")
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
