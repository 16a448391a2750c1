package models

import "strconv"

// ItemDraft carries the raw, possibly invalid form input for a watchlist
// item so a failed submission can be re-rendered with the user's values
// preserved. It is never persisted.
type ItemDraft struct {
	ID          string
	Title       string
	Type        string
	Year        string
	Status      string
	Rating      string
	Overview    string
	Notes       string
	PosterURL   string
	TmdbID      string
	ImdbID      string
	BoxdID      string
	DateWatched string
}

// DraftFromItem seeds a draft with a persisted item's current values, used
// when opening the edit form.
func DraftFromItem(item *WatchlistItem) *ItemDraft {
	if item == nil {
		return &ItemDraft{Status: StatusWatched, Type: TypeMovie}
	}
	d := &ItemDraft{
		Title:       item.Title,
		Type:        item.Type,
		Status:      item.Status,
		DateWatched: item.DateWatchedString(),
	}
	if item.ID != 0 {
		d.ID = strconv.Itoa(item.ID)
	}
	if item.Year != nil {
		d.Year = strconv.Itoa(*item.Year)
	}
	if item.Rating != nil {
		d.Rating = strconv.Itoa(*item.Rating)
	}
	d.Overview = stringValue(item.Overview)
	d.Notes = stringValue(item.Notes)
	d.PosterURL = stringValue(item.PosterURL)
	d.TmdbID = stringValue(item.TmdbID)
	d.ImdbID = stringValue(item.ImdbID)
	d.BoxdID = stringValue(item.BoxdID)
	return d
}
