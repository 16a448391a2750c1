package watchlist

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"showtrackr/models"
	"showtrackr/utils"
)

// FormResult is the outcome of validating an item form submission. When
// Errors is non-empty, Item holds only the fields that parsed cleanly and
// must not be persisted; Draft always mirrors the raw submission for
// redisplay.
type FormResult struct {
	Item   *models.WatchlistItem
	Draft  *models.ItemDraft
	Errors []string
}

// ParseItemForm validates a save submission field by field and collects
// every error message rather than stopping at the first.
func ParseItemForm(form url.Values) *FormResult {
	draft := &models.ItemDraft{
		ID:          form.Get("item_id"),
		Title:       form.Get("title"),
		Type:        form.Get("type"),
		Year:        form.Get("year"),
		Status:      form.Get("status"),
		Rating:      form.Get("rating"),
		Overview:    form.Get("overview"),
		Notes:       form.Get("notes"),
		PosterURL:   form.Get("poster_url"),
		TmdbID:      form.Get("tmdb_id"),
		ImdbID:      form.Get("imdb_id"),
		BoxdID:      form.Get("boxd_id"),
		DateWatched: form.Get("date_watched"),
	}

	var errs []string
	item := &models.WatchlistItem{
		Title:  strings.TrimSpace(draft.Title),
		Type:   draft.Type,
		Status: draft.Status,
	}

	item.Year = parseYear(strings.TrimSpace(draft.Year), &errs)
	item.Rating = parseRating(strings.TrimSpace(draft.Rating), &errs)
	item.DateWatched = parseDateWatched(strings.TrimSpace(draft.DateWatched), &errs)

	item.Overview = optionalText(draft.Overview)
	item.Notes = optionalText(draft.Notes)
	item.PosterURL = optionalText(draft.PosterURL)
	item.TmdbID = optionalText(draft.TmdbID)
	item.ImdbID = optionalText(draft.ImdbID)
	item.BoxdID = optionalText(draft.BoxdID)

	if item.Title == "" {
		errs = append(errs, "Title is required.")
	}
	if item.Type != models.TypeMovie && item.Type != models.TypeTV {
		errs = append(errs, "Invalid type selected.")
	}
	if item.Status != models.StatusPlanToWatch && item.Status != models.StatusWatched {
		errs = append(errs, "Invalid status selected.")
	}

	return &FormResult{Item: item, Draft: draft, Errors: errs}
}

func parseYear(raw string, errs *[]string) *int {
	if raw == "" {
		return nil
	}
	if !utils.IsDigits(raw) {
		*errs = append(*errs, "Year must be a valid number.")
		return nil
	}
	year, _ := strconv.Atoi(raw)
	if year < 1800 || year > 2050 {
		*errs = append(*errs, "Year must be between 1800 and 2050.")
		return nil
	}
	return &year
}

func parseRating(raw string, errs *[]string) *int {
	if raw == "" {
		return nil
	}
	if !utils.IsDigits(raw) {
		*errs = append(*errs, "Rating must be a valid number.")
		return nil
	}
	rating, _ := strconv.Atoi(raw)
	if rating < 1 || rating > 10 {
		*errs = append(*errs, "Rating must be between 1 and 10.")
		return nil
	}
	return &rating
}

func parseDateWatched(raw string, errs *[]string) *time.Time {
	if raw == "" {
		return nil
	}
	watched, err := time.Parse("2006-01-02", raw)
	if err != nil {
		*errs = append(*errs, "Invalid Date Watched format. Please use YYYY-MM-DD.")
		return nil
	}
	return &watched
}

func optionalText(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
