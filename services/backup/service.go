package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"showtrackr/models"
)

// ErrInvalidJSON is returned when an uploaded backup cannot be parsed.
// Nothing has been deleted when this comes back.
var ErrInvalidJSON = errors.New("backup is not valid JSON")

// Service serializes the whole watchlist to the portable backup format and
// restores it.
type Service struct {
	db *sqlx.DB
}

// NewService returns a backup service backed by db.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// record is the flat export/import shape. Dates travel as ISO-8601
// strings, absent values as null. Year and rating are declared loose on
// purpose: imports may carry numbers or numeric strings.
type record struct {
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	Year        interface{} `json:"year"`
	TmdbID      *string     `json:"tmdb_id"`
	ImdbID      *string     `json:"imdb_id"`
	BoxdID      *string     `json:"boxd_id"`
	Overview    *string     `json:"overview"`
	PosterURL   *string     `json:"poster_url"`
	Status      string      `json:"status"`
	Rating      interface{} `json:"rating"`
	Notes       *string     `json:"notes"`
	DateAdded   *string     `json:"date_added"`
	DateWatched *string     `json:"date_watched"`
}

// Export emits every item, in storage order, as an indented JSON array.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	items := []models.WatchlistItem{}
	err := s.db.SelectContext(ctx, &items,
		`SELECT id, title, type, year, status, rating, overview, notes,
			poster_url, tmdb_id, imdb_id, boxd_id,
			date_added, date_modified, date_watched
		FROM watchlist_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("select items for export: %w", err)
	}

	records := make([]record, 0, len(items))
	for i := range items {
		item := &items[i]
		rec := record{
			Title:     item.Title,
			Type:      item.Type,
			TmdbID:    item.TmdbID,
			ImdbID:    item.ImdbID,
			BoxdID:    item.BoxdID,
			Overview:  item.Overview,
			PosterURL: item.PosterURL,
			Status:    item.Status,
			Notes:     item.Notes,
		}
		if item.Year != nil {
			rec.Year = *item.Year
		}
		if item.Rating != nil {
			rec.Rating = *item.Rating
		}
		added := item.DateAdded.Format("2006-01-02T15:04:05")
		rec.DateAdded = &added
		if item.DateWatched != nil {
			watched := item.DateWatched.Format("2006-01-02")
			rec.DateWatched = &watched
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// Filename builds the download name for an export taken now.
func Filename(now time.Time) string {
	return "showtrackr_backup_" + now.Format("20060102_150405") + ".json"
}

// Result reports what an import did.
type Result struct {
	Imported int
	Skipped  int
}

// Import replaces the entire watchlist with the uploaded document. The
// JSON is parsed before anything is deleted, and the delete plus all
// inserts share one transaction, so a failed import leaves the previous
// data in place. Records missing a title or a valid type are skipped;
// out-of-range years and ratings are dropped to null rather than failing
// the whole backup.
func (s *Service) Import(ctx context.Context, data []byte) (Result, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM watchlist_items"); err != nil {
		return Result{}, fmt.Errorf("clear watchlist: %w", err)
	}

	now := time.Now().UTC()
	var result Result
	for _, rec := range records {
		item, ok := itemFromRecord(rec, now)
		if !ok {
			result.Skipped++
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO watchlist_items
			(title, type, year, status, rating, overview, notes, poster_url,
			 tmdb_id, imdb_id, boxd_id, date_added, date_modified, date_watched)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.Title, item.Type, item.Year, item.Status, item.Rating,
			item.Overview, item.Notes, item.PosterURL,
			item.TmdbID, item.ImdbID, item.BoxdID,
			item.DateAdded.Format("2006-01-02 15:04:05"),
			item.DateModified.Format("2006-01-02 15:04:05"),
			dateOrNil(item.DateWatched)); err != nil {
			return Result{}, fmt.Errorf("insert imported item %q: %w", item.Title, err)
		}
		result.Imported++
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("commit import: %w", err)
	}
	return result, nil
}

// itemFromRecord coerces one backup record into an insertable item.
// Returns false when the record must be skipped.
func itemFromRecord(rec record, now time.Time) (*models.WatchlistItem, bool) {
	title := strings.TrimSpace(rec.Title)
	if title == "" || rec.Type == "" {
		log.Printf("[backup] skipping item due to missing title or type: %q", rec.Title)
		return nil, false
	}
	if rec.Type != models.TypeMovie && rec.Type != models.TypeTV {
		log.Printf("[backup] skipping item %q: unknown type %q", title, rec.Type)
		return nil, false
	}

	status := rec.Status
	if status != models.StatusPlanToWatch && status != models.StatusWatched {
		status = models.StatusWatched
	}

	item := &models.WatchlistItem{
		Title:        title,
		Type:         rec.Type,
		Status:       status,
		Year:         coerceRange(rec.Year, 1800, 2050, title, "year"),
		Rating:       coerceRange(rec.Rating, 1, 10, title, "rating"),
		Overview:     rec.Overview,
		Notes:        rec.Notes,
		PosterURL:    rec.PosterURL,
		TmdbID:       rec.TmdbID,
		ImdbID:       rec.ImdbID,
		BoxdID:       rec.BoxdID,
		DateAdded:    now,
		DateModified: now,
	}

	if rec.DateAdded != nil {
		if added, ok := parseTimestamp(*rec.DateAdded); ok {
			item.DateAdded = added
		}
	}
	if rec.DateWatched != nil {
		if watched, err := time.Parse("2006-01-02", *rec.DateWatched); err == nil {
			item.DateWatched = &watched
		}
	}

	return item, true
}

// coerceRange turns a loose JSON value into an int within [min, max].
// Numbers and numeric strings are accepted; anything else, or anything out
// of range, becomes nil.
func coerceRange(raw interface{}, min, max int, title, field string) *int {
	if raw == nil {
		return nil
	}

	var value int
	switch v := raw.(type) {
	case float64:
		value = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			log.Printf("[backup] invalid %s %q for item %q, setting to null", field, v, title)
			return nil
		}
		value = parsed
	default:
		log.Printf("[backup] invalid %s value for item %q, setting to null", field, title)
		return nil
	}

	if value < min || value > max {
		log.Printf("[backup] %s %d out of range for item %q, setting to null", field, value, title)
		return nil
	}
	return &value
}

// parseTimestamp accepts the formats a date_added field has historically
// been exported with.
func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

func dateOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
