package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"showtrackr/models"
)

// ErrNotFound is returned when an item id does not exist.
var ErrNotFound = errors.New("watchlist item not found")

const itemColumns = `id, title, type, year, status, rating, overview, notes,
	poster_url, tmdb_id, imdb_id, boxd_id, date_added, date_modified, date_watched`

// Service owns all reads and writes against the watchlist table. Every
// mutation runs inside its own transaction.
type Service struct {
	db *sqlx.DB
}

// NewService returns a watchlist service backed by db.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

// ListResult is one page of the watchlist plus everything the controls bar
// needs to render consistently with the applied query.
type ListResult struct {
	Items         []models.WatchlistItem
	Pagination    Pagination
	DistinctYears []int
	Query         Query
}

// List returns the page of items matching q. Bad pages degrade to empty
// results; listing never fails on user input.
func (s *Service) List(ctx context.Context, q Query) (*ListResult, error) {
	where, args := q.whereClause()

	var total int
	if err := s.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM watchlist_items"+where, args...); err != nil {
		return nil, fmt.Errorf("count watchlist items: %w", err)
	}

	query := "SELECT " + itemColumns + " FROM watchlist_items" + where + q.orderClause() + " LIMIT ? OFFSET ?"
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)

	items := []models.WatchlistItem{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("select watchlist items: %w", err)
	}

	years, err := s.DistinctYears(ctx)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Items:         items,
		Pagination:    newPagination(q.Page, q.PerPage, total),
		DistinctYears: years,
		Query:         q,
	}, nil
}

// DistinctYears returns every year present on the watchlist, newest first,
// for the year filter dropdown.
func (s *Service) DistinctYears(ctx context.Context) ([]int, error) {
	years := []int{}
	err := s.db.SelectContext(ctx, &years,
		"SELECT DISTINCT year FROM watchlist_items WHERE year IS NOT NULL ORDER BY year DESC")
	if err != nil {
		return nil, fmt.Errorf("select distinct years: %w", err)
	}
	return years, nil
}

// Get fetches a single item by id.
func (s *Service) Get(ctx context.Context, id int) (*models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := s.db.GetContext(ctx, &item,
		"SELECT "+itemColumns+" FROM watchlist_items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get watchlist item %d: %w", id, err)
	}
	return &item, nil
}

// Create inserts item as a new row, assigning its id and stamping
// date_added and date_modified.
func (s *Service) Create(ctx context.Context, item *models.WatchlistItem) error {
	now := time.Now().UTC()
	item.DateAdded = now
	item.DateModified = now

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	res, err := insertItem(ctx, tx, item)
	if err != nil {
		return fmt.Errorf("insert watchlist item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read inserted id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}

	item.ID = int(id)
	return nil
}

// Update rewrites an existing row. date_added is never touched;
// date_modified is refreshed. Returns ErrNotFound for unknown ids.
func (s *Service) Update(ctx context.Context, item *models.WatchlistItem) error {
	item.DateModified = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE watchlist_items SET
		title = ?, type = ?, year = ?, status = ?, rating = ?,
		overview = ?, notes = ?, poster_url = ?,
		tmdb_id = ?, imdb_id = ?, boxd_id = ?,
		date_modified = ?, date_watched = ?
		WHERE id = ?`,
		item.Title, item.Type, item.Year, item.Status, item.Rating,
		item.Overview, item.Notes, item.PosterURL,
		item.TmdbID, item.ImdbID, item.BoxdID,
		formatDateTime(item.DateModified), formatDate(item.DateWatched),
		item.ID)
	if err != nil {
		return fmt.Errorf("update watchlist item %d: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update watchlist item %d: %w", item.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}
	return nil
}

// Delete removes an item, returning its title for the confirmation
// message. Returns ErrNotFound for unknown ids.
func (s *Service) Delete(ctx context.Context, id int) (string, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	var title string
	err = tx.GetContext(ctx, &title, "SELECT title FROM watchlist_items WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load watchlist item %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM watchlist_items WHERE id = ?", id); err != nil {
		return "", fmt.Errorf("delete watchlist item %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit delete: %w", err)
	}
	return title, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// insertItem writes a full row inside the caller's transaction.
func insertItem(ctx context.Context, tx execer, item *models.WatchlistItem) (sql.Result, error) {
	return tx.ExecContext(ctx, `INSERT INTO watchlist_items
		(title, type, year, status, rating, overview, notes, poster_url,
		 tmdb_id, imdb_id, boxd_id, date_added, date_modified, date_watched)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Title, item.Type, item.Year, item.Status, item.Rating,
		item.Overview, item.Notes, item.PosterURL,
		item.TmdbID, item.ImdbID, item.BoxdID,
		formatDateTime(item.DateAdded), formatDateTime(item.DateModified),
		formatDate(item.DateWatched))
}

// Timestamps are stored as UTC text so COALESCE sort placeholders compare
// lexically with real values.
func formatDateTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format("2006-01-02")
}
