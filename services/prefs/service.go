package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"showtrackr/config"
)

// Preferences are the per-session UI choices. Values are re-validated
// against the allowed lists on every read, never trusted from storage.
type Preferences struct {
	Theme    string
	PageSize int
}

// Service persists per-session preferences in the sessions table.
type Service struct {
	db *sqlx.DB
}

// NewService returns a preferences service backed by db.
func NewService(db *sqlx.DB) *Service {
	return &Service{db: db}
}

type sessionRow struct {
	Theme    string `db:"theme"`
	PageSize int    `db:"page_size"`
}

// Get resolves the preferences for a session. Missing sessions and invalid
// stored values silently fall back to the defaults.
func (s *Service) Get(ctx context.Context, sessionID string) Preferences {
	prefs := Preferences{
		Theme:    config.DefaultTheme,
		PageSize: config.DefaultItemsPerPage,
	}
	if sessionID == "" {
		return prefs
	}

	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		"SELECT theme, page_size FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Printf("[prefs] failed to load session %s: %v", sessionID, err)
		}
		return prefs
	}

	if config.IsValidTheme(row.Theme) {
		prefs.Theme = row.Theme
	}
	if config.IsValidPaginationSize(row.PageSize) {
		prefs.PageSize = row.PageSize
	}
	return prefs
}

// SetTheme stores a theme choice for the session.
func (s *Service) SetTheme(ctx context.Context, sessionID, theme string) error {
	if !config.IsValidTheme(theme) {
		return fmt.Errorf("invalid theme %q", theme)
	}
	return s.upsert(ctx, sessionID, "theme", theme)
}

// SetPageSize stores a page-size choice for the session.
func (s *Service) SetPageSize(ctx context.Context, sessionID string, size int) error {
	if !config.IsValidPaginationSize(size) {
		return fmt.Errorf("invalid pagination size %d", size)
	}
	return s.upsert(ctx, sessionID, "page_size", size)
}

func (s *Service) upsert(ctx context.Context, sessionID, column string, value interface{}) error {
	if sessionID == "" {
		return errors.New("missing session id")
	}
	now := time.Now().UTC().Format("2006-01-02 15:04:05")
	query := fmt.Sprintf(`INSERT INTO sessions (id, %s, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET %s = excluded.%s, updated_at = excluded.updated_at`,
		column, column, column)
	if _, err := s.db.ExecContext(ctx, query, sessionID, value, now, now); err != nil {
		return fmt.Errorf("store session preference: %w", err)
	}
	return nil
}
