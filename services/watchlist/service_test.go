package watchlist_test

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"showtrackr/internal/database"
	"showtrackr/models"
	"showtrackr/services/watchlist"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Open(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type itemSeed struct {
	title   string
	kind    string
	status  string
	year    *int
	rating  *int
	watched *time.Time
}

func addItem(t *testing.T, svc *watchlist.Service, seed itemSeed) *models.WatchlistItem {
	t.Helper()
	if seed.kind == "" {
		seed.kind = models.TypeMovie
	}
	if seed.status == "" {
		seed.status = models.StatusWatched
	}
	item := &models.WatchlistItem{
		Title:       seed.title,
		Type:        seed.kind,
		Status:      seed.status,
		Year:        seed.year,
		Rating:      seed.rating,
		DateWatched: seed.watched,
	}
	if err := svc.Create(context.Background(), item); err != nil {
		t.Fatalf("failed to create item %q: %v", seed.title, err)
	}
	return item
}

func intPtr(n int) *int { return &n }

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("bad test date %q: %v", value, err)
	}
	return &parsed
}

func listQuery(t *testing.T, svc *watchlist.Service, params url.Values) *watchlist.ListResult {
	t.Helper()
	result, err := svc.List(context.Background(), watchlist.ParseQuery(params, 15))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	return result
}

func titles(items []models.WatchlistItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))

	item := addItem(t, svc, itemSeed{title: "Test Movie"})
	if item.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if item.DateAdded.IsZero() || item.DateModified.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}

	loaded, err := svc.Get(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if loaded.Title != "Test Movie" || loaded.Status != models.StatusWatched {
		t.Fatalf("unexpected loaded item: %+v", loaded)
	}
}

func TestUpdateRefreshesDateModifiedOnly(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	item := addItem(t, svc, itemSeed{title: "Original"})

	first, err := svc.Get(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}

	time.Sleep(1100 * time.Millisecond) // stored timestamps have second precision

	item.Title = "Renamed"
	if err := svc.Update(context.Background(), item); err != nil {
		t.Fatalf("update returned error: %v", err)
	}

	updated, err := svc.Get(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("expected renamed title, got %q", updated.Title)
	}
	if !updated.DateAdded.Equal(first.DateAdded) {
		t.Fatalf("date_added must never change: %v -> %v", first.DateAdded, updated.DateAdded)
	}
	if !updated.DateModified.After(first.DateModified) {
		t.Fatalf("expected date_modified to advance: %v -> %v", first.DateModified, updated.DateModified)
	}
}

func TestUpdateUnknownIDReturnsNotFound(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	err := svc.Update(context.Background(), &models.WatchlistItem{ID: 9999, Title: "Ghost", Type: models.TypeMovie, Status: models.StatusWatched})
	if !errors.Is(err, watchlist.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRemovesItem(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	item := addItem(t, svc, itemSeed{title: "Doomed"})

	title, err := svc.Delete(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	if title != "Doomed" {
		t.Fatalf("expected deleted title, got %q", title)
	}
	if _, err := svc.Get(context.Background(), item.ID); !errors.Is(err, watchlist.ErrNotFound) {
		t.Fatalf("expected item to be gone, got %v", err)
	}
}

func TestDeleteUnknownIDLeavesTableUnchanged(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "Survivor"})

	if _, err := svc.Delete(context.Background(), 4242); !errors.Is(err, watchlist.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	result := listQuery(t, svc, url.Values{})
	if result.Pagination.TotalItems != 1 {
		t.Fatalf("expected table unchanged, got %d items", result.Pagination.TotalItems)
	}
}

func TestListStatusAndTypeFilters(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "Watched Movie", kind: models.TypeMovie, status: models.StatusWatched})
	addItem(t, svc, itemSeed{title: "Planned Show", kind: models.TypeTV, status: models.StatusPlanToWatch})

	result := listQuery(t, svc, url.Values{"filter_status": {models.StatusPlanToWatch}})
	if got := titles(result.Items); len(got) != 1 || got[0] != "Planned Show" {
		t.Fatalf("status filter returned %v", got)
	}

	result = listQuery(t, svc, url.Values{"filter_type": {models.TypeMovie}})
	if got := titles(result.Items); len(got) != 1 || got[0] != "Watched Movie" {
		t.Fatalf("type filter returned %v", got)
	}
}

func TestListYearAndTypeFilterScenario(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "Apple", kind: models.TypeMovie, year: intPtr(2020), rating: intPtr(9)})
	addItem(t, svc, itemSeed{title: "Other", kind: models.TypeTV, year: intPtr(2021)})

	result := listQuery(t, svc, url.Values{
		"filter_type":  {models.TypeMovie},
		"filter_years": {"2020"},
		"sort":         {"title"},
		"order":        {"asc"},
	})
	if got := titles(result.Items); len(got) != 1 || got[0] != "Apple" {
		t.Fatalf("expected only Apple, got %v", got)
	}
}

func TestListRatingRange(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "Low", rating: intPtr(5)})
	addItem(t, svc, itemSeed{title: "Mid", rating: intPtr(8)})
	addItem(t, svc, itemSeed{title: "High", rating: intPtr(10)})
	addItem(t, svc, itemSeed{title: "Unrated"})

	result := listQuery(t, svc, url.Values{
		"filter_rating_min": {"7"},
		"filter_rating_max": {"9"},
	})
	if got := titles(result.Items); len(got) != 1 || got[0] != "Mid" {
		t.Fatalf("expected only the rating-8 entry, got %v", got)
	}

	// A single bound still excludes unrated items entirely
	result = listQuery(t, svc, url.Values{"filter_rating_min": {"1"}})
	if got := titles(result.Items); len(got) != 3 {
		t.Fatalf("expected unrated item excluded, got %v", got)
	}
}

func TestListSearchIsCaseInsensitiveSubstring(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "The Grand Budapest Hotel"})
	addItem(t, svc, itemSeed{title: "Grandma's Kitchen"})
	addItem(t, svc, itemSeed{title: "Unrelated"})

	result := listQuery(t, svc, url.Values{"search": {"grand"}})
	if got := titles(result.Items); len(got) != 2 {
		t.Fatalf("expected two matches, got %v", got)
	}
}

func TestSortTitleCaseInsensitive(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "cherry"})
	addItem(t, svc, itemSeed{title: "apple"})
	addItem(t, svc, itemSeed{title: "Banana"})

	result := listQuery(t, svc, url.Values{"sort": {"title"}, "order": {"asc"}})
	got := titles(result.Items)
	want := []string{"apple", "Banana", "cherry"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSortNullsLastBothDirections(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "Old", year: intPtr(1990)})
	addItem(t, svc, itemSeed{title: "New", year: intPtr(2024)})
	addItem(t, svc, itemSeed{title: "NoYear"})

	for _, order := range []string{"asc", "desc"} {
		result := listQuery(t, svc, url.Values{"sort": {"year"}, "order": {order}})
		got := titles(result.Items)
		if got[len(got)-1] != "NoYear" {
			t.Fatalf("order=%s: expected missing year last, got %v", order, got)
		}
	}

	result := listQuery(t, svc, url.Values{"sort": {"year"}, "order": {"asc"}})
	if got := titles(result.Items); got[0] != "Old" || got[1] != "New" {
		t.Fatalf("ascending year order wrong: %v", got)
	}
	result = listQuery(t, svc, url.Values{"sort": {"year"}, "order": {"desc"}})
	if got := titles(result.Items); got[0] != "New" || got[1] != "Old" {
		t.Fatalf("descending year order wrong: %v", got)
	}
}

func TestSortDateWatchedNullsLast(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "Early", watched: datePtr(t, "2023-01-15")})
	addItem(t, svc, itemSeed{title: "Late", watched: datePtr(t, "2024-06-01")})
	addItem(t, svc, itemSeed{title: "Unwatched"})

	for _, order := range []string{"asc", "desc"} {
		result := listQuery(t, svc, url.Values{"sort": {"date_watched"}, "order": {order}})
		got := titles(result.Items)
		if got[len(got)-1] != "Unwatched" {
			t.Fatalf("order=%s: expected unwatched last, got %v", order, got)
		}
	}
}

func TestSortRatingNullsLast(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "Nine", rating: intPtr(9)})
	addItem(t, svc, itemSeed{title: "Three", rating: intPtr(3)})
	addItem(t, svc, itemSeed{title: "Unrated"})

	result := listQuery(t, svc, url.Values{"sort": {"rating"}, "order": {"desc"}})
	got := titles(result.Items)
	want := []string{"Nine", "Three", "Unrated"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSortTiesBreakOnIDDescending(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	first := addItem(t, svc, itemSeed{title: "Twin", year: intPtr(2000)})
	second := addItem(t, svc, itemSeed{title: "Twin", year: intPtr(2000)})

	result := listQuery(t, svc, url.Values{"sort": {"year"}, "order": {"asc"}})
	if result.Items[0].ID != second.ID || result.Items[1].ID != first.ID {
		t.Fatalf("expected newer id first on tie, got %d then %d", result.Items[0].ID, result.Items[1].ID)
	}
}

func TestPagination(t *testing.T) {
	db := setupTestDB(t)
	svc := watchlist.NewService(db)
	for i := 0; i < 25; i++ {
		addItem(t, svc, itemSeed{title: "Item", year: intPtr(2000 + i)})
	}

	result, err := svc.List(context.Background(), watchlist.ParseQuery(url.Values{"page": {"2"}}, 10))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Items) != 10 {
		t.Fatalf("expected 10 items on page 2, got %d", len(result.Items))
	}
	if result.Pagination.TotalItems != 25 || result.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", result.Pagination)
	}
	if !result.Pagination.HasPrev() || !result.Pagination.HasNext() {
		t.Fatalf("expected middle page to have both neighbours")
	}

	// Past-the-end pages are empty, never an error
	result, err = svc.List(context.Background(), watchlist.ParseQuery(url.Values{"page": {"99"}}, 10))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(result.Items) != 0 {
		t.Fatalf("expected empty page, got %d items", len(result.Items))
	}
}

func TestDistinctYears(t *testing.T) {
	svc := watchlist.NewService(setupTestDB(t))
	addItem(t, svc, itemSeed{title: "A", year: intPtr(1999)})
	addItem(t, svc, itemSeed{title: "B", year: intPtr(2024)})
	addItem(t, svc, itemSeed{title: "C", year: intPtr(1999)})
	addItem(t, svc, itemSeed{title: "D"})

	years, err := svc.DistinctYears(context.Background())
	if err != nil {
		t.Fatalf("distinct years failed: %v", err)
	}
	if len(years) != 2 || years[0] != 2024 || years[1] != 1999 {
		t.Fatalf("expected [2024 1999], got %v", years)
	}
}
