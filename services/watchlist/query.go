package watchlist

import (
	"net/url"
	"strconv"
	"strings"

	"showtrackr/config"
	"showtrackr/models"
	"showtrackr/utils"
)

// Null placeholders used to force "nulls last" ordering through COALESCE.
// Dates are stored as lexically ordered text, so the date placeholders are
// plain strings.
const (
	nullDateAsc    = "9999-12-31"
	nullDateDesc   = "0001-01-01"
	nullYearAsc    = 999999
	nullYearDesc   = -999999
	nullRatingAsc  = 99
	nullRatingDesc = -1
)

// Query is the resolved filter/sort/pagination state for one listing
// request. Every field is already validated; handlers echo it back into the
// controls so the UI stays consistent with what was actually applied.
type Query struct {
	Status    string
	Type      string
	Years     []int
	RatingMin *int
	RatingMax *int
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// ParseQuery reads listing parameters from the request. Invalid values
// never produce an error; they silently fall back to their defaults.
// perPage comes from the caller's session preference and is assumed valid.
func ParseQuery(values url.Values, perPage int) Query {
	q := Query{
		Status:    "all",
		Type:      "all",
		SortBy:    config.DefaultSortColumn,
		SortOrder: config.DefaultSortOrder,
		Page:      1,
		PerPage:   perPage,
	}

	if status := values.Get("filter_status"); status == models.StatusPlanToWatch || status == models.StatusWatched {
		q.Status = status
	}
	if mediaType := values.Get("filter_type"); mediaType == models.TypeMovie || mediaType == models.TypeTV {
		q.Type = mediaType
	}

	for _, raw := range values["filter_years"] {
		if utils.IsDigits(raw) {
			if year, err := strconv.Atoi(raw); err == nil {
				q.Years = append(q.Years, year)
			}
		}
	}

	q.RatingMin = parseRatingBound(values.Get("filter_rating_min"))
	q.RatingMax = parseRatingBound(values.Get("filter_rating_max"))
	if q.RatingMin != nil && q.RatingMax != nil && *q.RatingMin > *q.RatingMax {
		q.RatingMin, q.RatingMax = q.RatingMax, q.RatingMin
	}

	q.Search = strings.TrimSpace(values.Get("search"))

	if sortBy := values.Get("sort"); config.IsValidSortColumn(sortBy) {
		q.SortBy = sortBy
	}
	if order := values.Get("order"); order == "asc" || order == "desc" {
		q.SortOrder = order
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}

	return q
}

func parseRatingBound(raw string) *int {
	raw = strings.TrimSpace(raw)
	if !utils.IsDigits(raw) {
		return nil
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 || val > 10 {
		return nil
	}
	return &val
}

// RatingMinValue formats the lower rating bound for the controls, empty
// when unset.
func (q Query) RatingMinValue() string {
	if q.RatingMin == nil {
		return ""
	}
	return strconv.Itoa(*q.RatingMin)
}

// RatingMaxValue formats the upper rating bound for the controls, empty
// when unset.
func (q Query) RatingMaxValue() string {
	if q.RatingMax == nil {
		return ""
	}
	return strconv.Itoa(*q.RatingMax)
}

// HasYear reports whether year is part of the active year filter, for
// rendering the filter controls.
func (q Query) HasYear(year int) bool {
	for _, y := range q.Years {
		if y == year {
			return true
		}
	}
	return false
}

// whereClause builds the SQL filter for the query.
func (q Query) whereClause() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q.Status != "all" {
		clauses = append(clauses, "status = ?")
		args = append(args, q.Status)
	}
	if q.Type != "all" {
		clauses = append(clauses, "type = ?")
		args = append(args, q.Type)
	}
	if len(q.Years) > 0 {
		placeholders := make([]string, len(q.Years))
		for i, year := range q.Years {
			placeholders[i] = "?"
			args = append(args, year)
		}
		clauses = append(clauses, "year IN ("+strings.Join(placeholders, ", ")+")")
	}
	if q.RatingMin != nil || q.RatingMax != nil {
		// A rating range filter never matches unrated items
		clauses = append(clauses, "rating IS NOT NULL")
		if q.RatingMin != nil {
			clauses = append(clauses, "rating >= ?")
			args = append(args, *q.RatingMin)
		}
		if q.RatingMax != nil {
			clauses = append(clauses, "rating <= ?")
			args = append(args, *q.RatingMax)
		}
	}
	if q.Search != "" {
		clauses = append(clauses, "title LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause builds the ORDER BY for the query. Nullable sort columns are
// coalesced onto sentinel extremes so missing values always land after real
// ones regardless of direction, and ties break on id descending for a
// stable order across requests.
func (q Query) orderClause() string {
	asc := q.SortOrder == "asc"

	var expr string
	switch q.SortBy {
	case "title":
		expr = "LOWER(title)"
	case "year":
		if asc {
			expr = "COALESCE(year, " + strconv.Itoa(nullYearAsc) + ")"
		} else {
			expr = "COALESCE(year, " + strconv.Itoa(nullYearDesc) + ")"
		}
	case "rating":
		if asc {
			expr = "COALESCE(rating, " + strconv.Itoa(nullRatingAsc) + ")"
		} else {
			expr = "COALESCE(rating, " + strconv.Itoa(nullRatingDesc) + ")"
		}
	case "date_added":
		expr = "date_added"
	default: // date_watched
		if asc {
			expr = "COALESCE(date_watched, '" + nullDateAsc + "')"
		} else {
			expr = "COALESCE(date_watched, '" + nullDateDesc + "')"
		}
	}

	direction := "DESC"
	if asc {
		direction = "ASC"
	}
	return " ORDER BY " + expr + " " + direction + ", id DESC"
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// Pagination describes one page of results.
type Pagination struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPage returns the previous page number.
func (p Pagination) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number.
func (p Pagination) NextPage() int { return p.Page + 1 }

func newPagination(page, perPage, total int) Pagination {
	pages := 0
	if total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{Page: page, PerPage: perPage, TotalItems: total, TotalPages: pages}
}
