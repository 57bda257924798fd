package pkg

import (
	"cmp"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/rentfront/internal/domain"
	"gorm.io/gorm"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
	defaultSort     = "created_at:desc"

	// maxFilterLength bounds a single filter or search value.
	maxFilterLength = 100

	// collapseThreshold is the page count above which the page list collapses
	// with ellipsis markers.
	collapseThreshold = 5
)

// reservedParams are the query parameters that never become filters.
var reservedParams = map[string]bool{"page": true, "page_size": true, "sort": true}

var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest reads page, page_size and sort from the query string.
// Every other non-empty parameter becomes a filter, trimmed and cut to
// maxFilterLength runes.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	query := c.Request.URL.Query()
	req := domain.PageRequest{
		Page:     queryInt(query, "page", defaultPage),
		PageSize: min(queryInt(query, "page_size", defaultPageSize), maxPageSize),
		Sort:     cmp.Or(strings.TrimSpace(query.Get("sort")), defaultSort),
		Filter:   make(map[string]string),
	}

	for key, values := range query {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[0])
		if r := []rune(value); len(r) > maxFilterLength {
			value = string(r[:maxFilterLength])
		}
		if value != "" {
			req.Filter[key] = value
		}
	}
	return req
}

// queryInt returns the positive integer in query[key], else def.
func queryInt(query url.Values, key string, def int) int {
	n, err := strconv.Atoi(query.Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Paginate is a GORM scope applying the request's LIMIT and OFFSET.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((req.Page - 1) * req.PageSize).Limit(req.PageSize)
	}
}

// Sort is a GORM scope ordering by req.Sort, written "column:asc" or
// "column:desc". Columns outside allowed are ignored.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field, direction, ok := strings.Cut(req.Sort, ":")
		if !ok {
			return db
		}
		field = strings.TrimSpace(field)
		direction = strings.ToLower(strings.TrimSpace(direction))
		if (direction != "asc" && direction != "desc") || !isAllowed(field, allowed) {
			return db
		}
		return db.Order(field + " " + direction)
	}
}

// Filter is a GORM scope adding a WHERE clause per filter whose column is in
// allowed. A key with the "__like" suffix matches a substring, with LIKE
// wildcards in the value taken literally; any other key matches exactly.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			if field, like := strings.CutSuffix(key, "__like"); like {
				if isAllowed(field, allowed) {
					db = db.Where(field+` LIKE ? ESCAPE '\'`, "%"+EscapeLike(value)+"%")
				}
				continue
			}
			if isAllowed(key, allowed) {
				db = db.Where(key+" = ?", value)
			}
		}
		return db
	}
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally inside a
// pattern declared with ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NewPageResult creates a PageResult with computed TotalPages.
func NewPageResult[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	if items == nil {
		items = []T{}
	}

	return &domain.PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: TotalPages(total, req.PageSize),
	}
}

// TotalPages returns ceil(total/pageSize), or 0 for a non-positive page size.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

// ClampPage moves page into [1, max(totalPages, 1)]. Navigation handlers call
// it before fetching; VisiblePages and VisibleRange assume a clamped page.
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// PageItem is one entry of a rendered page list: a page number or an ellipsis.
type PageItem struct {
	Number   int
	Ellipsis bool
}

// VisiblePages computes the page numbers to render for current of total.
// Up to five pages are listed in full. Beyond that the first and last pages
// are always present, the neighbours of current form the middle block, and an
// ellipsis marks each gap: before the block when current > 3 and after it when
// current < total-2. current is not corrected when out of range.
func VisiblePages(current, total int) []PageItem {
	if total <= collapseThreshold {
		items := make([]PageItem, 0, max(total, 0))
		for i := 1; i <= total; i++ {
			items = append(items, PageItem{Number: i})
		}
		return items
	}

	items := []PageItem{{Number: 1}}
	if current > 3 {
		items = append(items, PageItem{Ellipsis: true})
	}
	start := max(2, current-1)
	end := min(total-1, current+1)
	for i := start; i <= end; i++ {
		items = append(items, PageItem{Number: i})
	}
	if current < total-2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	return append(items, PageItem{Number: total})
}

// VisibleRange returns the 1-based indexes of the first and last items shown
// on page. When the page holds no items last < first, e.g. (1, 0).
func VisibleRange(page, pageSize int, totalItems int64) (first, last int64) {
	first = int64(page-1)*int64(pageSize) + 1
	last = min(int64(page)*int64(pageSize), totalItems)
	return first, last
}

// PageLink is a PageItem ready for a template.
type PageLink struct {
	PageItem
	URL     string
	Current bool
}

// PageView is the template model of a pagination bar.
type PageView struct {
	Links      []PageLink
	Page       int
	TotalPages int
	Total      int64
	First      int64
	Last       int64
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

// Empty reports whether the range shows no items.
func (v PageView) Empty() bool {
	return v.Last < v.First
}

// NewPageView builds the pagination bar for result. Links keep every query
// parameter in query except page, which is replaced per link.
func NewPageView[T any](result *domain.PageResult[T], baseURL string, query url.Values) PageView {
	if result == nil {
		return PageView{}
	}
	first, last := VisibleRange(result.Page, result.PageSize, result.Total)
	view := PageView{
		Page:       result.Page,
		TotalPages: result.TotalPages,
		Total:      result.Total,
		First:      first,
		Last:       last,
		HasPrev:    result.Page > 1,
		HasNext:    result.Page < result.TotalPages,
	}

	for _, item := range VisiblePages(result.Page, result.TotalPages) {
		link := PageLink{PageItem: item}
		if !item.Ellipsis {
			link.URL = pageURL(baseURL, query, item.Number)
			link.Current = item.Number == result.Page
		}
		view.Links = append(view.Links, link)
	}
	if view.HasPrev {
		view.PrevURL = pageURL(baseURL, query, result.Page-1)
	}
	if view.HasNext {
		view.NextURL = pageURL(baseURL, query, result.Page+1)
	}
	return view
}

func pageURL(baseURL string, query url.Values, page int) string {
	q := url.Values{}
	for k, v := range query {
		if k == "page" {
			continue
		}
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	return baseURL + "?" + q.Encode()
}

// isAllowed reports whether field is a plain identifier listed in allowed.
func isAllowed(field string, allowed []string) bool {
	return validFieldName.MatchString(field) && slices.Contains(allowed, field)
}
