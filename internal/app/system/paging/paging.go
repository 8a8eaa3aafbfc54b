// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// DefaultPageSize is the feed page size used when the caller does not
// supply one and no configured value overrides it.
const DefaultPageSize = 20

// MaxPageSize caps caller-supplied page sizes.
const MaxPageSize = 100

// ParsePage extracts the 1-based "page" query parameter. Missing, junk,
// zero and negative values all clamp to 1: requesting a page before the
// first page means the first page.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePageSize extracts the "page_size" query parameter, falling back to
// def when missing or invalid and clamping the result to [1, MaxPageSize].
func ParsePageSize(r *http.Request, def int) int {
	size := def
	if s := query.Get(r, "page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			size = n
		}
	}
	return ClampSize(size)
}

// ClampSize forces a page size into [1, MaxPageSize]; non-positive sizes
// fall back to DefaultPageSize.
func ClampSize(size int) int {
	if size < 1 {
		return DefaultPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// Offset converts a 1-based page and page size into a document offset.
func Offset(page, pageSize int) int64 {
	if page < 1 {
		page = 1
	}
	return int64(page-1) * int64(pageSize)
}

// HasMore reports whether documents remain beyond the returned page:
// total > offset + returned.
func HasMore(total, offset int64, returned int) bool {
	return total > offset+int64(returned)
}
