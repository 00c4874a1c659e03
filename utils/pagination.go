package utils

const pageSizeDefault = 20
const pageSizeMax = 100

// Page is a resolved pagination window
type Page struct {
	Page   int
	Offset int
	Limit  int
}

// GetPaginationParams resolves a 1-based page number and a page size into an
// offset and limit. Missing or invalid values fall back to the first page of
// the default size; the size is capped at a maximum value.
func GetPaginationParams(page *int, limit *int) Page {
	p := Page{Page: 1, Limit: pageSizeDefault}

	if page != nil && *page > 0 {
		p.Page = *page
	}

	if limit != nil && *limit > 0 {
		p.Limit = min(*limit, pageSizeMax)
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// TotalPages returns how many pages of size limit hold total items
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
