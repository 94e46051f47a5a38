package viewmodel

// Pagination contains pagination metadata for list views.
type Pagination struct {
	Page       int
	PageSize   int
	HasPrev    bool
	HasNext    bool
	StartIndex int
	EndIndex   int
	TotalCount int
	PrevURL    string
	NextURL    string
}

// Paginate slices items to page (1-based) of size pageSize and fills in everything but
// the URLs. Out-of-range pages yield an empty slice.
func Paginate[T any](items []T, page, pageSize int) ([]T, Pagination) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	p := Pagination{Page: page, PageSize: pageSize, TotalCount: len(items), HasPrev: page > 1}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}, p
	}
	end := min(start+pageSize, len(items))
	p.HasNext = end < len(items)
	p.StartIndex = start + 1
	p.EndIndex = end
	return items[start:end], p
}
