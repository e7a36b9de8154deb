package pagination

// Page describes one window over a result set.
type Page struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Paginate computes the window metadata for a result set of the given size.
// TotalPages is ceil(total/perPage); an empty set has zero pages and neither
// a next nor a previous page.
func Paginate(total, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	return Page{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

// Bounds returns the [start, end) slice indexes for the page, clamped to the
// set size. A page past the end yields an empty range.
func Bounds(total, page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	start := (page - 1) * perPage
	if start > total {
		return total, total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}
