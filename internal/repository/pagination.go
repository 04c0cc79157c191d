package repository

// Page is a caller-requested slice of a listing. Sizes are fixed per view by
// the handlers; Number has forgiving semantics: values below 1 and values
// past the final page are clamped, never rejected.
type Page struct {
	Number int
	Size   int
}

type PageInfo struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// paginate clamps the requested page against the row count and returns the
// SQL offset plus the effective page info.
func paginate(total int64, p Page) (int, PageInfo) {
	if p.Size < 1 {
		p.Size = 1
	}

	totalPages := int((total + int64(p.Size) - 1) / int64(p.Size))

	page := p.Number
	if page < 1 {
		page = 1
	}
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}

	info := PageInfo{
		Page:       page,
		PageSize:   p.Size,
		Total:      total,
		TotalPages: totalPages,
	}
	return (page - 1) * p.Size, info
}
