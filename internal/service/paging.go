package service

// pageSize matches the panel listings: 15 rows per page.
const pageSize = 15

// clampPage normalizes a requested page the way the panel paginator does:
// anything below 1 becomes the first page, anything past the end becomes the
// last page. Returns the effective page and the total page count (at least 1).
func clampPage(page int, total int64, perPage int) (int, int) {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return page, totalPages
}
