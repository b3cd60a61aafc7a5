package models

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(err string) Response {
	return Response{
		Success: false,
		Error:   err,
	}
}

// Pagination mirrors the paginator metadata the panel scripts expect.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

func NewPagination(page, totalPages int) Pagination {
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}

// Alert is the step outcome box of the public signup flow.
type Alert struct {
	Type     string `json:"type"` // success, info, warning, error
	Title    string `json:"title"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}
