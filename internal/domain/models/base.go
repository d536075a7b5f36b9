package models

// PaginationQuery is the common pagination input shape for list endpoints
type PaginationQuery struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// PaginationResult is the common pagination output shape for list endpoints
type PaginationResult struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// NewPaginationResult creates a new pagination result object
func NewPaginationResult(total int64, limit, offset int) *PaginationResult {
	return &PaginationResult{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}

// Normalize applies the default page size and clamps negative offsets
func (q *PaginationQuery) Normalize() {
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}
