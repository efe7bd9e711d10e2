package models

type PageQuery struct {
	Page   int
	Limit  int
	Filter string
}

// Skip is the number of records before the requested page.
func (q PageQuery) Skip() int64 {
	return int64(q.Page-1) * int64(q.Limit)
}

type PageStats struct {
	TotalPages      int64 `json:"totalPages"`
	TotalCount      int64 `json:"totalCount"`
	CurrentPage     int   `json:"currentPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

type Page[T any] struct {
	Items []T       `json:"items"`
	Stats PageStats `json:"stats"`
}

func NewPageStats(q PageQuery, totalCount int64) PageStats {
	var totalPages int64
	if q.Limit > 0 {
		totalPages = (totalCount + int64(q.Limit) - 1) / int64(q.Limit)
	}
	return PageStats{
		TotalPages:      totalPages,
		TotalCount:      totalCount,
		CurrentPage:     q.Page,
		HasNextPage:     int64(q.Page) < totalPages,
		HasPreviousPage: q.Page > 1,
	}
}
