package models

import "time"

type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PaginationQuery struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

type PaginationResult struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int64 `json:"total_pages"`
}

// Normalize clamps page to >= 1 and page size to 1..100 (default 10)
func (q *PaginationQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
}

// Offset returns the row offset of the page
func (q PaginationQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// NewPaginationResult builds the pagination block of list responses
func NewPaginationResult(total int64, q PaginationQuery) PaginationResult {
	return PaginationResult{
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: (total + int64(q.PageSize) - 1) / int64(q.PageSize),
	}
}
