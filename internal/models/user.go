package models

// UserRole represents the roles carried in access tokens.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleCoach   UserRole = "COACH"
	RoleStudent UserRole = "STUDENT"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NewPagination clamps page and size to sane values.
func NewPagination(page, size, total int) *Pagination {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}

// Offset returns the index of the first item of the page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
