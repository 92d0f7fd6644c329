package repository

import "gorm.io/gorm"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is a 1-based page with PageSize rows; zero values mean defaults.
type PageRequest struct {
	Page     int
	PageSize int
}

type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func (req PageRequest) clamp() PageRequest {
	req.Page = max(req.Page, DefaultPage)
	switch {
	case req.PageSize < 1:
		req.PageSize = DefaultPageSize
	case req.PageSize > MaxPageSize:
		req.PageSize = MaxPageSize
	}
	return req
}

func pageCount(total int64, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) != 0 {
		pages++
	}
	return int(pages)
}

// findPage counts the rows matched by q and loads one page of them. The
// fetch scopes apply to the row query only, so preloads and ordering stay
// out of the count.
func findPage[T any](q *gorm.DB, req PageRequest, fetch ...func(*gorm.DB) *gorm.DB) (PageResult[T], error) {
	req = req.clamp()
	q = q.Session(&gorm.Session{})
	out := PageResult[T]{Page: req.Page, PageSize: req.PageSize, Items: []T{}}
	if err := q.Count(&out.Total).Error; err != nil {
		return PageResult[T]{}, err
	}
	if out.Total > 0 {
		err := q.Scopes(fetch...).
			Offset((req.Page - 1) * req.PageSize).
			Limit(req.PageSize).
			Find(&out.Items).Error
		if err != nil {
			return PageResult[T]{}, err
		}
	}
	out.TotalPages = pageCount(out.Total, req.PageSize)
	return out, nil
}

func ordered(clauses ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range clauses {
			db = db.Order(c)
		}
		return db
	}
}

func withMedias(db *gorm.DB) *gorm.DB {
	return db.Preload("Medias", ordered("created_at ASC"))
}
