package domain

import (
	"math"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage 保证 Offset 不溢出
	MaxPage         = math.MaxInt / MaxPageSize
)

type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest 非数字或 < 1 时回退到默认值
func NewPageRequest(page, size string) PageRequest {
	p := PageRequest{Page: atoiDefault(page, DefaultPage), Size: atoiDefault(size, DefaultPageSize)}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	return p
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.Size }

type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	PageSize    int   `json:"pageSize"`
}

func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return Page[T]{Items: items, TotalItems: total, CurrentPage: req.Page, TotalPages: pages, PageSize: req.Size}
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
