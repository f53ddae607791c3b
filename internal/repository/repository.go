// Package repository wraps the gorm handle shared by the services.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store is the shared handle to the relational store. Inside Transaction
// the handle is bound to the open transaction.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns a session bound to ctx. Soft-deleted rows are excluded unless
// the caller opts out with Unscoped.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn atomically. Any error returned by fn rolls back every
// write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Page selects a window of a list query.
type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Paginate is a gorm scope applying the page window.
func Paginate(p Page) func(*gorm.DB) *gorm.DB {
	p = p.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((p.Number - 1) * p.Size).Limit(p.Size)
	}
}

// List is a page of results plus the total row count.
type List[T any] struct {
	Count   int64 `json:"count"`
	Page    int   `json:"page"`
	Results []T   `json:"results"`
}

// FindPage counts and fetches one page of query into a List.
func FindPage[T any](query *gorm.DB, p Page, order string) (*List[T], error) {
	p = p.Normalize()
	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, TranslateError(err)
	}
	results := make([]T, 0)
	if err := query.Session(&gorm.Session{}).Order(order).Scopes(Paginate(p)).Find(&results).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &List[T]{Count: count, Page: p.Number, Results: results}, nil
}
