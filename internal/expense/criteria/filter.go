// Package criteria holds the typed filter set the list and count
// endpoints accept, and the translation of those filters into SQL
// predicates. Each entity exposes a closed enumeration of filterable
// fields; a missing filter means "no constraint from that field".
package criteria

import (
	"time"

	"github.com/shopspring/decimal"
)

// RangeFilter filters an orderable scalar column. Only the populated
// operators contribute predicates; all contributed predicates are ANDed.
type RangeFilter[T any] struct {
	Equals             *T
	NotEquals          *T
	In                 []T
	GreaterThan        *T
	GreaterThanOrEqual *T
	LessThan           *T
	LessThanOrEqual    *T
	// Specified filters on presence: true keeps rows where the column is
	// not null, false keeps rows where it is null.
	Specified *bool
}

// StringFilter filters a string column. Substring matching is
// case-sensitive.
type StringFilter struct {
	Equals         *string
	NotEquals      *string
	In             []string
	Contains       *string
	DoesNotContain *string
	Specified      *bool
}

type TransactionCriteria struct {
	ID         *RangeFilter[int64]
	Amount     *RangeFilter[decimal.Decimal]
	Details    *StringFilter
	Date       *RangeFilter[time.Time]
	CategoryID *RangeFilter[int64]
}

type CategoryCriteria struct {
	ID            *RangeFilter[int64]
	Name          *StringFilter
	TransactionID *RangeFilter[int64]
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Pageable carries page/size/sort for list queries. Page is zero-based.
type Pageable struct {
	Page      int
	Size      int
	Sort      string
	Direction Direction
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func DefaultPageable() Pageable {
	return Pageable{Page: 0, Size: DefaultPageSize, Sort: "id", Direction: Asc}
}

func (p Pageable) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	if p.Size > MaxPageSize {
		return MaxPageSize
	}
	return p.Size
}

func (p Pageable) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return p.Page * p.Limit()
}
