package criteria

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestBuilder_OwnerPredicateAlwaysFirst(t *testing.T) {
	b := NewBuilder("t.created_by", "user-1")
	Range(b, "t.id", &RangeFilter[int64]{Equals: int64Ptr(7)})

	assert.Equal(t, "WHERE t.created_by = $1 AND t.id = $2", b.Where())
	assert.Equal(t, []any{"user-1", int64(7)}, b.Args())
}

func TestBuilder_NoFiltersStillScopedToOwner(t *testing.T) {
	b := NewBuilder("t.created_by", "user-1")

	assert.Equal(t, "WHERE t.created_by = $1", b.Where())
	assert.Equal(t, []any{"user-1"}, b.Args())
}

func TestBuilder_RangeOperators(t *testing.T) {
	b := NewBuilder("t.created_by", "u")
	Range(b, "t.id", &RangeFilter[int64]{
		NotEquals:          int64Ptr(3),
		In:                 []int64{1, 2, 5},
		GreaterThan:        int64Ptr(0),
		GreaterThanOrEqual: int64Ptr(1),
		LessThan:           int64Ptr(100),
		LessThanOrEqual:    int64Ptr(99),
	})

	assert.Equal(t,
		"WHERE t.created_by = $1 AND t.id <> $2 AND t.id IN ($3, $4, $5) AND t.id > $6 AND t.id >= $7 AND t.id < $8 AND t.id <= $9",
		b.Where())
	assert.Equal(t, []any{"u", int64(3), int64(1), int64(2), int64(5), int64(0), int64(1), int64(100), int64(99)}, b.Args())
}

func TestBuilder_DecimalAndTimeRanges(t *testing.T) {
	from := time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC)
	b := NewBuilder("t.created_by", "u")
	Range(b, "t.amount", &RangeFilter[decimal.Decimal]{GreaterThanOrEqual: decPtr("10.50")})
	Range(b, "t.created_at", &RangeFilter[time.Time]{GreaterThan: &from})

	assert.Equal(t, "WHERE t.created_by = $1 AND t.amount >= $2 AND t.created_at > $3", b.Where())
	assert.Len(t, b.Args(), 3)
	assert.True(t, b.Args()[1].(decimal.Decimal).Equal(decimal.RequireFromString("10.50")))
	assert.Equal(t, from, b.Args()[2])
}

func TestBuilder_StringOperators(t *testing.T) {
	b := NewBuilder("t.created_by", "u")
	b.String("t.details", &StringFilter{
		Contains:       strPtr("grocery"),
		DoesNotContain: strPtr("refund"),
	})

	assert.Equal(t, "WHERE t.created_by = $1 AND t.details LIKE $2 AND t.details NOT LIKE $3", b.Where())
	assert.Equal(t, []any{"u", "%grocery%", "%refund%"}, b.Args())
}

func TestBuilder_StringContainsEscapesWildcards(t *testing.T) {
	b := NewBuilder("t.created_by", "u")
	b.String("t.details", &StringFilter{Contains: strPtr("50%_off")})

	assert.Equal(t, []any{"u", `%50\%\_off%`}, b.Args())
}

func TestBuilder_Specified(t *testing.T) {
	b := NewBuilder("t.created_by", "u")
	Range(b, "c.id", &RangeFilter[int64]{Specified: boolPtr(true)})
	b.String("t.details", &StringFilter{Specified: boolPtr(false)})

	assert.Equal(t, "WHERE t.created_by = $1 AND c.id IS NOT NULL AND t.details IS NULL", b.Where())
	assert.Equal(t, []any{"u"}, b.Args())
}

func TestBuilder_NilFiltersContributeNothing(t *testing.T) {
	b := NewBuilder("t.created_by", "u")
	Range[int64](b, "t.id", nil)
	b.String("t.details", nil)
	Range(b, "t.id", &RangeFilter[int64]{})

	assert.Equal(t, "WHERE t.created_by = $1", b.Where())
}

func TestBuilder_AppendArgContinuesNumbering(t *testing.T) {
	b := NewBuilder("t.created_by", "u")
	Range(b, "t.id", &RangeFilter[int64]{Equals: int64Ptr(1)})

	assert.Equal(t, 3, b.NextPlaceholder())
	assert.Equal(t, "$3", b.AppendArg(20))
	assert.Equal(t, "$4", b.AppendArg(0))
	assert.Equal(t, []any{"u", int64(1), 20, 0}, b.Args())
}

func TestPageable_Defaults(t *testing.T) {
	p := Pageable{}
	assert.Equal(t, DefaultPageSize, p.Limit())
	assert.Equal(t, 0, p.Offset())

	p = Pageable{Page: 3, Size: 500}
	assert.Equal(t, MaxPageSize, p.Limit())
	assert.Equal(t, 300, p.Offset())

	p = Pageable{Page: 2, Size: 15}
	assert.Equal(t, 30, p.Offset())
}
