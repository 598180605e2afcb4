package criteria

import (
	"fmt"
	"strings"
)

// Builder collects WHERE conjuncts with positional args. It is seeded
// with the owner predicate, so every query built through it is scoped to
// the calling user's rows before any optional filter applies.
type Builder struct {
	conds []string
	args  []any
}

// NewBuilder seeds the builder with "ownerColumn = userID" as the first
// conjunct. The argument placeholder numbering starts at $1.
func NewBuilder(ownerColumn, userID string) *Builder {
	b := &Builder{}
	b.conds = append(b.conds, fmt.Sprintf("%s = %s", ownerColumn, b.bind(userID)))
	return b
}

func (b *Builder) bind(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *Builder) add(cond string) {
	b.conds = append(b.conds, cond)
}

// Where renders the collected conjuncts as a WHERE clause. There is
// always at least the owner conjunct.
func (b *Builder) Where() string {
	return "WHERE " + strings.Join(b.conds, " AND ")
}

func (b *Builder) Args() []any {
	return b.args
}

// NextPlaceholder returns the placeholder the next bound argument would
// get, for callers appending their own fragments (LIMIT/OFFSET).
func (b *Builder) NextPlaceholder() int {
	return len(b.args) + 1
}

func (b *Builder) AppendArg(v any) string {
	return b.bind(v)
}

// Range appends the predicates of a RangeFilter against column. A nil
// filter contributes nothing.
func Range[T any](b *Builder, column string, f *RangeFilter[T]) {
	if f == nil {
		return
	}
	if f.Equals != nil {
		b.add(fmt.Sprintf("%s = %s", column, b.bind(*f.Equals)))
	}
	if f.NotEquals != nil {
		b.add(fmt.Sprintf("%s <> %s", column, b.bind(*f.NotEquals)))
	}
	if len(f.In) > 0 {
		placeholders := make([]string, len(f.In))
		for i, v := range f.In {
			placeholders[i] = b.bind(v)
		}
		b.add(fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}
	if f.GreaterThan != nil {
		b.add(fmt.Sprintf("%s > %s", column, b.bind(*f.GreaterThan)))
	}
	if f.GreaterThanOrEqual != nil {
		b.add(fmt.Sprintf("%s >= %s", column, b.bind(*f.GreaterThanOrEqual)))
	}
	if f.LessThan != nil {
		b.add(fmt.Sprintf("%s < %s", column, b.bind(*f.LessThan)))
	}
	if f.LessThanOrEqual != nil {
		b.add(fmt.Sprintf("%s <= %s", column, b.bind(*f.LessThanOrEqual)))
	}
	appendSpecified(b, column, f.Specified)
}

// String appends the predicates of a StringFilter against column.
// Contains and DoesNotContain use LIKE, which is case-sensitive in
// postgres; the value is escaped so user input cannot inject wildcards.
func (b *Builder) String(column string, f *StringFilter) {
	if f == nil {
		return
	}
	if f.Equals != nil {
		b.add(fmt.Sprintf("%s = %s", column, b.bind(*f.Equals)))
	}
	if f.NotEquals != nil {
		b.add(fmt.Sprintf("%s <> %s", column, b.bind(*f.NotEquals)))
	}
	if len(f.In) > 0 {
		placeholders := make([]string, len(f.In))
		for i, v := range f.In {
			placeholders[i] = b.bind(v)
		}
		b.add(fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ", ")))
	}
	if f.Contains != nil {
		b.add(fmt.Sprintf("%s LIKE %s", column, b.bind("%"+escapeLike(*f.Contains)+"%")))
	}
	if f.DoesNotContain != nil {
		b.add(fmt.Sprintf("%s NOT LIKE %s", column, b.bind("%"+escapeLike(*f.DoesNotContain)+"%")))
	}
	appendSpecified(b, column, f.Specified)
}

func appendSpecified(b *Builder, column string, specified *bool) {
	if specified == nil {
		return
	}
	if *specified {
		b.add(fmt.Sprintf("%s IS NOT NULL", column))
	} else {
		b.add(fmt.Sprintf("%s IS NULL", column))
	}
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
