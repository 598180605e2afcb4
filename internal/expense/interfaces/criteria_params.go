package interfaces

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
)

// Query parameters follow the field.operator=value convention, e.g.
// amount.greaterThan=100&details.contains=rent&categoryId.specified=false.
// Unknown parameters are ignored; a malformed value is a validation error.

func parseTransactionCriteria(query url.Values) (*criteria.TransactionCriteria, error) {
	c := &criteria.TransactionCriteria{}
	var err error
	if c.ID, err = parseInt64Filter(query, "id"); err != nil {
		return nil, err
	}
	if c.Amount, err = parseDecimalFilter(query, "amount"); err != nil {
		return nil, err
	}
	if c.Details, err = parseStringFilter(query, "details"); err != nil {
		return nil, err
	}
	if c.Date, err = parseTimeFilter(query, "date"); err != nil {
		return nil, err
	}
	if c.CategoryID, err = parseInt64Filter(query, "categoryId"); err != nil {
		return nil, err
	}
	return c, nil
}

func parseCategoryCriteria(query url.Values) (*criteria.CategoryCriteria, error) {
	c := &criteria.CategoryCriteria{}
	var err error
	if c.ID, err = parseInt64Filter(query, "id"); err != nil {
		return nil, err
	}
	if c.Name, err = parseStringFilter(query, "name"); err != nil {
		return nil, err
	}
	if c.TransactionID, err = parseInt64Filter(query, "transactionId"); err != nil {
		return nil, err
	}
	return c, nil
}

func parsePageable(query url.Values) (criteria.Pageable, error) {
	pageable := criteria.DefaultPageable()
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return pageable, financeErrors.NewValidationError(fmt.Sprintf("Invalid page number: %q", raw))
		}
		pageable.Page = page
	}
	if raw := query.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return pageable, financeErrors.NewValidationError(fmt.Sprintf("Invalid page size: %q", raw))
		}
		pageable.Size = size
	}
	if raw := query.Get("sort"); raw != "" {
		field, direction, found := strings.Cut(raw, ",")
		pageable.Sort = field
		if found {
			switch strings.ToLower(direction) {
			case "asc":
				pageable.Direction = criteria.Asc
			case "desc":
				pageable.Direction = criteria.Desc
			default:
				return pageable, financeErrors.NewValidationError(fmt.Sprintf("Invalid sort direction: %q", direction))
			}
		}
	}
	return pageable, nil
}

func parseRangeFilter[T any](query url.Values, field string, parse func(string) (T, error)) (*criteria.RangeFilter[T], error) {
	filter := &criteria.RangeFilter[T]{}
	present := false

	assign := func(operator string, target **T) error {
		raw := query.Get(field + "." + operator)
		if raw == "" {
			return nil
		}
		value, err := parse(raw)
		if err != nil {
			return badFilterValue(field, operator, raw)
		}
		*target = &value
		present = true
		return nil
	}

	if err := assign("equals", &filter.Equals); err != nil {
		return nil, err
	}
	if err := assign("notEquals", &filter.NotEquals); err != nil {
		return nil, err
	}
	if err := assign("greaterThan", &filter.GreaterThan); err != nil {
		return nil, err
	}
	if err := assign("greaterThanOrEqual", &filter.GreaterThanOrEqual); err != nil {
		return nil, err
	}
	if err := assign("lessThan", &filter.LessThan); err != nil {
		return nil, err
	}
	if err := assign("lessThanOrEqual", &filter.LessThanOrEqual); err != nil {
		return nil, err
	}
	if raw := query.Get(field + ".in"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			value, err := parse(strings.TrimSpace(part))
			if err != nil {
				return nil, badFilterValue(field, "in", part)
			}
			filter.In = append(filter.In, value)
		}
		present = true
	}
	if raw := query.Get(field + ".specified"); raw != "" {
		specified, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, badFilterValue(field, "specified", raw)
		}
		filter.Specified = &specified
		present = true
	}

	if !present {
		return nil, nil
	}
	return filter, nil
}

func parseStringFilter(query url.Values, field string) (*criteria.StringFilter, error) {
	filter := &criteria.StringFilter{}
	present := false

	assign := func(operator string, target **string) {
		if raw := query.Get(field + "." + operator); raw != "" {
			value := raw
			*target = &value
			present = true
		}
	}

	assign("equals", &filter.Equals)
	assign("notEquals", &filter.NotEquals)
	assign("contains", &filter.Contains)
	assign("doesNotContain", &filter.DoesNotContain)
	if raw := query.Get(field + ".in"); raw != "" {
		filter.In = strings.Split(raw, ",")
		present = true
	}
	if raw := query.Get(field + ".specified"); raw != "" {
		specified, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, badFilterValue(field, "specified", raw)
		}
		filter.Specified = &specified
		present = true
	}

	if !present {
		return nil, nil
	}
	return filter, nil
}

func parseInt64Filter(query url.Values, field string) (*criteria.RangeFilter[int64], error) {
	return parseRangeFilter(query, field, func(raw string) (int64, error) {
		return strconv.ParseInt(raw, 10, 64)
	})
}

func parseDecimalFilter(query url.Values, field string) (*criteria.RangeFilter[decimal.Decimal], error) {
	return parseRangeFilter(query, field, decimal.NewFromString)
}

func parseTimeFilter(query url.Values, field string) (*criteria.RangeFilter[time.Time], error) {
	return parseRangeFilter(query, field, func(raw string) (time.Time, error) {
		return time.Parse(time.RFC3339, raw)
	})
}

func badFilterValue(field, operator, raw string) error {
	return financeErrors.NewValidationError(fmt.Sprintf("Invalid value %q for filter %s.%s", raw, field, operator))
}
