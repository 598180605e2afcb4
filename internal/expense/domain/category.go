package domain

import (
	"time"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/errors"
)

type Category struct {
	ID        int64
	Name      string
	CreatedBy string // user UUID, stamped at insert, immutable
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return errors.NewValidationError("Name must not be empty")
	}
	if len(c.Name) > 255 {
		return errors.NewValidationError("Name must be of length less than 255")
	}
	return nil
}

type CategoryRepository interface {
	FindByID(categoryID int64) (*Category, error)
	Create(category *Category) error
	Update(category *Category) error
	// DeleteAndDetach removes the category and clears the category reference
	// on all transactions pointing at it, in one database transaction. The
	// transactions themselves are never deleted.
	DeleteAndDetach(categoryID int64) error
	FindByCriteria(userID string, c *criteria.CategoryCriteria, page criteria.Pageable) ([]Category, error)
	CountByCriteria(userID string, c *criteria.CategoryCriteria) (int64, error)
}
