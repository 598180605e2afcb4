package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/errors"
)

// CategoryRef is the shallow view of a category carried on a transaction:
// just enough to render it without pulling in the category's own
// transaction collection.
type CategoryRef struct {
	ID   int64
	Name string
}

type Transaction struct {
	ID        int64
	Amount    decimal.Decimal
	Details   string
	Category  *CategoryRef // nil when the transaction has no category
	CreatedBy string       // user UUID, stamped at insert, immutable
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Transaction) Validate() error {
	if t.Details == "" {
		return errors.NewValidationError("Details must not be empty")
	}
	if len(t.Details) > 255 {
		return errors.NewValidationError("Details must be of length less than 255")
	}
	return nil
}

type TransactionRepository interface {
	FindByID(transactionID int64) (*Transaction, error)
	Create(transaction *Transaction) error
	// CreateWithNewCategory persists a brand new category and the
	// transaction referencing it atomically (the cascade-create path).
	CreateWithNewCategory(transaction *Transaction, category *Category) error
	Update(transaction *Transaction) error
	UpdateWithNewCategory(transaction *Transaction, category *Category) error
	Delete(transactionID int64) error
	FindByCriteria(userID string, c *criteria.TransactionCriteria, page criteria.Pageable) ([]Transaction, error)
	CountByCriteria(userID string, c *criteria.TransactionCriteria) (int64, error)
	TotalAmountByUser(userID string) (decimal.Decimal, error)
}
