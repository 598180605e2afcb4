package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moneylogger/moneylogger/internal/expense/domain"
)

func TestCategoryIDArg(t *testing.T) {
	t.Run("no category stores NULL", func(t *testing.T) {
		assert.Nil(t, categoryIDArg(&domain.Transaction{Details: "cash withdrawal"}))
	})

	t.Run("category stores its id", func(t *testing.T) {
		transaction := &domain.Transaction{
			Details:  "groceries",
			Category: &domain.CategoryRef{ID: 42, Name: "Food"},
		}
		assert.Equal(t, int64(42), categoryIDArg(transaction))
	})
}
