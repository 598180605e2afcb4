package interfaces

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
)

// CategoryRefDTO is the shallow category representation nested inside a
// transaction: id and name only, so serialization never cycles back into
// the category's transactions.
type CategoryRefDTO struct {
	ID   *int64 `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type TransactionDTO struct {
	ID        *int64           `json:"id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Details   *string          `json:"details,omitempty"`
	Category  *CategoryRefDTO  `json:"category,omitempty"`
	CreatedAt *time.Time       `json:"createdAt,omitempty"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

type CategoryDTO struct {
	ID        *int64     `json:"id,omitempty"`
	Name      *string    `json:"name,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func toTransactionEntity(dto *TransactionDTO) (*domain.Transaction, error) {
	if dto.Amount == nil {
		return nil, financeErrors.NewValidationError("Amount is required")
	}
	if dto.Details == nil {
		return nil, financeErrors.NewValidationError("Details are required")
	}
	transaction := &domain.Transaction{
		Amount:  *dto.Amount,
		Details: *dto.Details,
	}
	if dto.ID != nil {
		transaction.ID = *dto.ID
	}
	if dto.Category != nil {
		ref := &domain.CategoryRef{Name: dto.Category.Name}
		if dto.Category.ID != nil {
			ref.ID = *dto.Category.ID
		}
		transaction.Category = ref
	}
	return transaction, nil
}

func toTransactionDTO(transaction *domain.Transaction) TransactionDTO {
	id := transaction.ID
	amount := transaction.Amount
	details := transaction.Details
	createdAt := transaction.CreatedAt
	updatedAt := transaction.UpdatedAt
	dto := TransactionDTO{
		ID:        &id,
		Amount:    &amount,
		Details:   &details,
		CreatedAt: &createdAt,
		UpdatedAt: &updatedAt,
	}
	if transaction.Category != nil {
		categoryID := transaction.Category.ID
		dto.Category = &CategoryRefDTO{ID: &categoryID, Name: transaction.Category.Name}
	}
	return dto
}

func toTransactionDTOs(transactions []domain.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(transactions))
	for i := range transactions {
		dtos[i] = toTransactionDTO(&transactions[i])
	}
	return dtos
}

func toCategoryEntity(dto *CategoryDTO) (*domain.Category, error) {
	if dto.Name == nil {
		return nil, financeErrors.NewValidationError("Name is required")
	}
	category := &domain.Category{Name: *dto.Name}
	if dto.ID != nil {
		category.ID = *dto.ID
	}
	return category, nil
}

func toCategoryDTO(category *domain.Category) CategoryDTO {
	id := category.ID
	name := category.Name
	createdAt := category.CreatedAt
	updatedAt := category.UpdatedAt
	return CategoryDTO{ID: &id, Name: &name, CreatedAt: &createdAt, UpdatedAt: &updatedAt}
}

func toCategoryDTOs(categories []domain.Category) []CategoryDTO {
	dtos := make([]CategoryDTO, len(categories))
	for i := range categories {
		dtos[i] = toCategoryDTO(&categories[i])
	}
	return dtos
}
