package infrastructure

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
)

// In-memory repositories for service-level tests. They honor ids,
// ownership fields and the detach-on-delete contract; criteria filtering
// beyond the owner scope is exercised against a real database in the
// integration tests.

type MockCategoryRepository struct {
	Categories   map[int64]domain.Category
	Transactions *MockTransactionRepository
	nextID       int64
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[int64]domain.Category)}
}

func (m *MockCategoryRepository) FindByID(categoryID int64) (*domain.Category, error) {
	category, ok := m.Categories[categoryID]
	if !ok {
		return nil, financeErrors.ErrCategoryNotFound
	}
	return &category, nil
}

func (m *MockCategoryRepository) Create(category *domain.Category) error {
	m.nextID++
	category.ID = m.nextID
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = *category
	return nil
}

func (m *MockCategoryRepository) Update(category *domain.Category) error {
	stored, ok := m.Categories[category.ID]
	if !ok {
		return financeErrors.ErrCategoryNotFound
	}
	category.CreatedBy = stored.CreatedBy
	category.CreatedAt = stored.CreatedAt
	category.UpdatedAt = time.Now().UTC()
	m.Categories[category.ID] = *category
	return nil
}

func (m *MockCategoryRepository) DeleteAndDetach(categoryID int64) error {
	if _, ok := m.Categories[categoryID]; !ok {
		return financeErrors.ErrCategoryNotFound
	}
	delete(m.Categories, categoryID)
	if m.Transactions != nil {
		for id, transaction := range m.Transactions.Transactions {
			if transaction.Category != nil && transaction.Category.ID == categoryID {
				transaction.Category = nil
				m.Transactions.Transactions[id] = transaction
			}
		}
	}
	return nil
}

func (m *MockCategoryRepository) FindByCriteria(userID string, _ *criteria.CategoryCriteria, page criteria.Pageable) ([]domain.Category, error) {
	var categories []domain.Category
	for _, category := range m.Categories {
		if category.CreatedBy == userID {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return paginate(categories, page), nil
}

func (m *MockCategoryRepository) CountByCriteria(userID string, _ *criteria.CategoryCriteria) (int64, error) {
	var count int64
	for _, category := range m.Categories {
		if category.CreatedBy == userID {
			count++
		}
	}
	return count, nil
}

type MockTransactionRepository struct {
	Transactions map[int64]domain.Transaction
	Categories   *MockCategoryRepository
	nextID       int64
}

func NewMockTransactionRepository(categories *MockCategoryRepository) *MockTransactionRepository {
	m := &MockTransactionRepository{
		Transactions: make(map[int64]domain.Transaction),
		Categories:   categories,
	}
	if categories != nil {
		categories.Transactions = m
	}
	return m
}

func (m *MockTransactionRepository) FindByID(transactionID int64) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[transactionID]
	if !ok {
		return nil, financeErrors.ErrTransactionNotFound
	}
	return &transaction, nil
}

func (m *MockTransactionRepository) Create(transaction *domain.Transaction) error {
	m.nextID++
	transaction.ID = m.nextID
	transaction.CreatedAt = time.Now().UTC()
	transaction.UpdatedAt = transaction.CreatedAt
	m.Transactions[transaction.ID] = *transaction
	return nil
}

func (m *MockTransactionRepository) CreateWithNewCategory(transaction *domain.Transaction, category *domain.Category) error {
	if err := m.Categories.Create(category); err != nil {
		return err
	}
	transaction.Category = &domain.CategoryRef{ID: category.ID, Name: category.Name}
	return m.Create(transaction)
}

func (m *MockTransactionRepository) Update(transaction *domain.Transaction) error {
	stored, ok := m.Transactions[transaction.ID]
	if !ok {
		return financeErrors.ErrTransactionNotFound
	}
	transaction.CreatedBy = stored.CreatedBy
	transaction.CreatedAt = stored.CreatedAt
	transaction.UpdatedAt = time.Now().UTC()
	m.Transactions[transaction.ID] = *transaction
	return nil
}

func (m *MockTransactionRepository) UpdateWithNewCategory(transaction *domain.Transaction, category *domain.Category) error {
	if err := m.Categories.Create(category); err != nil {
		return err
	}
	transaction.Category = &domain.CategoryRef{ID: category.ID, Name: category.Name}
	return m.Update(transaction)
}

func (m *MockTransactionRepository) Delete(transactionID int64) error {
	if _, ok := m.Transactions[transactionID]; !ok {
		return financeErrors.ErrTransactionNotFound
	}
	delete(m.Transactions, transactionID)
	return nil
}

func (m *MockTransactionRepository) FindByCriteria(userID string, _ *criteria.TransactionCriteria, page criteria.Pageable) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	for _, transaction := range m.Transactions {
		if transaction.CreatedBy == userID {
			transactions = append(transactions, transaction)
		}
	}
	sort.Slice(transactions, func(i, j int) bool { return transactions[i].ID < transactions[j].ID })
	return paginate(transactions, page), nil
}

func (m *MockTransactionRepository) CountByCriteria(userID string, _ *criteria.TransactionCriteria) (int64, error) {
	var count int64
	for _, transaction := range m.Transactions {
		if transaction.CreatedBy == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockTransactionRepository) TotalAmountByUser(userID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, transaction := range m.Transactions {
		if transaction.CreatedBy == userID {
			total = total.Add(transaction.Amount)
		}
	}
	return total, nil
}

func paginate[T any](items []T, page criteria.Pageable) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	end := offset + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
