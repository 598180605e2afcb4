package application

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
	"github.com/moneylogger/moneylogger/internal/expense/infrastructure"
	"github.com/moneylogger/moneylogger/internal/log"
)

func newCategoryFixture() (*CategoryService, *infrastructure.MockCategoryRepository, *infrastructure.MockTransactionRepository) {
	categoryRepo := infrastructure.NewMockCategoryRepository()
	transactionRepo := infrastructure.NewMockTransactionRepository(categoryRepo)
	logger := log.New(slog.LevelError)
	return NewCategoryService(categoryRepo, logger), categoryRepo, transactionRepo
}

func domainPage() criteria.Pageable {
	return criteria.DefaultPageable()
}

func TestCategorySave_InsertStampsCreator(t *testing.T) {
	service, repo, _ := newCategoryFixture()

	saved, err := service.Save("user-a", &domain.Category{Name: "Food"})
	assert.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "user-a", saved.CreatedBy)
	assert.Equal(t, "user-a", repo.Categories[saved.ID].CreatedBy)
}

func TestCategorySave_EmptyNameRejected(t *testing.T) {
	service, _, _ := newCategoryFixture()

	_, err := service.Save("user-a", &domain.Category{})
	assert.True(t, financeErrors.IsValidationError(err))
}

func TestCategorySave_UpdateForeignDenied(t *testing.T) {
	service, _, _ := newCategoryFixture()
	saved, err := service.Save("user-a", &domain.Category{Name: "Food"})
	assert.NoError(t, err)

	_, err = service.Save("user-b", &domain.Category{ID: saved.ID, Name: "Mine now"})
	assert.ErrorIs(t, err, financeErrors.ErrAccessDenied)
}

func TestCategorySave_UpdateMissingIsInvalidReference(t *testing.T) {
	service, _, _ := newCategoryFixture()

	_, err := service.Save("user-a", &domain.Category{ID: 77, Name: "Ghost"})
	assert.True(t, financeErrors.IsInvalidReference(err))
}

func TestCategorySave_UpdateKeepsCreator(t *testing.T) {
	service, repo, _ := newCategoryFixture()
	saved, err := service.Save("user-a", &domain.Category{Name: "Food"})
	assert.NoError(t, err)

	updated, err := service.Save("user-a", &domain.Category{ID: saved.ID, Name: "Groceries"})
	assert.NoError(t, err)
	assert.Equal(t, "Groceries", updated.Name)
	assert.Equal(t, "user-a", repo.Categories[saved.ID].CreatedBy)
}

func TestCategoryPartialUpdate_MergesOnlyPresentFields(t *testing.T) {
	service, _, _ := newCategoryFixture()
	saved, err := service.Save("user-a", &domain.Category{Name: "Food"})
	assert.NoError(t, err)

	updated, err := service.PartialUpdate("user-a", saved.ID, CategoryPatch{})
	assert.NoError(t, err)
	assert.Equal(t, "Food", updated.Name)

	name := "Dining"
	updated, err = service.PartialUpdate("user-a", saved.ID, CategoryPatch{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "Dining", updated.Name)
}

func TestCategoryFindOne_OwnershipEnforced(t *testing.T) {
	service, _, _ := newCategoryFixture()
	saved, err := service.Save("user-a", &domain.Category{Name: "Food"})
	assert.NoError(t, err)

	_, err = service.FindOne("user-b", saved.ID)
	assert.ErrorIs(t, err, financeErrors.ErrAccessDenied)

	_, err = service.FindOne("user-a", 404)
	assert.ErrorIs(t, err, financeErrors.ErrCategoryNotFound)

	found, err := service.FindOne("user-a", saved.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Food", found.Name)
}

func TestCategoryDelete_DetachesTransactionsWithoutDeletingThem(t *testing.T) {
	service, categoryRepo, transactionRepo := newCategoryFixture()
	saved, err := service.Save("user-a", &domain.Category{Name: "Food"})
	assert.NoError(t, err)

	for _, details := range []string{"lunch", "dinner"} {
		err := transactionRepo.Create(&domain.Transaction{
			Amount:    amount("10.00"),
			Details:   details,
			Category:  &domain.CategoryRef{ID: saved.ID, Name: "Food"},
			CreatedBy: "user-a",
		})
		assert.NoError(t, err)
	}

	assert.NoError(t, service.Delete("user-a", saved.ID))
	assert.Empty(t, categoryRepo.Categories)
	assert.Len(t, transactionRepo.Transactions, 2)
	for _, transaction := range transactionRepo.Transactions {
		assert.Nil(t, transaction.Category)
	}
}

func TestCategoryDelete_OwnershipEnforced(t *testing.T) {
	service, _, _ := newCategoryFixture()
	saved, err := service.Save("user-a", &domain.Category{Name: "Food"})
	assert.NoError(t, err)

	assert.ErrorIs(t, service.Delete("user-b", saved.ID), financeErrors.ErrAccessDenied)
	assert.ErrorIs(t, service.Delete("user-a", 404), financeErrors.ErrCategoryNotFound)
}

func TestCategoryFindByCriteria_ScopedToOwner(t *testing.T) {
	service, _, _ := newCategoryFixture()
	_, err := service.Save("user-a", &domain.Category{Name: "Mine"})
	assert.NoError(t, err)
	_, err = service.Save("user-b", &domain.Category{Name: "Theirs"})
	assert.NoError(t, err)

	mine, err := service.FindByCriteria("user-a", nil, domainPage())
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Name)

	count, err := service.CountByCriteria("user-b", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
