package application

import (
	goerrors "errors"

	"github.com/shopspring/decimal"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
	"github.com/moneylogger/moneylogger/internal/log"
)

type TransactionService struct {
	repo         domain.TransactionRepository
	categoryRepo domain.CategoryRepository
	logger       *log.Logger
}

func NewTransactionService(repo domain.TransactionRepository, categoryRepo domain.CategoryRepository, logger *log.Logger) *TransactionService {
	return &TransactionService{
		repo:         repo,
		categoryRepo: categoryRepo,
		logger:       logger.WithComponent(log.ComponentExpense),
	}
}

// TransactionPatch carries the fields a merge-patch may overwrite. Nil
// fields leave the stored value untouched. A category reference in a
// patch must carry an id; patches never cascade-create.
type TransactionPatch struct {
	Amount   *decimal.Decimal
	Details  *string
	Category *domain.CategoryRef
}

// Save persists the transaction. A nested category with an id is
// attached after its owner check; one without an id is created first,
// stamped with the caller's identity, in the same database transaction.
func (s *TransactionService) Save(userID string, transaction *domain.Transaction) (*domain.Transaction, error) {
	s.logger.Debug("request to save transaction", "user_id", userID, "transaction_id", transaction.ID)
	if err := transaction.Validate(); err != nil {
		return nil, err
	}

	if err := s.guardCategoryRef(userID, transaction.Category); err != nil {
		return nil, err
	}

	if transaction.ID != 0 {
		stored, err := s.guardStored(userID, transaction.ID)
		if err != nil {
			return nil, err
		}
		transaction.CreatedBy = stored.CreatedBy
		transaction.CreatedAt = stored.CreatedAt
	} else {
		transaction.CreatedBy = userID
	}

	if transaction.Category != nil && transaction.Category.ID == 0 {
		newCategory := &domain.Category{Name: transaction.Category.Name, CreatedBy: userID}
		if err := newCategory.Validate(); err != nil {
			return nil, err
		}
		if transaction.ID != 0 {
			if err := s.repo.UpdateWithNewCategory(transaction, newCategory); err != nil {
				return nil, err
			}
		} else if err := s.repo.CreateWithNewCategory(transaction, newCategory); err != nil {
			return nil, err
		}
		return transaction, nil
	}

	if transaction.ID != 0 {
		if err := s.repo.Update(transaction); err != nil {
			return nil, err
		}
	} else if err := s.repo.Create(transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *TransactionService) PartialUpdate(userID string, transactionID int64, patch TransactionPatch) (*domain.Transaction, error) {
	s.logger.Debug("request to partially update transaction", "user_id", userID, "transaction_id", transactionID)
	if patch.Category != nil {
		if patch.Category.ID == 0 {
			return nil, financeErrors.NewValidationError("Category id is required in a partial update")
		}
		if err := s.guardCategoryRef(userID, patch.Category); err != nil {
			return nil, err
		}
	}
	if _, err := s.guardStored(userID, transactionID); err != nil {
		return nil, err
	}

	// Separate lookup for the merge; the target vanishing in between is a
	// plain not-found, not a conflict.
	target, err := s.repo.FindByID(transactionID)
	if err != nil {
		return nil, err
	}
	if patch.Amount != nil {
		target.Amount = *patch.Amount
	}
	if patch.Details != nil {
		target.Details = *patch.Details
	}
	if patch.Category != nil {
		target.Category = &domain.CategoryRef{ID: patch.Category.ID, Name: patch.Category.Name}
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *TransactionService) FindOne(userID string, transactionID int64) (*domain.Transaction, error) {
	s.logger.Debug("request to get transaction", "user_id", userID, "transaction_id", transactionID)
	transaction, err := s.repo.FindByID(transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.CreatedBy != userID {
		return nil, financeErrors.ErrAccessDenied
	}
	return transaction, nil
}

func (s *TransactionService) Delete(userID string, transactionID int64) error {
	s.logger.Debug("request to delete transaction", "user_id", userID, "transaction_id", transactionID)
	transaction, err := s.repo.FindByID(transactionID)
	if err != nil {
		return err
	}
	if transaction.CreatedBy != userID {
		return financeErrors.ErrAccessDenied
	}
	return s.repo.Delete(transactionID)
}

func (s *TransactionService) FindByCriteria(userID string, c *criteria.TransactionCriteria, page criteria.Pageable) ([]domain.Transaction, error) {
	return s.repo.FindByCriteria(userID, c, page)
}

func (s *TransactionService) CountByCriteria(userID string, c *criteria.TransactionCriteria) (int64, error) {
	return s.repo.CountByCriteria(userID, c)
}

// GetTotalAmount sums the caller's transaction amounts. A caller without
// transactions gets zero, not an error.
func (s *TransactionService) GetTotalAmount(userID string) (decimal.Decimal, error) {
	return s.repo.TotalAmountByUser(userID)
}

// guardCategoryRef rejects a category reference that does not exist or
// belongs to another user. Both cases are invalid input, not a forbidden
// access to the caller's own record. The ref's name is filled from the
// stored row so responses carry the shallow category view.
func (s *TransactionService) guardCategoryRef(userID string, ref *domain.CategoryRef) error {
	if ref == nil || ref.ID == 0 {
		return nil
	}
	category, err := s.categoryRepo.FindByID(ref.ID)
	if err != nil {
		if goerrors.Is(err, financeErrors.ErrCategoryNotFound) {
			return financeErrors.NewInvalidReferenceError("category")
		}
		return err
	}
	if category.CreatedBy != userID {
		return financeErrors.NewInvalidReferenceError("category")
	}
	ref.Name = category.Name
	return nil
}

// guardStored verifies the stored transaction before an overwrite.
func (s *TransactionService) guardStored(userID string, transactionID int64) (*domain.Transaction, error) {
	stored, err := s.repo.FindByID(transactionID)
	if err != nil {
		if goerrors.Is(err, financeErrors.ErrTransactionNotFound) {
			return nil, financeErrors.NewInvalidReferenceError("transaction")
		}
		return nil, err
	}
	if stored.CreatedBy != userID {
		return nil, financeErrors.ErrAccessDenied
	}
	return stored, nil
}
