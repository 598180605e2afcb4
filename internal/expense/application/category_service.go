package application

import (
	goerrors "errors"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
	"github.com/moneylogger/moneylogger/internal/log"
)

type CategoryService struct {
	repo   domain.CategoryRepository
	logger *log.Logger
}

func NewCategoryService(repo domain.CategoryRepository, logger *log.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger.WithComponent(log.ComponentExpense)}
}

// CategoryPatch carries the fields a merge-patch may overwrite. Nil
// fields leave the stored value untouched.
type CategoryPatch struct {
	Name *string
}

// Save persists the category. With an id it is an update and the stored
// row's creator must match the caller; without one it is an insert
// stamped with the caller's identity.
func (s *CategoryService) Save(userID string, category *domain.Category) (*domain.Category, error) {
	s.logger.Debug("request to save category", "user_id", userID, "category_id", category.ID)
	if err := category.Validate(); err != nil {
		return nil, err
	}

	if category.ID != 0 {
		stored, err := s.guard(userID, category.ID)
		if err != nil {
			return nil, err
		}
		stored.Name = category.Name
		if err := s.repo.Update(stored); err != nil {
			return nil, err
		}
		return stored, nil
	}

	category.CreatedBy = userID
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) PartialUpdate(userID string, categoryID int64, patch CategoryPatch) (*domain.Category, error) {
	s.logger.Debug("request to partially update category", "user_id", userID, "category_id", categoryID)
	if _, err := s.guard(userID, categoryID); err != nil {
		return nil, err
	}

	// Separate lookup for the merge; the target vanishing in between is a
	// plain not-found, not a conflict.
	target, err := s.repo.FindByID(categoryID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		target.Name = *patch.Name
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *CategoryService) FindOne(userID string, categoryID int64) (*domain.Category, error) {
	s.logger.Debug("request to get category", "user_id", userID, "category_id", categoryID)
	category, err := s.repo.FindByID(categoryID)
	if err != nil {
		return nil, err
	}
	if category.CreatedBy != userID {
		return nil, financeErrors.ErrAccessDenied
	}
	return category, nil
}

// Delete removes the category after the ownership check. Transactions
// referencing it are detached, never deleted.
func (s *CategoryService) Delete(userID string, categoryID int64) error {
	s.logger.Debug("request to delete category", "user_id", userID, "category_id", categoryID)
	category, err := s.repo.FindByID(categoryID)
	if err != nil {
		return err
	}
	if category.CreatedBy != userID {
		return financeErrors.ErrAccessDenied
	}
	return s.repo.DeleteAndDetach(categoryID)
}

func (s *CategoryService) FindByCriteria(userID string, c *criteria.CategoryCriteria, page criteria.Pageable) ([]domain.Category, error) {
	return s.repo.FindByCriteria(userID, c, page)
}

func (s *CategoryService) CountByCriteria(userID string, c *criteria.CategoryCriteria) (int64, error) {
	return s.repo.CountByCriteria(userID, c)
}

// guard verifies the stored category before an overwrite. A missing row
// on the update path is an invalid input reference; a row owned by
// someone else is an access violation.
func (s *CategoryService) guard(userID string, categoryID int64) (*domain.Category, error) {
	stored, err := s.repo.FindByID(categoryID)
	if err != nil {
		if goerrors.Is(err, financeErrors.ErrCategoryNotFound) {
			return nil, financeErrors.NewInvalidReferenceError("category")
		}
		return nil, err
	}
	if stored.CreatedBy != userID {
		return nil, financeErrors.ErrAccessDenied
	}
	return stored, nil
}
