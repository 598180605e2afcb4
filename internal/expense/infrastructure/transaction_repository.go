package infrastructure

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
)

var transactionSortColumns = map[string]string{
	"id":        "t.id",
	"amount":    "t.amount",
	"details":   "t.details",
	"date":      "t.created_at",
	"createdAt": "t.created_at",
	"updatedAt": "t.updated_at",
}

const transactionColumns = `t.id, t.amount, t.details, t.category_id, c.name, t.created_by, t.created_at, t.updated_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) FindByID(transactionID int64) (*domain.Transaction, error) {
	row := r.db.QueryRow(
		`SELECT `+transactionColumns+`
         FROM transactions t LEFT JOIN categories c ON c.id = t.category_id
         WHERE t.id = $1`,
		transactionID,
	)
	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

func (r *TransactionRepository) Create(transaction *domain.Transaction) error {
	return r.db.QueryRow(
		`INSERT INTO transactions (amount, details, category_id, created_by, created_at, updated_at)
         VALUES ($1, $2, $3, $4, NOW(), NOW())
         RETURNING id, created_at, updated_at`,
		transaction.Amount, transaction.Details, categoryIDArg(transaction), transaction.CreatedBy,
	).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt)
}

func (r *TransactionRepository) CreateWithNewCategory(transaction *domain.Transaction, category *domain.Category) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertCategoryTx(tx, category); err != nil {
		return err
	}
	transaction.Category = &domain.CategoryRef{ID: category.ID, Name: category.Name}
	if err := tx.QueryRow(
		`INSERT INTO transactions (amount, details, category_id, created_by, created_at, updated_at)
         VALUES ($1, $2, $3, $4, NOW(), NOW())
         RETURNING id, created_at, updated_at`,
		transaction.Amount, transaction.Details, category.ID, transaction.CreatedBy,
	).Scan(&transaction.ID, &transaction.CreatedAt, &transaction.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *TransactionRepository) Update(transaction *domain.Transaction) error {
	// created_by is never touched on update.
	err := r.db.QueryRow(
		`UPDATE transactions SET amount = $1, details = $2, category_id = $3, updated_at = NOW()
         WHERE id = $4 RETURNING created_by, created_at, updated_at`,
		transaction.Amount, transaction.Details, categoryIDArg(transaction), transaction.ID,
	).Scan(&transaction.CreatedBy, &transaction.CreatedAt, &transaction.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return financeErrors.ErrTransactionNotFound
	}
	return err
}

func (r *TransactionRepository) UpdateWithNewCategory(transaction *domain.Transaction, category *domain.Category) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertCategoryTx(tx, category); err != nil {
		return err
	}
	transaction.Category = &domain.CategoryRef{ID: category.ID, Name: category.Name}
	err = tx.QueryRow(
		`UPDATE transactions SET amount = $1, details = $2, category_id = $3, updated_at = NOW()
         WHERE id = $4 RETURNING created_by, created_at, updated_at`,
		transaction.Amount, transaction.Details, category.ID, transaction.ID,
	).Scan(&transaction.CreatedBy, &transaction.CreatedAt, &transaction.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return financeErrors.ErrTransactionNotFound
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *TransactionRepository) Delete(transactionID int64) error {
	result, err := r.db.Exec(`DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) FindByCriteria(userID string, c *criteria.TransactionCriteria, page criteria.Pageable) ([]domain.Transaction, error) {
	builder := buildTransactionPredicate(userID, c)

	orderBy, err := orderClause(transactionSortColumns, page)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		`SELECT %s FROM transactions t LEFT JOIN categories c ON c.id = t.category_id
         %s ORDER BY %s LIMIT %s OFFSET %s`,
		transactionColumns, builder.Where(), orderBy,
		builder.AppendArg(page.Limit()), builder.AppendArg(page.Offset()),
	)
	rows, err := r.db.Query(query, builder.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) CountByCriteria(userID string, c *criteria.TransactionCriteria) (int64, error) {
	builder := buildTransactionPredicate(userID, c)

	query := `SELECT COUNT(*) FROM transactions t LEFT JOIN categories c ON c.id = t.category_id ` + builder.Where()
	var count int64
	err := r.db.QueryRow(query, builder.Args()...).Scan(&count)
	return count, err
}

func (r *TransactionRepository) TotalAmountByUser(userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE created_by = $1`,
		userID,
	).Scan(&total)
	return total, err
}

// buildTransactionPredicate translates the criteria into WHERE conjuncts,
// owner predicate first. The category id filter targets the left-joined
// category row, so it never drops or duplicates transactions without one.
func buildTransactionPredicate(userID string, c *criteria.TransactionCriteria) *criteria.Builder {
	builder := criteria.NewBuilder("t.created_by", userID)
	if c != nil {
		criteria.Range(builder, "t.id", c.ID)
		criteria.Range(builder, "t.amount", c.Amount)
		builder.String("t.details", c.Details)
		criteria.Range(builder, "t.created_at", c.Date)
		criteria.Range(builder, "c.id", c.CategoryID)
	}
	return builder
}

// categoryIDArg maps the optional category reference to the nullable
// category_id column. A transaction without a category stores NULL.
func categoryIDArg(transaction *domain.Transaction) any {
	if transaction.Category == nil {
		return nil
	}
	return transaction.Category.ID
}

func insertCategoryTx(tx *sql.Tx, category *domain.Category) error {
	return tx.QueryRow(
		`INSERT INTO categories (name, created_by, created_at, updated_at)
         VALUES ($1, $2, NOW(), NOW())
         RETURNING id, created_at, updated_at`,
		category.Name, category.CreatedBy,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var transaction domain.Transaction
	var categoryID sql.NullInt64
	var categoryName sql.NullString
	if err := row.Scan(
		&transaction.ID, &transaction.Amount, &transaction.Details,
		&categoryID, &categoryName,
		&transaction.CreatedBy, &transaction.CreatedAt, &transaction.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		transaction.Category = &domain.CategoryRef{ID: categoryID.Int64, Name: categoryName.String}
	}
	return &transaction, nil
}
