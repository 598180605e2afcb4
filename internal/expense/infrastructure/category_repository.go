package infrastructure

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/moneylogger/moneylogger/internal/expense/criteria"
	"github.com/moneylogger/moneylogger/internal/expense/domain"
	financeErrors "github.com/moneylogger/moneylogger/internal/expense/errors"
)

var categorySortColumns = map[string]string{
	"id":        "c.id",
	"name":      "c.name",
	"createdAt": "c.created_at",
	"updatedAt": "c.updated_at",
}

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) FindByID(categoryID int64) (*domain.Category, error) {
	var category domain.Category
	err := r.db.QueryRow(
		`SELECT id, name, created_by, created_at, updated_at FROM categories WHERE id = $1`,
		categoryID,
	).Scan(&category.ID, &category.Name, &category.CreatedBy, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeErrors.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Create(category *domain.Category) error {
	return r.db.QueryRow(
		`INSERT INTO categories (name, created_by, created_at, updated_at)
         VALUES ($1, $2, NOW(), NOW())
         RETURNING id, created_at, updated_at`,
		category.Name, category.CreatedBy,
	).Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
}

func (r *CategoryRepository) Update(category *domain.Category) error {
	// created_by is never touched on update.
	err := r.db.QueryRow(
		`UPDATE categories SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`,
		category.Name, category.ID,
	).Scan(&category.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return financeErrors.ErrCategoryNotFound
	}
	return err
}

func (r *CategoryRepository) DeleteAndDetach(categoryID int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(
		`UPDATE transactions SET category_id = NULL, updated_at = NOW() WHERE category_id = $1`,
		categoryID,
	); err != nil {
		return err
	}
	result, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, categoryID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return financeErrors.ErrCategoryNotFound
	}
	return tx.Commit()
}

func (r *CategoryRepository) FindByCriteria(userID string, c *criteria.CategoryCriteria, page criteria.Pageable) ([]domain.Category, error) {
	builder, join := buildCategoryPredicate(userID, c)

	orderBy, err := orderClause(categorySortColumns, page)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		`SELECT DISTINCT c.id, c.name, c.created_by, c.created_at, c.updated_at
         FROM categories c%s %s ORDER BY %s LIMIT %s OFFSET %s`,
		join, builder.Where(), orderBy,
		builder.AppendArg(page.Limit()), builder.AppendArg(page.Offset()),
	)
	rows, err := r.db.Query(query, builder.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedBy, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) CountByCriteria(userID string, c *criteria.CategoryCriteria) (int64, error) {
	builder, join := buildCategoryPredicate(userID, c)

	query := fmt.Sprintf(`SELECT COUNT(DISTINCT c.id) FROM categories c%s %s`, join, builder.Where())
	var count int64
	err := r.db.QueryRow(query, builder.Args()...).Scan(&count)
	return count, err
}

// buildCategoryPredicate translates the criteria into WHERE conjuncts,
// owner predicate first. Filtering on transaction ids goes through a
// left join so categories without transactions still match "unspecified".
func buildCategoryPredicate(userID string, c *criteria.CategoryCriteria) (*criteria.Builder, string) {
	builder := criteria.NewBuilder("c.created_by", userID)
	join := ""
	if c != nil {
		criteria.Range(builder, "c.id", c.ID)
		builder.String("c.name", c.Name)
		if c.TransactionID != nil {
			join = " LEFT JOIN transactions t ON t.category_id = c.id"
			criteria.Range(builder, "t.id", c.TransactionID)
		}
	}
	return builder, join
}

func orderClause(allowed map[string]string, page criteria.Pageable) (string, error) {
	sort := page.Sort
	if sort == "" {
		sort = "id"
	}
	column, ok := allowed[sort]
	if !ok {
		return "", financeErrors.NewValidationError(fmt.Sprintf("Cannot sort by %q", sort))
	}
	direction := "ASC"
	if page.Direction == criteria.Desc {
		direction = "DESC"
	}
	return column + " " + direction, nil
}
