package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"todo/internal/models"
)

// DefaultListLimit applies when a caller passes no positive limit.
const DefaultListLimit = 100

const categoryColumns = `id, name, created_at, updated_at`

// CategoryRepository provides CRUD over categories.
type CategoryRepository struct {
	store *Store
}

// NewCategoryRepository builds a repository on top of store.
func NewCategoryRepository(store *Store) *CategoryRepository {
	return &CategoryRepository{store: store}
}

// Get fetches a single category by id.
func (r *CategoryRepository) Get(ctx context.Context, id int64) (models.Category, error) {
	return getCategory(ctx, r.store.db, id)
}

// GetByName fetches a category by its exact name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (models.Category, error) {
	row := r.store.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("category %q: %w", name, models.ErrNotFound)
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

// List returns categories in insertion order.
func (r *CategoryRepository) List(ctx context.Context, skip, limit int) ([]models.Category, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	rows, err := r.store.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY id ASC LIMIT ? OFFSET ?`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Create persists a new category. Name uniqueness is enforced by the
// UNIQUE constraint on categories.name.
func (r *CategoryRepository) Create(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("%w: category name must not be empty", models.ErrValidation)
	}

	now := r.store.timestamp()
	res, err := r.store.db.ExecContext(ctx, `INSERT INTO categories(name, created_at, updated_at) VALUES(?, ?, ?)`, name, now, now)
	if isUniqueViolation(err) {
		return models.Category{}, fmt.Errorf("%w: category %q already exists", models.ErrConflict, name)
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Category{}, fmt.Errorf("category id: %w", err)
	}

	r.store.logger.Debug("category created", slog.Int64("id", id), slog.String("name", name))
	return r.Get(ctx, id)
}

// Update applies the fields present in update. Renaming onto another
// category's name fails with ErrConflict.
func (r *CategoryRepository) Update(ctx context.Context, id int64, update models.CategoryUpdate) (models.Category, error) {
	if err := update.Validate(); err != nil {
		return models.Category{}, err
	}

	var updated models.Category
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getCategory(ctx, tx, id)
		if err != nil {
			return err
		}
		if !update.Name.Set || update.Name.Value == current.Name {
			updated = current
			return nil
		}

		_, err = tx.ExecContext(ctx, `UPDATE categories SET name = ?, updated_at = ? WHERE id = ?`, update.Name.Value, r.store.timestamp(), id)
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q already exists", models.ErrConflict, update.Name.Value)
		}
		if err != nil {
			return fmt.Errorf("update category: %w", err)
		}

		updated, err = getCategory(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Category{}, err
	}
	return updated, nil
}

// Delete removes an empty category. Categories that still own tasks are
// rejected with ErrConflict.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.store.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCategory(ctx, tx, id); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE category_id = ?`, id).Scan(&count); err != nil {
			return fmt.Errorf("count category tasks: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("%w: category %d has %d associated tasks", models.ErrConflict, id, count)
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: category %d has associated tasks", models.ErrConflict, id)
		}
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// WithTasks returns the category and all of its tasks in list order.
func (r *CategoryRepository) WithTasks(ctx context.Context, id int64) (models.CategoryWithTasks, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return models.CategoryWithTasks{}, err
	}
	tasks, err := listTasks(ctx, r.store.db, TaskFilter{CategoryID: &id})
	if err != nil {
		return models.CategoryWithTasks{}, err
	}
	return models.CategoryWithTasks{Category: c, Tasks: tasks}, nil
}

func getCategory(ctx context.Context, q executor, id int64) (models.Category, error) {
	row := q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func categoryExists(ctx context.Context, q executor, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("category exists: %w", err)
	}
	return true, nil
}

func scanCategory(row rowScanner) (models.Category, error) {
	var (
		c                    models.Category
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &createdAt, &updatedAt); err != nil {
		return models.Category{}, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Category{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Category{}, err
	}
	return c, nil
}
