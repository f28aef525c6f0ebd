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

// TaskRepository provides CRUD, filtering and ordering over tasks.
type TaskRepository struct {
	store *Store
}

// NewTaskRepository builds a repository on top of store.
func NewTaskRepository(store *Store) *TaskRepository {
	return &TaskRepository{store: store}
}

// Get retrieves a task by id.
func (r *TaskRepository) Get(ctx context.Context, id int64) (models.Task, error) {
	return getTask(ctx, r.store.db, id)
}

// Exists reports whether a task with id is stored.
func (r *TaskRepository) Exists(ctx context.Context, id int64) (bool, error) {
	return taskExists(ctx, r.store.db, id)
}

// GetWithSubtasks retrieves a task and its direct children.
func (r *TaskRepository) GetWithSubtasks(ctx context.Context, id int64) (models.TaskWithSubtasks, error) {
	t, err := r.Get(ctx, id)
	if err != nil {
		return models.TaskWithSubtasks{}, err
	}
	subtasks, err := listTasks(ctx, r.store.db, TaskFilter{ParentTaskID: &id})
	if err != nil {
		return models.TaskWithSubtasks{}, err
	}
	return models.TaskWithSubtasks{Task: t, Subtasks: subtasks}, nil
}

// List returns tasks matching filter, ordered by order_index, due date and
// creation time, then paged.
func (r *TaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	return listTasks(ctx, r.store.db, filter)
}

// Create inserts a new task. Category and parent references must exist.
func (r *TaskRepository) Create(ctx context.Context, in models.NewTask) (models.Task, error) {
	if err := in.Normalize(); err != nil {
		return models.Task{}, err
	}

	var created models.Task
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkReferences(ctx, tx, in.CategoryID, in.ParentTaskID); err != nil {
			return err
		}

		now := r.store.timestamp()
		res, err := tx.ExecContext(ctx, `INSERT INTO tasks(title, description, priority, due_date, status, order_index, category_id, parent_task_id, created_at, updated_at)
            VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			in.Title,
			nullString(in.Description),
			string(in.Priority),
			nullTime(in.DueDate),
			in.Status,
			in.OrderIndex,
			nullInt64(in.CategoryID),
			nullInt64(in.ParentTaskID),
			now,
			now,
		)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced category or parent task does not exist", models.ErrInvalidReference)
		}
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("task id: %w", err)
		}

		created, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}

	r.store.logger.Debug("task created", slog.Int64("id", created.ID), slog.String("title", created.Title))
	return created, nil
}

// Update applies the fields present in update. A task cannot become its
// own parent, directly or through one of its descendants.
func (r *TaskRepository) Update(ctx context.Context, id int64, update models.TaskUpdate) (models.Task, error) {
	if err := update.Validate(); err != nil {
		return models.Task{}, err
	}

	var updated models.Task
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if update.Empty() {
			updated = current
			return nil
		}

		if update.ParentTaskID.Set && !update.ParentTaskID.Null {
			if err := checkParent(ctx, tx, id, update.ParentTaskID.Value); err != nil {
				return err
			}
		}
		if update.CategoryID.Set && !update.CategoryID.Null {
			if err := checkReferences(ctx, tx, &update.CategoryID.Value, nil); err != nil {
				return err
			}
		}

		set, args := updateAssignments(update)
		set = append(set, "updated_at = ?")
		args = append(args, r.store.timestamp(), id)

		query := fmt.Sprintf("UPDATE tasks SET %s WHERE id = ?", strings.Join(set, ", "))
		_, err = tx.ExecContext(ctx, query, args...)
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: referenced category or parent task does not exist", models.ErrInvalidReference)
		}
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		updated, err = getTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// UpdateStatus sets only the completion flag.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status bool) (models.Task, error) {
	res, err := r.store.db.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?`, status, r.store.timestamp(), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return r.Get(ctx, id)
}

// Delete removes a task. Subtasks at every depth go with it through the
// ON DELETE CASCADE on parent_task_id.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.store.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// Reorder sets order_index to each task's position in ids, in a single
// transaction. Unknown ids are skipped. The reordered tasks are returned in
// the order given.
func (r *TaskRepository) Reorder(ctx context.Context, ids []int64) ([]models.Task, error) {
	tasks := []models.Task{}
	err := r.store.withTx(ctx, func(tx *sql.Tx) error {
		now := r.store.timestamp()
		for index, id := range ids {
			res, err := tx.ExecContext(ctx, `UPDATE tasks SET order_index = ?, updated_at = ? WHERE id = ?`, index, now, id)
			if err != nil {
				return fmt.Errorf("reorder task %d: %w", id, err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				r.store.logger.Debug("reorder skipped unknown task", slog.Int64("id", id))
				continue
			}
			t, err := getTask(ctx, tx, id)
			if err != nil {
				return err
			}
			tasks = append(tasks, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func updateAssignments(update models.TaskUpdate) ([]string, []any) {
	set := []string{}
	args := []any{}

	if update.Title.Set {
		set = append(set, "title = ?")
		args = append(args, update.Title.Value)
	}
	if update.Description.Set {
		set = append(set, "description = ?")
		args = append(args, nullString(update.Description.Ptr()))
	}
	if update.Priority.Set {
		set = append(set, "priority = ?")
		args = append(args, string(update.Priority.Value))
	}
	if update.DueDate.Set {
		set = append(set, "due_date = ?")
		args = append(args, nullTime(update.DueDate.Ptr()))
	}
	if update.Status.Set {
		set = append(set, "status = ?")
		args = append(args, update.Status.Value)
	}
	if update.OrderIndex.Set {
		set = append(set, "order_index = ?")
		args = append(args, update.OrderIndex.Value)
	}
	if update.CategoryID.Set {
		set = append(set, "category_id = ?")
		args = append(args, nullInt64(update.CategoryID.Ptr()))
	}
	if update.ParentTaskID.Set {
		set = append(set, "parent_task_id = ?")
		args = append(args, nullInt64(update.ParentTaskID.Ptr()))
	}
	return set, args
}

func checkReferences(ctx context.Context, q executor, categoryID, parentTaskID *int64) error {
	if categoryID != nil {
		ok, err := categoryExists(ctx, q, *categoryID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: category %d not found", models.ErrInvalidReference, *categoryID)
		}
	}
	if parentTaskID != nil {
		ok, err := taskExists(ctx, q, *parentTaskID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: parent task %d not found", models.ErrInvalidReference, *parentTaskID)
		}
	}
	return nil
}

// checkParent validates re-parenting task id under parentID.
func checkParent(ctx context.Context, q executor, id, parentID int64) error {
	if parentID == id {
		return fmt.Errorf("%w: task %d cannot be its own parent", models.ErrSelfReference, id)
	}
	if err := checkReferences(ctx, q, nil, &parentID); err != nil {
		return err
	}
	descendant, err := isDescendant(ctx, q, id, parentID)
	if err != nil {
		return err
	}
	if descendant {
		return fmt.Errorf("%w: task %d is a descendant of task %d", models.ErrSelfReference, parentID, id)
	}
	return nil
}

// isDescendant reports whether candidate sits anywhere below root.
func isDescendant(ctx context.Context, q executor, root, candidate int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `
        WITH RECURSIVE descendants(id) AS (
            SELECT id FROM tasks WHERE parent_task_id = ?
            UNION
            SELECT t.id FROM tasks t JOIN descendants d ON t.parent_task_id = d.id
        )
        SELECT 1 FROM descendants WHERE id = ? LIMIT 1`, root, candidate).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("walk subtasks: %w", err)
	}
	return true, nil
}

func getTask(ctx context.Context, q executor, id int64) (models.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func taskExists(ctx context.Context, q executor, id int64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ? LIMIT 1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("task exists: %w", err)
	}
	return true, nil
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t                    models.Task
		priority             string
		description, dueDate sql.NullString
		categoryID, parentID sql.NullInt64
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Title, &description, &priority, &dueDate, &t.Status, &t.OrderIndex, &categoryID, &parentID, &createdAt, &updatedAt); err != nil {
		return models.Task{}, err
	}

	t.Priority = models.Priority(priority)
	if description.Valid {
		t.Description = &description.String
	}
	if dueDate.Valid {
		due, err := parseTime(dueDate.String)
		if err != nil {
			return models.Task{}, err
		}
		t.DueDate = &due
	}
	if categoryID.Valid {
		t.CategoryID = &categoryID.Int64
	}
	if parentID.Valid {
		t.ParentTaskID = &parentID.Int64
	}

	var err error
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Task{}, err
	}
	return t, nil
}
