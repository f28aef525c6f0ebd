package sqlite

import (
	"context"
	"fmt"
	"strings"

	"todo/internal/models"
)

const taskColumns = `id, title, description, priority, due_date, status, order_index, category_id, parent_task_id, created_at, updated_at`

// TaskFilter narrows a task listing. Nil fields are not filtered on.
//
// Leaving ParentTaskID nil lists tasks at every level of the hierarchy;
// set RootOnly to restrict the result to tasks without a parent.
type TaskFilter struct {
	Status       *bool
	Priority     *models.Priority
	CategoryID   *int64
	ParentTaskID *int64
	RootOnly     bool
	Skip         int
	Limit        int
}

type listQueryBuilder struct {
	filter TaskFilter
	query  string
	args   []any
	where  []string
}

func buildListQuery(filter TaskFilter) (string, []any) {
	b := &listQueryBuilder{filter: filter}
	b.query = "SELECT " + taskColumns + " FROM tasks"
	b.buildWhere()
	b.buildOrder()
	b.buildPagination()
	return b.query, b.args
}

func (b *listQueryBuilder) buildWhere() {
	if b.filter.Status != nil {
		b.where = append(b.where, "status = ?")
		b.args = append(b.args, *b.filter.Status)
	}
	if b.filter.Priority != nil {
		b.where = append(b.where, "priority = ?")
		b.args = append(b.args, string(*b.filter.Priority))
	}
	if b.filter.CategoryID != nil {
		b.where = append(b.where, "category_id = ?")
		b.args = append(b.args, *b.filter.CategoryID)
	}
	if b.filter.ParentTaskID != nil {
		b.where = append(b.where, "parent_task_id = ?")
		b.args = append(b.args, *b.filter.ParentTaskID)
	}
	if b.filter.RootOnly {
		b.where = append(b.where, "parent_task_id IS NULL")
	}

	if len(b.where) == 0 {
		return
	}
	b.query += " WHERE " + strings.Join(b.where, " AND ")
}

// Tasks without a due date sort after dated ones.
func (b *listQueryBuilder) buildOrder() {
	b.query += " ORDER BY order_index ASC, due_date IS NULL ASC, due_date ASC, created_at ASC, id ASC"
}

func (b *listQueryBuilder) buildPagination() {
	hasLimit := false
	if b.filter.Limit > 0 {
		b.query += " LIMIT ?"
		b.args = append(b.args, b.filter.Limit)
		hasLimit = true
	}
	if b.filter.Skip > 0 {
		if !hasLimit {
			b.query += " LIMIT -1"
		}
		b.query += " OFFSET ?"
		b.args = append(b.args, b.filter.Skip)
	}
}

// listTasks runs a filtered listing. A zero Limit returns every match.
func listTasks(ctx context.Context, q executor, filter TaskFilter) ([]models.Task, error) {
	query, args := buildListQuery(filter)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
