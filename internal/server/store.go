package server

import (
	"context"

	"todo/internal/models"
	"todo/internal/storage/sqlite"
)

// CategoryStore is the category persistence the handlers depend on.
type CategoryStore interface {
	Get(ctx context.Context, id int64) (models.Category, error)
	GetByName(ctx context.Context, name string) (models.Category, error)
	List(ctx context.Context, skip, limit int) ([]models.Category, error)
	Create(ctx context.Context, name string) (models.Category, error)
	Update(ctx context.Context, id int64, update models.CategoryUpdate) (models.Category, error)
	Delete(ctx context.Context, id int64) error
	WithTasks(ctx context.Context, id int64) (models.CategoryWithTasks, error)
}

// TaskStore is the task persistence the handlers depend on.
type TaskStore interface {
	Get(ctx context.Context, id int64) (models.Task, error)
	Exists(ctx context.Context, id int64) (bool, error)
	GetWithSubtasks(ctx context.Context, id int64) (models.TaskWithSubtasks, error)
	List(ctx context.Context, filter sqlite.TaskFilter) ([]models.Task, error)
	Create(ctx context.Context, in models.NewTask) (models.Task, error)
	Update(ctx context.Context, id int64, update models.TaskUpdate) (models.Task, error)
	UpdateStatus(ctx context.Context, id int64, status bool) (models.Task, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, ids []int64) ([]models.Task, error)
}

var (
	_ CategoryStore = (*sqlite.CategoryRepository)(nil)
	_ TaskStore     = (*sqlite.TaskRepository)(nil)
)
