package models

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is assigned to tasks created without an explicit priority.
const DefaultPriority = PriorityMedium

// ValidPriorities enumerates the accepted priority values.
var ValidPriorities = map[Priority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, ok := ValidPriorities[p]
	return ok
}

// ParsePriority accepts exactly one of the lower-case priority names.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: priority must be one of low, medium, high (got %q)", ErrValidation, raw)
	}
	return p, nil
}

// Category is a named grouping of tasks. Names are unique.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryWithTasks is a category together with every task filed under it.
type CategoryWithTasks struct {
	Category
	Tasks []Task `json:"tasks"`
}

// Task is a unit of work. ParentTaskID links subtasks to their parent.
type Task struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description"`
	Priority     Priority   `json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	Status       bool       `json:"status"`
	OrderIndex   int        `json:"order_index"`
	CategoryID   *int64     `json:"category_id"`
	ParentTaskID *int64     `json:"parent_task_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TaskWithSubtasks is a task plus its direct children.
type TaskWithSubtasks struct {
	Task
	Subtasks []Task `json:"subtasks"`
}

// NewTask holds the fields accepted when creating a task.
type NewTask struct {
	Title        string
	Description  *string
	Priority     Priority
	DueDate      *time.Time
	Status       bool
	OrderIndex   int
	CategoryID   *int64
	ParentTaskID *int64
}

// Normalize trims the title, defaults the priority and checks both.
func (n *NewTask) Normalize() error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if n.Priority == "" {
		n.Priority = DefaultPriority
	}
	p, err := ParsePriority(string(n.Priority))
	if err != nil {
		return err
	}
	n.Priority = p
	return nil
}

// CategoryUpdate is a sparse change set for a category.
type CategoryUpdate struct {
	Name Optional[string] `json:"name"`
}

// Validate rejects a present but empty or null name.
func (u *CategoryUpdate) Validate() error {
	if !u.Name.Set {
		return nil
	}
	if u.Name.Null || strings.TrimSpace(u.Name.Value) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrValidation)
	}
	u.Name.Value = strings.TrimSpace(u.Name.Value)
	return nil
}

// TaskUpdate is a sparse change set for a task. Only fields that are Set are
// applied; a Null value clears a nullable column.
type TaskUpdate struct {
	Title        Optional[string]    `json:"title"`
	Description  Optional[string]    `json:"description"`
	Priority     Optional[Priority]  `json:"priority"`
	DueDate      Optional[time.Time] `json:"due_date"`
	Status       Optional[bool]      `json:"status"`
	OrderIndex   Optional[int]       `json:"order_index"`
	CategoryID   Optional[int64]     `json:"category_id"`
	ParentTaskID Optional[int64]     `json:"parent_task_id"`
}

// Empty reports whether the update carries no fields at all.
func (u TaskUpdate) Empty() bool {
	return !u.Title.Set && !u.Description.Set && !u.Priority.Set && !u.DueDate.Set &&
		!u.Status.Set && !u.OrderIndex.Set && !u.CategoryID.Set && !u.ParentTaskID.Set
}

// Validate checks the provided fields and normalizes title and priority.
func (u *TaskUpdate) Validate() error {
	if u.Title.Set {
		if u.Title.Null || strings.TrimSpace(u.Title.Value) == "" {
			return fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
		u.Title.Value = strings.TrimSpace(u.Title.Value)
	}
	if u.Priority.Set {
		if u.Priority.Null {
			return fmt.Errorf("%w: priority must not be null", ErrValidation)
		}
		p, err := ParsePriority(string(u.Priority.Value))
		if err != nil {
			return err
		}
		u.Priority.Value = p
	}
	if u.Status.Set && u.Status.Null {
		return fmt.Errorf("%w: status must not be null", ErrValidation)
	}
	if u.OrderIndex.Set && u.OrderIndex.Null {
		return fmt.Errorf("%w: order_index must not be null", ErrValidation)
	}
	return nil
}
