// Package seed loads starter categories and tasks into an empty database.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"todo/internal/models"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture is the YAML document describing seed data.
type Fixture struct {
	Categories []string      `yaml:"categories"`
	Tasks      []TaskFixture `yaml:"tasks"`
}

// TaskFixture describes one seeded task. Category refers to a category by
// name; DueInDays is an offset from the seeding time.
type TaskFixture struct {
	Title       string  `yaml:"title"`
	Description *string `yaml:"description"`
	Priority    string  `yaml:"priority"`
	DueInDays   *int    `yaml:"due_in_days"`
	Category    string  `yaml:"category"`
}

// CategoryStore is the subset of the category repository seeding needs.
type CategoryStore interface {
	GetByName(ctx context.Context, name string) (models.Category, error)
	Create(ctx context.Context, name string) (models.Category, error)
}

// TaskStore is the subset of the task repository seeding needs.
type TaskStore interface {
	Create(ctx context.Context, in models.NewTask) (models.Task, error)
}

// Result counts what a seeding run created.
type Result struct {
	CategoriesCreated int
	CategoriesSkipped int
	TasksCreated      int
}

// Default returns the embedded fixture.
func Default() (Fixture, error) {
	return Parse(defaultFixture)
}

// LoadFile reads a fixture from disk.
func LoadFile(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes and checks a fixture document.
func Parse(data []byte) (Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return Fixture{}, err
	}
	return fx, nil
}

// Validate checks that every task names a declared category and a known priority.
func (f Fixture) Validate() error {
	declared := make(map[string]struct{}, len(f.Categories))
	for i, name := range f.Categories {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("categories[%d]: name is required", i)
		}
		if _, dup := declared[name]; dup {
			return fmt.Errorf("categories[%d]: duplicate name %q", i, name)
		}
		declared[name] = struct{}{}
	}
	for i, task := range f.Tasks {
		if strings.TrimSpace(task.Title) == "" {
			return fmt.Errorf("tasks[%d]: title is required", i)
		}
		if task.Priority != "" {
			if _, err := models.ParsePriority(normalizePriority(task.Priority)); err != nil {
				return fmt.Errorf("tasks[%d]: %w", i, err)
			}
		}
		if task.Category != "" {
			if _, ok := declared[strings.TrimSpace(task.Category)]; !ok {
				return fmt.Errorf("tasks[%d]: unknown category %q", i, task.Category)
			}
		}
	}
	return nil
}

// Seeder applies fixtures through the repositories.
type Seeder struct {
	categories CategoryStore
	tasks      TaskStore
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a Seeder. A nil logger falls back to slog.Default.
func New(categories CategoryStore, tasks TaskStore, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		categories: categories,
		tasks:      tasks,
		logger:     logger,
		now:        time.Now,
	}
}

// Apply creates missing categories, then the tasks that belong to the
// categories created in this run. Tasks without a category are only
// created when at least one category was new, so rerunning is a no-op.
func (s *Seeder) Apply(ctx context.Context, fx Fixture) (Result, error) {
	var res Result
	created := make(map[string]int64, len(fx.Categories))

	for _, raw := range fx.Categories {
		name := strings.TrimSpace(raw)
		_, err := s.categories.GetByName(ctx, name)
		if err == nil {
			res.CategoriesSkipped++
			s.logger.Info("category already exists", "name", name)
			continue
		}
		if !errors.Is(err, models.ErrNotFound) {
			return res, fmt.Errorf("lookup category %q: %w", name, err)
		}

		cat, err := s.categories.Create(ctx, name)
		if err != nil {
			return res, fmt.Errorf("create category %q: %w", name, err)
		}
		created[name] = cat.ID
		res.CategoriesCreated++
		s.logger.Info("category created", "name", name, "id", cat.ID)
	}

	if len(created) == 0 {
		return res, nil
	}

	base := s.now().UTC()
	for _, tf := range fx.Tasks {
		in := models.NewTask{
			Title:       tf.Title,
			Description: tf.Description,
			Priority:    models.Priority(normalizePriority(tf.Priority)),
		}
		if name := strings.TrimSpace(tf.Category); name != "" {
			id, ok := created[name]
			if !ok {
				continue
			}
			in.CategoryID = &id
		}
		if tf.DueInDays != nil {
			due := base.AddDate(0, 0, *tf.DueInDays)
			in.DueDate = &due
		}

		task, err := s.tasks.Create(ctx, in)
		if err != nil {
			return res, fmt.Errorf("create task %q: %w", tf.Title, err)
		}
		res.TasksCreated++
		s.logger.Info("task created", "title", task.Title, "id", task.ID)
	}
	return res, nil
}

// normalizePriority lets fixtures spell priorities in any case.
func normalizePriority(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
