package sqlite

import (
	"context"
	"errors"
	"testing"

	"todo/internal/models"
)

func TestCreateAndGetCategory(t *testing.T) {
	repo := NewCategoryRepository(testStore(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "  Work  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}
	if created.Name != "Work" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	byName, err := repo.GetByName(ctx, "Work")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("expected id %d, got %d", created.ID, byName.ID)
	}

	if _, err := repo.Get(ctx, 999); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByName(ctx, "Missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	repo := NewCategoryRepository(testStore(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, "Work"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, "Work"); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.Create(ctx, "   "); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	all, err := repo.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 category, got %d", len(all))
	}
}

func TestListCategoriesPaging(t *testing.T) {
	repo := NewCategoryRepository(testStore(t))
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C", "D"} {
		if _, err := repo.Create(ctx, name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	tests := []struct {
		name        string
		skip, limit int
		want        []string
	}{
		{name: "defaults", want: []string{"A", "B", "C", "D"}},
		{name: "limit", limit: 2, want: []string{"A", "B"}},
		{name: "skip", skip: 3, want: []string{"D"}},
		{name: "skip and limit", skip: 1, limit: 2, want: []string{"B", "C"}},
		{name: "past end", skip: 10, want: []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx, tc.skip, tc.limit)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d categories, got %d", len(tc.want), len(got))
			}
			for i, c := range got {
				if c.Name != tc.want[i] {
					t.Fatalf("position %d: expected %q, got %q", i, tc.want[i], c.Name)
				}
			}
		})
	}
}

func TestUpdateCategory(t *testing.T) {
	st := testStore(t)
	st.now = steppingClock(st.now())
	repo := NewCategoryRepository(st)
	ctx := context.Background()

	work, err := repo.Create(ctx, "Work")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, "Home"); err != nil {
		t.Fatalf("create: %v", err)
	}

	renamed, err := repo.Update(ctx, work.ID, models.CategoryUpdate{Name: models.Some("Office")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if renamed.Name != "Office" {
		t.Fatalf("expected Office, got %q", renamed.Name)
	}
	if !renamed.UpdatedAt.After(work.UpdatedAt) {
		t.Fatal("expected updated_at to advance")
	}

	same, err := repo.Update(ctx, work.ID, models.CategoryUpdate{Name: models.Some("Office")})
	if err != nil {
		t.Fatalf("rename to own name: %v", err)
	}
	if !same.UpdatedAt.Equal(renamed.UpdatedAt) {
		t.Fatal("expected no-op rename to leave updated_at alone")
	}

	unchanged, err := repo.Update(ctx, work.ID, models.CategoryUpdate{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if unchanged.Name != "Office" {
		t.Fatalf("expected name unchanged, got %q", unchanged.Name)
	}

	if _, err := repo.Update(ctx, work.ID, models.CategoryUpdate{Name: models.Some("Home")}); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := repo.Update(ctx, work.ID, models.CategoryUpdate{Name: models.Null[string]()}); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := repo.Update(ctx, 999, models.CategoryUpdate{Name: models.Some("X")}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCategory(t *testing.T) {
	st := testStore(t)
	categories := NewCategoryRepository(st)
	tasks := NewTaskRepository(st)
	ctx := context.Background()

	busy, err := categories.Create(ctx, "Busy")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	empty, err := categories.Create(ctx, "Empty")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(ctx, models.NewTask{Title: "Filed", CategoryID: &busy.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	if err := categories.Delete(ctx, busy.ID); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := categories.Get(ctx, busy.ID); err != nil {
		t.Fatalf("expected category to survive: %v", err)
	}

	if err := categories.Delete(ctx, empty.ID); err != nil {
		t.Fatalf("delete empty: %v", err)
	}
	if _, err := categories.Get(ctx, empty.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := categories.Delete(ctx, empty.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestCategoryWithTasks(t *testing.T) {
	st := testStore(t)
	categories := NewCategoryRepository(st)
	tasks := NewTaskRepository(st)
	ctx := context.Background()

	work, err := categories.Create(ctx, "Work")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(ctx, models.NewTask{Title: "Second", OrderIndex: 1, CategoryID: &work.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := tasks.Create(ctx, models.NewTask{Title: "First", CategoryID: &work.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if _, err := tasks.Create(ctx, models.NewTask{Title: "Elsewhere"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := categories.WithTasks(ctx, work.ID)
	if err != nil {
		t.Fatalf("with tasks: %v", err)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got.Tasks))
	}
	if got.Tasks[0].Title != "First" || got.Tasks[1].Title != "Second" {
		t.Fatalf("unexpected order: %q, %q", got.Tasks[0].Title, got.Tasks[1].Title)
	}

	if _, err := categories.WithTasks(ctx, 999); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
