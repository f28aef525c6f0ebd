package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTaskUpdateDistinguishesNullFromAbsent(t *testing.T) {
	var u TaskUpdate
	body := `{"title":"New","description":null,"category_id":7,"due_date":"2024-05-01T10:00:00Z"}`
	if err := json.Unmarshal([]byte(body), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !u.Title.Set || u.Title.Null || u.Title.Value != "New" {
		t.Fatalf("unexpected title: %+v", u.Title)
	}
	if !u.Description.Set || !u.Description.Null {
		t.Fatalf("expected description explicitly null: %+v", u.Description)
	}
	if u.Description.Ptr() != nil {
		t.Fatal("expected nil pointer for null description")
	}
	if !u.CategoryID.Set || u.CategoryID.Value != 7 {
		t.Fatalf("unexpected category: %+v", u.CategoryID)
	}
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if !u.DueDate.Set || !u.DueDate.Value.Equal(want) {
		t.Fatalf("unexpected due date: %+v", u.DueDate)
	}
	if u.Priority.Set || u.Status.Set || u.OrderIndex.Set || u.ParentTaskID.Set {
		t.Fatalf("expected absent fields to stay unset: %+v", u)
	}
	if u.Empty() {
		t.Fatal("expected non-empty update")
	}
}

func TestTaskUpdateEmpty(t *testing.T) {
	var u TaskUpdate
	if err := json.Unmarshal([]byte(`{}`), &u); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !u.Empty() {
		t.Fatal("expected empty update")
	}
}

func TestOptionalRejectsWrongType(t *testing.T) {
	var u TaskUpdate
	if err := json.Unmarshal([]byte(`{"status":"yes"}`), &u); err == nil {
		t.Fatal("expected type error")
	}
}

func TestOptionalMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		A Optional[int] `json:"a"`
		B Optional[int] `json:"b"`
		C Optional[int] `json:"c"`
	}{A: Some(3), B: Null[int]()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":3,"b":null,"c":null}` {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestTaskUpdateValidate(t *testing.T) {
	tests := []struct {
		name    string
		update  TaskUpdate
		wantErr bool
	}{
		{name: "empty", update: TaskUpdate{}},
		{name: "title", update: TaskUpdate{Title: Some(" ok ")}},
		{name: "blank title", update: TaskUpdate{Title: Some("  ")}, wantErr: true},
		{name: "null title", update: TaskUpdate{Title: Null[string]()}, wantErr: true},
		{name: "priority upper", update: TaskUpdate{Priority: Some(Priority("HIGH"))}, wantErr: true},
		{name: "priority padded", update: TaskUpdate{Priority: Some(Priority(" high "))}, wantErr: true},
		{name: "priority high", update: TaskUpdate{Priority: Some(PriorityHigh)}},
		{name: "priority bogus", update: TaskUpdate{Priority: Some(Priority("urgent"))}, wantErr: true},
		{name: "null priority", update: TaskUpdate{Priority: Null[Priority]()}, wantErr: true},
		{name: "null status", update: TaskUpdate{Status: Null[bool]()}, wantErr: true},
		{name: "null order", update: TaskUpdate{OrderIndex: Null[int]()}, wantErr: true},
		{name: "null parent clears", update: TaskUpdate{ParentTaskID: Null[int64]()}},
		{name: "null category clears", update: TaskUpdate{CategoryID: Null[int64]()}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.update.Validate()
			if tc.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTaskUpdateValidateNormalizes(t *testing.T) {
	u := TaskUpdate{Title: Some("  Ship  "), Priority: Some(PriorityHigh)}
	if err := u.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if u.Title.Value != "Ship" {
		t.Fatalf("expected trimmed title, got %q", u.Title.Value)
	}
	if u.Priority.Value != PriorityHigh {
		t.Fatalf("expected high, got %q", u.Priority.Value)
	}
}

func TestNewTaskNormalize(t *testing.T) {
	n := NewTask{Title: " Ship "}
	if err := n.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if n.Title != "Ship" || n.Priority != DefaultPriority {
		t.Fatalf("unexpected normalized task: %+v", n)
	}

	bad := NewTask{Title: "x", Priority: "critical"}
	if err := bad.Normalize(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	blank := NewTask{}
	if err := blank.Normalize(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestCategoryUpdateValidate(t *testing.T) {
	ok := CategoryUpdate{Name: Some("  Home ")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if ok.Name.Value != "Home" {
		t.Fatalf("expected trimmed name, got %q", ok.Name.Value)
	}

	for _, u := range []CategoryUpdate{{Name: Some("")}, {Name: Null[string]()}} {
		if err := u.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", u, err)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Fatalf("expected %q to be valid", p)
		}
	}
	if Priority("urgent").Valid() {
		t.Fatal("expected urgent to be invalid")
	}
}
