package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/penshort/roster/internal/model"
)

func strPtr(s string) *string { return &s }

func TestMemoryUsers_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := NewMemory().Users()

	u := &model.User{Email: "a@example.com", Phone: "1", First: strPtr("Ann")}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID == "" {
		t.Fatal("Create should assign an ID")
	}

	got, err := users.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Email != "a@example.com" || *got.First != "Ann" {
		t.Errorf("Get = %+v, want stored user", got)
	}

	// Returned copies must not alias stored state.
	*got.First = "Changed"
	again, _ := users.Get(ctx, u.ID)
	if *again.First != "Ann" {
		t.Errorf("stored First = %s, want Ann", *again.First)
	}

	u.Phone = "2"
	if err := users.Update(ctx, u); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, _ = users.Get(ctx, u.ID)
	if got.Phone != "2" {
		t.Errorf("Phone = %s, want 2", got.Phone)
	}

	list, err := users.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("List len = %d, want 1", len(list))
	}

	if err := users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := users.Get(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryUsers_Missing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := NewMemory().Users()

	if err := users.Update(ctx, &model.User{ID: "nope"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update error = %v, want ErrNotFound", err)
	}
	if err := users.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryReceivers_Relation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mem := NewMemory()
	users, receivers := mem.Users(), mem.Receivers()

	u := &model.User{Email: "a@example.com", Phone: "1"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Create user failed: %v", err)
	}

	r := &model.Receiver{ReceiverID: strPtr(u.ID)}
	if err := receivers.Create(ctx, r); err != nil {
		t.Fatalf("Create receiver failed: %v", err)
	}

	got, err := receivers.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Receiver == nil || got.Receiver.Email != "a@example.com" {
		t.Fatalf("Receiver = %+v, want hydrated user", got.Receiver)
	}

	// ON DELETE SET NULL
	if err := users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete user failed: %v", err)
	}
	got, _ = receivers.Get(ctx, r.ID)
	if got.ReceiverID != nil || got.Receiver != nil {
		t.Errorf("after user delete got ReceiverID=%v Receiver=%v, want both nil", got.ReceiverID, got.Receiver)
	}
}

func TestMemoryReceivers_UnknownReference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	receivers := NewMemory().Receivers()

	err := receivers.Create(ctx, &model.Receiver{ReceiverID: strPtr("missing")})
	if !errors.Is(err, ErrRelatedNotFound) {
		t.Fatalf("Create error = %v, want ErrRelatedNotFound", err)
	}

	r := &model.Receiver{}
	if err := receivers.Create(ctx, r); err != nil {
		t.Fatalf("Create with nil reference failed: %v", err)
	}

	r.ReceiverID = strPtr("missing")
	if err := receivers.Update(ctx, r); !errors.Is(err, ErrRelatedNotFound) {
		t.Errorf("Update error = %v, want ErrRelatedNotFound", err)
	}
}

func TestMemoryReceivers_ListOrdered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	receivers := NewMemory().Receivers()

	for _, id := range []string{"c", "a", "b"} {
		if err := receivers.Create(ctx, &model.Receiver{ID: id}); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}

	list, err := receivers.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, r := range list {
		if r.ID != want[i] {
			t.Errorf("List[%d].ID = %s, want %s", i, r.ID, want[i])
		}
	}
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var store Empty[model.User]

	list, err := store.List(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("List = %v, %v; want empty, nil", list, err)
	}
	if _, err := store.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
	if err := store.Create(ctx, &model.User{}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Create error = %v, want ErrReadOnly", err)
	}
	if err := store.Update(ctx, &model.User{}); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Update error = %v, want ErrReadOnly", err)
	}
	if err := store.Delete(ctx, "x"); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Delete error = %v, want ErrReadOnly", err)
	}
}
