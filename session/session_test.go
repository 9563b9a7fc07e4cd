package session

import (
	"errors"
	"testing"
)

func TestCreateAndGet(t *testing.T) {
	store := NewStore()
	rec := store.Create()
	if rec.ID == "" {
		t.Fatal("expected generated session id")
	}
	if rec.ForgeryScore != nil || rec.FraudCount != nil {
		t.Fatal("new record fields must start unset")
	}
	got, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("id mismatch: %s vs %s", got.ID, rec.ID)
	}
}

func TestGetUnknown(t *testing.T) {
	store := NewStore()
	if _, err := store.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate(t *testing.T) {
	store := NewStore()
	rec := store.Create()

	updated, err := store.Update(rec.ID, func(r *Record) {
		r.ForgeryScore = Ptr(0.87)
		r.FraudCount = Ptr(2)
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ForgeryScore == nil || *updated.ForgeryScore != 0.87 {
		t.Fatalf("forgery score not applied: %+v", updated.ForgeryScore)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Fatal("UpdatedAt went backwards")
	}
}

func TestUpdateUnknown(t *testing.T) {
	store := NewStore()
	if _, err := store.Update("nope", func(*Record) {}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	store := NewStore()
	rec := store.Create()
	if _, err := store.Update(rec.ID, func(r *Record) { r.FraudCount = Ptr(1) }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	snap, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	*snap.FraudCount = 99
	again, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if *again.FraudCount != 1 {
		t.Fatalf("snapshot mutation leaked into store: %d", *again.FraudCount)
	}
}
