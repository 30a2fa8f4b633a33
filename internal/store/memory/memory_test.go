package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fincoach/internal/core"
)

func dataset(id, hash string, uploaded time.Time) core.Dataset {
	return core.Dataset{
		ID:         id,
		Filename:   id + ".csv",
		SHA256:     hash,
		UploadedAt: uploaded,
		Transactions: []core.Transaction{
			{Date: uploaded, Merchant: "Kroger", Amount: -10, Category: "groceries"},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	d := dataset("a", "hash-a", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err := s.Save(ctx, d); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Filename != "a.csv" || len(got.Transactions) != 1 {
		t.Errorf("Get() = %+v", got)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrDatasetNotFound", err)
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := s.Save(ctx, dataset(id, "hash-"+id, base.AddDate(0, 0, i))); err != nil {
			t.Fatal(err)
		}
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"new", "mid", "old"}
	for i, w := range want {
		if infos[i].ID != w {
			t.Errorf("infos[%d] = %q, want %q", i, infos[i].ID, w)
		}
	}
	if infos[0].Rows != 1 {
		t.Errorf("Rows = %d, want 1", infos[0].Rows)
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Save(ctx, dataset("a", "h", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, core.ErrDatasetNotFound) {
		t.Errorf("second Delete() error = %v, want ErrDatasetNotFound", err)
	}
}

func TestStoreFindByHash(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Save(ctx, dataset("a", "shared-hash", time.Now())); err != nil {
		t.Fatal(err)
	}

	info, found, err := s.FindByHash(ctx, "shared-hash")
	if err != nil || !found {
		t.Fatalf("FindByHash() = %v, %v, %v", info, found, err)
	}
	if info.ID != "a" {
		t.Errorf("info.ID = %q, want a", info.ID)
	}

	if _, found, _ := s.FindByHash(ctx, "other"); found {
		t.Error("FindByHash(other) found a dataset")
	}
}
