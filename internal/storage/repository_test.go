package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"chitieu/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "chitieu.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEntriesRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	entries := []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 5), Amount: 35000, Category: core.CategoryFood, Description: "ăn sáng", OriginalText: "35k ăn sáng"},
		{ID: "b", Date: core.NewDate(2025, 1, 5), Amount: 115000, Category: core.CategoryHangOut, Description: "cafe", OriginalText: "cafe 115k"},
	}
	if err := repo.AddBatch(ctx, entries); err != nil {
		t.Fatalf("add batch: %v", err)
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	byID := map[string]core.Entry{got[0].ID: got[0], got[1].ID: got[1]}
	for _, want := range entries {
		e, ok := byID[want.ID]
		if !ok {
			t.Fatalf("entry %s missing after reload", want.ID)
		}
		if e.Amount != want.Amount || e.Category != want.Category ||
			!e.Date.SameDay(want.Date) || e.Description != want.Description || e.OriginalText != want.OriginalText {
			t.Fatalf("entry mismatch: %+v vs %+v", e, want)
		}
	}
}

func TestAddBatchAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	batch := []core.Entry{
		{ID: "ok", Date: core.NewDate(2025, 1, 5), Amount: 1000, Category: core.CategoryFood},
		{ID: "bad", Date: core.NewDate(2025, 1, 5), Amount: -1, Category: core.CategoryFood},
	}
	if err := repo.AddBatch(ctx, batch); err == nil {
		t.Fatal("expected error for invalid entry")
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("failed batch must not commit partially, got %d entries", len(got))
	}
}

func TestDeleteAndClear(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_ = repo.AddBatch(ctx, []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 1), Amount: 100, Category: core.CategoryOther},
		{ID: "b", Date: core.NewDate(2025, 1, 2), Amount: 200, Category: core.CategoryOther},
	})

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ := repo.List(ctx)
	if len(got) != 0 {
		t.Fatalf("expected empty table, got %d", len(got))
	}
}

func TestGetByIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_ = repo.AddBatch(ctx, []core.Entry{
		{ID: "a", Date: core.NewDate(2025, 1, 1), Amount: 100, Category: core.CategoryOther},
		{ID: "b", Date: core.NewDate(2025, 1, 2), Amount: 200, Category: core.CategoryFood},
	})

	got, err := repo.GetByIDs(ctx, []string{"b", "missing"})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	s, err := repo.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s != (core.Settings{}) {
		t.Fatalf("expected defaults, got %+v", s)
	}

	want := core.Settings{MonthlyBudget: 1000000, DarkMode: true, WebhookURL: "https://example.com/hook"}
	if err := repo.UpdateSettings(ctx, want); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	got, err := repo.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if got != want {
		t.Fatalf("settings mismatch: %+v vs %+v", got, want)
	}

	// Last write wins.
	want.MonthlyBudget = 500000
	if err := repo.UpdateSettings(ctx, want); err != nil {
		t.Fatalf("update settings: %v", err)
	}
	got, _ = repo.Settings(ctx)
	if got.MonthlyBudget != 500000 {
		t.Fatalf("expected last write to win, got %+v", got)
	}
}

func TestUnparseableBudgetFallsBackToZero(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES ('monthly_budget', 'garbage')`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := repo.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.MonthlyBudget != 0 {
		t.Fatalf("corrupt budget must read as 0, got %d", s.MonthlyBudget)
	}
}
