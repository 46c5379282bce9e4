package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/listat/internal/model"
)

// setupTestStore creates a temporary store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleReports() []*model.SourceReport {
	ok := model.NewSourceReport("dontr.ru", "https://www.liveinternet.ru/stat/dontr.ru/index.html", model.PeriodMonth)
	ok.FetchedAt = time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC)
	ok.PayloadHash = PayloadHash("<pre>Мар 23 1787096 592185</pre>")
	ok.DroppedLines = 1
	ok.Series = model.NewSourceSeries("dontr.ru", []model.Record{
		{DateToken: "Мар 23", Views: 1787096, Visitors: 592185, Layout: model.LayoutMonthlyShortYear},
		{DateToken: "Апр 23", Views: 1650000, Visitors: 560000, Layout: model.LayoutMonthlyShortYear},
	})

	failed := model.NewSourceReport("don24.ru", "https://www.liveinternet.ru/stat/don24.ru/index.html", model.PeriodMonth)
	failed.Fail(errors.New("unexpected status 503"))

	return []*model.SourceReport{ok, failed}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); err != nil {
			t.Errorf("database file was not created: %v", err)
		}
		if s.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", s.Path())
		}
	})

	t.Run("missing database without CreateIfNotExists", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{})
		if !errors.Is(err, ErrDatabaseNotFound) {
			t.Errorf("Open() error = %v, want ErrDatabaseNotFound", err)
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if _, err := s.SaveBatch(context.Background(), model.PeriodWeek, nil, nil); err != nil {
			t.Fatalf("SaveBatch() error = %v", err)
		}
		_ = s.Close()

		s, err = Open(dir, Options{})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		batches, err := s.ListBatches(context.Background(), "", 0)
		if err != nil || len(batches) != 1 {
			t.Errorf("ListBatches() = %v, %v", batches, err)
		}
	})
}

// TestSaveAndLoadBatch tests the round trip of a batch.
func TestSaveAndLoadBatch(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	created := time.Date(2025, time.April, 2, 10, 5, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	ctx := context.Background()
	dates := []string{"Мар 23", "Апр 23"}
	id, err := s.SaveBatch(ctx, model.PeriodMonth, dates, sampleReports())
	if err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}

	batch, err := s.LoadBatch(ctx, id)
	if err != nil {
		t.Fatalf("LoadBatch() error = %v", err)
	}

	if batch.Period != model.PeriodMonth || !batch.CreatedAt.Equal(created) {
		t.Errorf("summary = %+v", batch.BatchSummary)
	}
	if batch.SourceCount != 2 || batch.FailedCount != 1 {
		t.Errorf("counts = %d, %d; want 2, 1", batch.SourceCount, batch.FailedCount)
	}
	if !slices.Equal(batch.Dates, dates) {
		t.Errorf("Dates = %q", batch.Dates)
	}
	if len(batch.Sources) != 2 {
		t.Fatalf("len(Sources) = %d", len(batch.Sources))
	}

	first := batch.Sources[0]
	if first.SourceID != "dontr.ru" || first.DroppedLines != 1 || first.PayloadHash == "" {
		t.Errorf("first source = %+v", first)
	}
	r, ok := first.Series.Lookup("Мар 23")
	if !ok || r.Views != 1787096 || r.Visitors != 592185 || r.Layout != model.LayoutMonthlyShortYear {
		t.Errorf("Lookup(Мар 23) = %+v, %v", r, ok)
	}

	second := batch.Sources[1]
	if second.Error == "" || second.Series.Len() != 0 || !second.FetchedAt.IsZero() {
		t.Errorf("failed source = %+v", second)
	}

	series := batch.Series()
	if len(series) != 2 || series[0].SourceID != "dontr.ru" {
		t.Errorf("Series() = %+v", series)
	}
}

// TestListBatches tests listing order and filtering.
func TestListBatches(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	for _, p := range []model.Period{model.PeriodWeek, model.PeriodMonth, model.PeriodWeek} {
		if _, err := s.SaveBatch(ctx, p, []string{"1 янв"}, nil); err != nil {
			t.Fatalf("SaveBatch() error = %v", err)
		}
	}

	all, err := s.ListBatches(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(all) != 3 || all[0].ID < all[2].ID {
		t.Errorf("ListBatches() = %+v, want 3 newest first", all)
	}

	weeks, err := s.ListBatches(ctx, model.PeriodWeek, 0)
	if err != nil || len(weeks) != 2 {
		t.Errorf("ListBatches(week) = %d, %v", len(weeks), err)
	}

	limited, err := s.ListBatches(ctx, "", 1)
	if err != nil || len(limited) != 1 || limited[0].ID != all[0].ID {
		t.Errorf("ListBatches(limit 1) = %+v, %v", limited, err)
	}

	latest, err := s.LatestBatch(ctx, model.PeriodMonth)
	if err != nil || latest.Period != model.PeriodMonth {
		t.Errorf("LatestBatch(month) = %+v, %v", latest, err)
	}
}

// TestBatchNotFound tests lookups of missing batches.
func TestBatchNotFound(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadBatch(ctx, 42); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("LoadBatch() error = %v, want ErrBatchNotFound", err)
	}
	if _, err := s.LatestBatch(ctx, model.PeriodWeek); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("LatestBatch() error = %v, want ErrBatchNotFound", err)
	}
}

// TestPayloadHash tests the payload fingerprint.
func TestPayloadHash(t *testing.T) {
	t.Parallel()

	a := PayloadHash("<pre>16 дек 1 1</pre>")
	if len(a) != 64 {
		t.Errorf("len(PayloadHash()) = %d, want 64", len(a))
	}
	if a != PayloadHash("<pre>16 дек 1 1</pre>") {
		t.Error("PayloadHash() is not deterministic")
	}
	if a == PayloadHash("<pre>16 дек 1 2</pre>") {
		t.Error("different payloads share a hash")
	}
}
