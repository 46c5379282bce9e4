package main

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/listat/internal/config"
	"github.com/nao1215/listat/internal/database"
	"github.com/nao1215/listat/internal/report"
)

// TestNewHistoryCmd tests the history command flags.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	for _, name := range []string{"period", "limit", "id", "latest", "format", "output", "output-dir", "date", "list-dates", "db-dir"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

// TestRunHistoryCmd tests listing and re-exporting stored batches. The
// subtests share one database.
func TestRunHistoryCmd(t *testing.T) {
	pages := map[string]string{
		"dontr.ru":            dontrWeekly,
		"hsdigital/rn/smi/61": smiWeekly,
	}
	dbDir := t.TempDir()
	if _, _, err := runCLI(t, "report", "--config", writeSources(t, ""),
		"--input", writePages(t, pages), "--db-dir", dbDir); err != nil {
		t.Fatalf("report error: %v", err)
	}

	t.Run("lists batches", func(t *testing.T) {
		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--period", "week")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected header and one batch, got %q", stdout)
		}
		fields := strings.Fields(lines[1])
		if fields[0] != "1" || fields[1] != "week" {
			t.Errorf("unexpected batch line %q", lines[1])
		}
	})

	t.Run("month filter has no batches", func(t *testing.T) {
		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--period", "month")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No stored batches.") {
			t.Errorf("stdout = %q", stdout)
		}
	})

	t.Run("re-exports the latest batch", func(t *testing.T) {
		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--latest", "--date", "16 дек")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := report.BOM + "Сайт;Просмотры;Посетители\n" +
			"dontr.ru;150;70\n" +
			"hsdigital/rn/smi/61;40;10\n" +
			"donday.ru;-;-"
		if stdout != want {
			t.Errorf("stdout = %q, want %q", stdout, want)
		}
	})

	t.Run("re-exports by id as markdown", func(t *testing.T) {
		stdout, _, err := runCLI(t, "history", "--db-dir", dbDir, "--id", "1", "--format", "markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "`dontr.ru`") {
			t.Errorf("expected markdown source table, got %q", stdout)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, _, err := runCLI(t, "history", "--db-dir", dbDir, "--id", "42")
		if !errors.Is(err, database.ErrBatchNotFound) {
			t.Errorf("expected ErrBatchNotFound, got %v", err)
		}
	})

	t.Run("id and latest conflict", func(t *testing.T) {
		_, _, err := runCLI(t, "history", "--db-dir", dbDir, "--id", "1", "--latest")
		if !errors.Is(err, errHistorySelection) {
			t.Errorf("expected errHistorySelection, got %v", err)
		}
	})

	t.Run("output file and output dir conflict", func(t *testing.T) {
		_, _, err := runCLI(t, "history", "--db-dir", dbDir, "--latest",
			"--output", filepath.Join(t.TempDir(), "a.csv"), "--output-dir", t.TempDir())
		if !errors.Is(err, config.ErrConflictingOutputs) {
			t.Errorf("expected ErrConflictingOutputs, got %v", err)
		}
	})

	t.Run("missing database", func(t *testing.T) {
		_, _, err := runCLI(t, "history", "--db-dir", t.TempDir())
		if !errors.Is(err, database.ErrDatabaseNotFound) {
			t.Errorf("expected ErrDatabaseNotFound, got %v", err)
		}
	})
}

func TestDateRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dates []string
		want  string
	}{
		{dates: nil, want: "-"},
		{dates: []string{"Мар 23"}, want: "Мар 23"},
		{dates: []string{"Мар 23", "Апр 23", "Май 23"}, want: "Мар 23 .. Май 23"},
	}
	for _, tt := range tests {
		if got := dateRange(tt.dates); got != tt.want {
			t.Errorf("dateRange(%q) = %q, want %q", tt.dates, got, tt.want)
		}
	}
}

func TestPrintBatches(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	err := printBatches(&sb, []database.BatchSummary{{
		ID: 7, Period: "month", CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		SourceCount: 10, FailedCount: 2, Dates: []string{"Янв 26", "Фев 26"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sb.String(), "Янв 26 .. Фев 26") || !strings.HasPrefix(sb.String(), "ID") {
		t.Errorf("unexpected listing %q", sb.String())
	}
}
