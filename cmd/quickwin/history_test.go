package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/seotools/quickwin/internal/database"
	"github.com/seotools/quickwin/internal/model"
)

// seedHistory stores one audit run in a fresh database directory.
func seedHistory(t *testing.T, domain string, score int) string {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(dir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	result := &model.AuditResult{
		Domain:      domain,
		DateAudited: time.Now(),
		Score:       score,
		AllFindings: map[model.Category][]model.Finding{
			model.CategoryTitles: {
				{Category: model.CategoryTitles, Type: "missing_title", Severity: model.SeverityCritical, Count: 2},
			},
		},
	}
	if err := db.SaveAuditResult(context.Background(), result, nil); err != nil {
		t.Fatalf("SaveAuditResult() error = %v", err)
	}
	return dir
}

// TestHistoryCommand tests the history command against a seeded store.
func TestHistoryCommand(t *testing.T) {
	t.Run("lists audited domains", func(t *testing.T) {
		dir := seedHistory(t, "example.com", 61)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(buf.String(), "example.com") {
			t.Errorf("output = %q, want the audited domain listed", buf.String())
		}
	})

	t.Run("shows score trend for a domain", func(t *testing.T) {
		dir := seedHistory(t, "example.com", 61)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir, "example.com"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "61") {
			t.Errorf("output = %q, want the stored score", output)
		}
		if !strings.Contains(output, "1 critical") {
			t.Errorf("output = %q, want the severity summary", output)
		}
	})

	t.Run("latest with json prints the full result", func(t *testing.T) {
		dir := seedHistory(t, "example.com", 61)

		var buf bytes.Buffer
		cmd := NewHistoryCmd()
		cmd.SetOut(&buf)
		cmd.SetArgs([]string{"--db-dir", dir, "--latest", "--json", "example.com"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !strings.Contains(buf.String(), `"score": 61`) {
			t.Errorf("output = %q, want the JSON result", buf.String())
		}
	})

	t.Run("unknown domain errors", func(t *testing.T) {
		dir := seedHistory(t, "example.com", 61)

		cmd := NewHistoryCmd()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"--db-dir", dir, "nothing.example"})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for a never-audited domain")
		}
	})

	t.Run("missing database errors", func(t *testing.T) {
		cmd := NewHistoryCmd()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"--db-dir", t.TempDir()})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error when no database exists")
		}
	})
}

// TestFormatSeveritySummary tests the summary formatter.
func TestFormatSeveritySummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		summary map[string]int
		want    string
	}{
		{
			name:    "mixed severities in fixed order",
			summary: map[string]int{"low": 2, "critical": 1, "medium": 3},
			want:    "1 critical, 3 medium, 2 low",
		},
		{
			name:    "clean run",
			summary: map[string]int{},
			want:    "clean",
		},
		{
			name:    "single severity",
			summary: map[string]int{"high": 4},
			want:    "4 high",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatSeveritySummary(tt.summary); got != tt.want {
				t.Errorf("formatSeveritySummary() = %q, want %q", got, tt.want)
			}
		})
	}
}
