package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"

	"land-backend/internal/models"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B", "C"}, [][]string{{"1"}, {"2", "x", "y"}}, nil)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// border, header, separator, two rows, border
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	width := len([]rune(lines[0]))
	for _, l := range lines {
		if len([]rune(l)) != width {
			t.Fatalf("ragged table:\n%s", out)
		}
	}
}

func TestRenderTableNoHeaders(t *testing.T) {
	if out := renderTable(nil, [][]string{{"1"}}, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestMigrationRows(t *testing.T) {
	rows := migrationRows(
		[]string{"001_users.sql", "002_customers.sql"},
		map[string]bool{"001_users.sql": true},
	)
	if rows[0][1] != "yes" || rows[1][1] != "pending" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestQueueRows(t *testing.T) {
	name := "Ada Obi"
	items := []*models.ReviewQueueItem{
		{ID: uuid.New(), EntityType: models.EntityCustomer, ReferenceID: "CUS-000001", DisplayName: &name,
			CategoryLabel: "Individual", SubmittedByName: "Clerk", DaysPending: 5},
		{ID: uuid.New(), EntityType: models.EntityProperty, ReferenceID: "PRP-000001",
			CategoryLabel: "Land", SubmittedByName: "Unknown user", DaysPending: 1},
	}

	rows := queueRows(items, 2)

	want := [][]string{
		{"CUS-000001", "Customer", "Individual", "Ada Obi", "Clerk", "5", "yes"},
		{"PRP-000001", "Property", "Land", "(missing detail)", "Unknown user", "1", ""},
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Fatalf("row %d col %d: expected %q, got %q", i, j, want[i][j], rows[i][j])
			}
		}
	}
}

func TestResetRequiresConfirm(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"reset"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--confirm") {
		t.Fatalf("expected confirm error, got %v", err)
	}
}

func TestSeedAdminValidatesFlags(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"seed-admin", "--email", "admin@example.com", "--password", "short"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for short password")
	}
}
