package output

import (
	"strings"
	"testing"
	"time"

	"github.com/dodobyrd/Spruce-for-Munki/internal/reports"
	"github.com/dodobyrd/Spruce-for-Munki/internal/store"
)

func TestRenderReportNoItems(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out := RenderReport("Some Report", "A description.", []string{"name"}, nil, nil)
	if !strings.Contains(out, "Some Report:") {
		t.Errorf("missing title: %q", out)
	}
	if !strings.Contains(out, "No items.") {
		t.Errorf("missing empty marker: %q", out)
	}
}

func TestRenderReportKeyOrder(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	items := []reports.Finding{
		{"path": "/p", "name": "Tool", "extra": "x"},
	}
	out := RenderReport("R", "", []string{"name", "path"}, items, nil)

	nameIdx := strings.Index(out, "name: Tool")
	pathIdx := strings.Index(out, "path: /p")
	extraIdx := strings.Index(out, "extra: x")
	if nameIdx == -1 || pathIdx == -1 || extraIdx == -1 {
		t.Fatalf("missing keys in output: %q", out)
	}
	if !(nameIdx < pathIdx && pathIdx < extraIdx) {
		t.Errorf("keys out of order: %q", out)
	}
}

func TestRenderRunTable(t *testing.T) {
	runs := []*store.Run{
		{ID: 2, StartedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), Mode: "archived", ArchiveRoot: "/archive", FileCount: 4, NameCount: 1},
		{ID: 1, StartedAt: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC), Mode: "removed", FileCount: 2},
	}
	out := RenderRunTable(runs)
	if !strings.Contains(out, "archived") || !strings.Contains(out, "/archive") {
		t.Errorf("missing archive run: %q", out)
	}
	if !strings.Contains(out, "removed") {
		t.Errorf("missing removal run: %q", out)
	}

	if got := RenderRunTable(nil); !strings.Contains(got, "No deprecate runs") {
		t.Errorf("unexpected empty table output: %q", got)
	}
}

func TestWrap(t *testing.T) {
	lines := wrap("aaa bbb ccc ddd", 7)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %v", lines)
	}
	for _, line := range lines {
		if len(line) > 7 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrap("", 10) != nil {
		t.Error("expected nil for empty text")
	}
}
