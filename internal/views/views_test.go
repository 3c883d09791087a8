package views

import (
	"strings"
	"testing"
)

func TestThemeForKnownAndUnknown(t *testing.T) {
	th := ThemeFor("green", true)
	if th.Accent != "#16a34a" || th.GlamourStyle() != "dark" {
		t.Fatalf("unexpected theme %+v", th)
	}
	th = ThemeFor("neon", false)
	if th.Name != "default" || th.Accent != "#6a11cb" || th.GlamourStyle() != "light" {
		t.Fatalf("expected default fallback, got %+v", th)
	}
}

func TestRenderTasksPanelMarksSelectionAndOverdue(t *testing.T) {
	out := RenderTasksPanel(TasksPanelData{
		Filter: "All",
		Sort:   "created_desc",
		Rows: []TaskRowData{
			{ID: "a", Text: "Pay rent", Priority: "high", Due: "2024-03-01", Repeat: "monthly", Overdue: true},
			{ID: "b", Text: "Walk", Priority: "low", Completed: true, Subtasks: []SubtaskData{{Completed: true}, {}}},
		},
		SelectedID: "b",
	})
	for _, want := range []string{"search: -", "  [ ] [HIGH] Pay rent due:2024-03-01! ↻monthly", "> [x] [LOW] Walk (1/2)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestRenderTasksPanelEmpty(t *testing.T) {
	if out := RenderTasksPanel(TasksPanelData{}); !strings.Contains(out, "(no tasks)") {
		t.Fatalf("expected empty marker, got:\n%s", out)
	}
}

func TestTaskMarkdownListsSubtasks(t *testing.T) {
	md := TaskMarkdown(TaskRowData{
		Text:     "Trip",
		Priority: "medium",
		Subtasks: []SubtaskData{{Text: "Book hotel", Completed: true}, {Text: "Pack", Selected: true}},
	})
	for _, want := range []string{"## Trip", "**Due:** none", "- [x] Book hotel", "- [ ] Pack ◀"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
}

func TestRenderNotificationAndPalette(t *testing.T) {
	if RenderNotification("", " ") != "" {
		t.Fatalf("expected empty notification")
	}
	if got := RenderNotification("Task due: Rent", "Due soon"); !strings.HasPrefix(got, "notification: Task due: Rent") {
		t.Fatalf("unexpected notification %q", got)
	}
	if RenderCommandPalette(false, "x") != "" || RenderCommandPalette(true, ":show") != "command: :show" {
		t.Fatalf("unexpected palette rendering")
	}
}

func TestRenderMarkdownFallsBackOnEmpty(t *testing.T) {
	if RenderMarkdown("  ", "dark") != "" {
		t.Fatalf("expected empty output")
	}
	if out := RenderMarkdown("# Hello", "dark"); !strings.Contains(out, "Hello") {
		t.Fatalf("expected rendered heading, got %q", out)
	}
}
