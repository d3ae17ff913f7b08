package bot

import (
	"strings"
	"testing"

	"pressgram/internal/domain"
)

func TestBuildSubscriptionsKeyboardMarkers(t *testing.T) {
	sources := []domain.Source{
		{ID: 1, Name: "Bloomberg"},
		{ID: 3, Name: "Reuters"},
	}

	keyboard := buildSubscriptionsKeyboard(sources, []int64{3})

	// One row per source plus the done row.
	if len(keyboard) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(keyboard))
	}

	if !strings.HasPrefix(keyboard[0][0].Text, "❌") {
		t.Fatalf("expected unsubscribed marker, got %q", keyboard[0][0].Text)
	}

	if !strings.HasPrefix(keyboard[1][0].Text, "✅") {
		t.Fatalf("expected subscribed marker, got %q", keyboard[1][0].Text)
	}

	if got := *keyboard[1][0].CallbackData; got != "toggle_sub_3" {
		t.Fatalf("unexpected callback data: %q", got)
	}

	if got := *keyboard[2][0].CallbackData; got != callbackSubsDone {
		t.Fatalf("unexpected done callback data: %q", got)
	}
}

func TestBuildSourcePickerKeyboard(t *testing.T) {
	sources := []domain.Source{
		{ID: 1, Name: "Bloomberg"},
		{ID: 2, Name: "Коммерсантъ"},
	}

	keyboard := buildSourcePickerKeyboard(sources)

	// "All sources" row, one row per source, back row.
	if len(keyboard) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(keyboard))
	}

	if got := *keyboard[0][0].CallbackData; got != "set_source_all" {
		t.Fatalf("expected all-sources option first, got %q", got)
	}

	if got := *keyboard[2][0].CallbackData; got != "set_source_2" {
		t.Fatalf("unexpected source callback data: %q", got)
	}

	if got := *keyboard[3][0].CallbackData; got != callbackSettings {
		t.Fatalf("expected back row to return to settings, got %q", got)
	}
}
