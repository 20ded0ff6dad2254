// README: Wire-format rendering limits tests.
package notify

import "testing"

func TestClipRuneSafe(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 20, "short"},
		{"exactly-twenty-chars", 20, "exactly-twenty-chars"},
		{"abcdefghijklmnopqrstuvwxyz", 20, "abcdefghijklmnopqrst"},
		{"ग्रॉसरी मेनू देखने के लिए यहाँ", 10, "ग्रॉसरी मे"},
	}
	for _, tc := range cases {
		if got := clip(tc.in, tc.max); got != tc.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestRenderButtonsClipsLabels(t *testing.T) {
	out := renderButtons([]Choice{
		{ID: "menu", Label: "यह एक बहुत ही लंबा बटन लेबल है जो कटेगा"},
	})
	if len(out) != 1 {
		t.Fatalf("buttons = %d, want 1", len(out))
	}
	reply := out[0]["reply"].(map[string]any)
	title := reply["title"].(string)
	if got := len([]rune(title)); got > 20 {
		t.Errorf("button title %d runes, want ≤ 20", got)
	}
	if reply["id"] != "menu" {
		t.Errorf("button id = %v, ids must never be clipped", reply["id"])
	}
}

func TestRenderSectionsCapsRows(t *testing.T) {
	rows := make([]Row, 14)
	for i := range rows {
		rows[i] = Row{ID: "r", Title: "t"}
	}
	out := renderSections([]ListSection{{Title: "sec", Rows: rows}})
	if len(out) != 1 {
		t.Fatalf("sections = %d, want 1", len(out))
	}
	got := out[0]["rows"].([]map[string]any)
	if len(got) != 10 {
		t.Errorf("rows = %d, want capped at 10", len(got))
	}
}
