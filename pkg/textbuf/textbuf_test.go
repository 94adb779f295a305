package textbuf

import (
	"testing"
	"unicode/utf8"
)

func TestMemoryReplaceSelectionAdvancesCaret(t *testing.T) {
	m := NewMemory("hello world", 5)
	m.ReplaceSelection(",")
	st := m.State()
	if st.Text != "hello, world" {
		t.Fatalf("text = %q", st.Text)
	}
	if st.Selection != (Selection{Start: 6, End: 6}) {
		t.Fatalf("selection = %+v", st.Selection)
	}

	m.SetSelectionRange(Selection{Start: 7, End: 12})
	m.ReplaceSelection("there")
	if got := m.Text(); got != "hello, there" {
		t.Fatalf("text = %q", got)
	}
}

func TestMemoryClampsSelection(t *testing.T) {
	m := NewMemory("abc", 99)
	if st := m.State(); st.Selection != (Selection{Start: 3, End: 3}) {
		t.Fatalf("selection = %+v", st.Selection)
	}
	m.SetSelectionRange(Selection{Start: 2, End: -4})
	if st := m.State(); st.Selection != (Selection{Start: 0, End: 2}) {
		t.Fatalf("selection = %+v", st.Selection)
	}
}

func TestMemorySnapsOffsetsToRuneStart(t *testing.T) {
	m := NewMemory("héllo", 2)
	if st := m.State(); st.Selection != (Selection{Start: 1, End: 1}) {
		t.Fatalf("selection = %+v", st.Selection)
	}
	m.ReplaceSelection("X")
	if got := m.Text(); got != "hXéllo" || !utf8.ValidString(got) {
		t.Fatalf("text = %q", got)
	}

	m.SetSelectionRange(Selection{Start: 3, End: 4})
	if st := m.State(); st.Selection != (Selection{Start: 2, End: 4}) {
		t.Fatalf("selection = %+v", st.Selection)
	}
	m.Insert(3, "!")
	if got := m.Text(); got != "hX!éllo" {
		t.Fatalf("text = %q", got)
	}
}

func TestMemoryInsertShiftsSelection(t *testing.T) {
	m := NewMemory("abcdef", 4)
	m.Insert(1, "XY")
	st := m.State()
	if st.Text != "aXYbcdef" || st.Selection != (Selection{Start: 6, End: 6}) {
		t.Fatalf("state = %+v", st)
	}
	m.Insert(100, "!")
	if st := m.State(); st.Text != "aXYbcdef!" || st.Selection.Start != 6 {
		t.Fatalf("state = %+v", st)
	}
}

func TestSubstring(t *testing.T) {
	cases := []struct {
		text          string
		start, length int
		want          string
	}{
		{"abcdef", 1, 3, "bcd"},
		{"abcdef", 4, 10, "ef"},
		{"abcdef", 6, 1, ""},
		{"abcdef", -2, 2, "ab"},
		{"abcdef", 0, 0, ""},
	}
	for _, c := range cases {
		if got := Substring(c.text, c.start, c.length); got != c.want {
			t.Errorf("Substring(%q, %d, %d) = %q, want %q", c.text, c.start, c.length, got, c.want)
		}
	}
}

func TestDiffReportsAddedLine(t *testing.T) {
	lines := Changed(Diff("alpha\nbeta\n", "alpha\n![image](u)\nbeta\n"))
	if len(lines) != 1 {
		t.Fatalf("changed = %+v", lines)
	}
	if lines[0].Type != LineAdded || lines[0].Text != "![image](u)" || lines[0].NewLine != 2 {
		t.Fatalf("unexpected line: %+v", lines[0])
	}
}
