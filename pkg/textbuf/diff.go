package textbuf

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Diff returns a line-level diff of two document versions.
func Diff(before, after string) []Line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lineArray)

	var lines []Line
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text, NewLine: newLine})
				newLine++
			}
		}
	}
	return lines
}

// Changed drops context lines.
func Changed(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Type != LineContext {
			out = append(out, l)
		}
	}
	return out
}
