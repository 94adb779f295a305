package markdown

import "strings"

// BreaksNeededForEmptyLineBefore returns how many newlines must be inserted
// at offset so that new content starts after an empty line. Spaces are
// ignored while scanning backwards. Content on the first line needs none.
func BreaksNeededForEmptyLineBefore(text string, offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	needed := 2
	firstLine := true
	for i := offset - 1; i >= 0 && needed > 0; i-- {
		switch text[i] {
		case ' ':
			continue
		case '\n':
			needed--
			firstLine = false
		default:
			return needed
		}
	}
	if firstLine {
		return 0
	}
	return needed
}

// Breaks returns n newlines.
func Breaks(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("\n", n)
}

// Placeholder is the image markup shown while an upload is pending: the
// label sits in the alt text unchanged and the destination is empty.
func Placeholder(label string) string {
	return "![" + label + "]()"
}

// Image renders final image markup.
func Image(alt, url string) string {
	return "![" + escapeAlt(alt) + "](" + escapeURL(url) + ")"
}

func escapeAlt(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

func escapeURL(s string) string {
	return strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29").Replace(strings.TrimSpace(s))
}
