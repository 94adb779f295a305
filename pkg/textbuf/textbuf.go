// Package textbuf defines the editor buffer contract the paste workflow
// drives, plus an in-memory implementation.
//
// Offsets are byte offsets into the UTF-8 text.
package textbuf

import (
	"sync"
	"unicode/utf8"
)

type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Selection) Len() int {
	return s.End - s.Start
}

// State is a snapshot of the document. It is never updated in place.
type State struct {
	Text      string    `json:"text"`
	Selection Selection `json:"selection"`
}

// Buffer is the shared document. The user may edit it concurrently, so
// callers must re-read State after any suspension point.
type Buffer interface {
	State() State
	// ReplaceSelection replaces the selected range with text and moves the
	// caret to the end of the inserted text.
	ReplaceSelection(text string)
	SetSelectionRange(sel Selection)
}

// Memory is a mutex-guarded Buffer.
type Memory struct {
	mu   sync.Mutex
	text string
	sel  Selection
}

// NewMemory returns a buffer holding text with the caret at offset caret.
// An offset inside a multi-byte rune moves back to the start of that rune.
func NewMemory(text string, caret int) *Memory {
	m := &Memory{text: text}
	m.sel = m.clamp(Selection{Start: caret, End: caret})
	return m
}

func (m *Memory) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Text: m.text, Selection: m.sel}
}

func (m *Memory) ReplaceSelection(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = m.text[:m.sel.Start] + text + m.text[m.sel.End:]
	caret := m.sel.Start + len(text)
	m.sel = Selection{Start: caret, End: caret}
}

func (m *Memory) SetSelectionRange(sel Selection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sel = m.clamp(sel)
}

// Insert places text at offset without touching the selection bounds other
// than shifting them past the insertion, the way a collaborator's edit lands.
func (m *Memory) Insert(offset int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	offset = runeStart(m.text, clampInt(offset, 0, len(m.text)))
	m.text = m.text[:offset] + text + m.text[offset:]
	if m.sel.Start >= offset {
		m.sel.Start += len(text)
	}
	if m.sel.End >= offset {
		m.sel.End += len(text)
	}
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func (m *Memory) clamp(sel Selection) Selection {
	sel.Start = runeStart(m.text, clampInt(sel.Start, 0, len(m.text)))
	sel.End = runeStart(m.text, clampInt(sel.End, 0, len(m.text)))
	if sel.End < sel.Start {
		sel.Start, sel.End = sel.End, sel.Start
	}
	return sel
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// runeStart moves offset back until it no longer splits a UTF-8 sequence.
func runeStart(text string, offset int) int {
	for offset > 0 && offset < len(text) && !utf8.RuneStart(text[offset]) {
		offset--
	}
	return offset
}

// Substring returns up to length bytes of text starting at start, clamped
// to the text bounds.
func Substring(text string, start, length int) string {
	if length <= 0 || start >= len(text) {
		return ""
	}
	if start < 0 {
		start = 0
	}
	end := start + length
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}
