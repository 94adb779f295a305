package media

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func names(ps []*Payload) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func TestExtractClipboardDropsNonFileItems(t *testing.T) {
	a := NewPayload("a.png", "image/png", nil)
	b := NewPayload("b.jpg", "image/jpeg", nil)
	ev := Event{
		Kind: EventClipboardPaste,
		Items: []TransferItem{
			{Kind: ItemKindString},
			{Kind: ItemKindFile, File: a},
			{Kind: ItemKindFile},
			{Kind: ItemKindString},
			{Kind: ItemKindFile, File: b},
		},
	}
	got := names(Extract(ev))
	if len(got) != 2 || got[0] != "a.png" || got[1] != "b.jpg" {
		t.Fatalf("Extract = %v, want [a.png b.jpg]", got)
	}
}

func TestExtractDragUsesItems(t *testing.T) {
	a := NewPayload("a.gif", "image/gif", nil)
	ev := Event{Kind: EventDragDrop, Items: []TransferItem{{Kind: ItemKindFile, File: a}}}
	if got := Extract(ev); len(got) != 1 || got[0] != a {
		t.Fatalf("Extract = %v", got)
	}
}

// File inputs yield every selected file, not the first one repeated.
// Older callers saw list[0] duplicated len(list) times.
func TestExtractFileInputReadsEachIndex(t *testing.T) {
	files := Files{
		NewPayload("one.png", "image/png", nil),
		NewPayload("two.png", "image/png", nil),
		NewPayload("three.png", "image/png", nil),
	}
	got := names(Extract(Event{Kind: EventFileInput, Files: files}))
	want := []string{"one.png", "two.png", "three.png"}
	if len(got) != len(want) {
		t.Fatalf("Extract = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Extract[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractEmptySources(t *testing.T) {
	for _, ev := range []Event{
		{Kind: EventClipboardPaste},
		{Kind: EventDragDrop, Items: []TransferItem{{Kind: ItemKindString}}},
		{Kind: EventFileInput},
		{Kind: EventFileInput, Files: Files{}},
	} {
		if got := Extract(ev); len(got) != 0 {
			t.Fatalf("Extract(%v) = %v, want empty", ev.Kind, got)
		}
	}
}

func TestEventConsistent(t *testing.T) {
	one := Files{NewPayload("a.png", "image/png", nil)}
	items := []TransferItem{{Kind: ItemKindFile, File: one[0]}}

	for _, ev := range []Event{
		{Kind: EventClipboardPaste},
		{Kind: EventClipboardPaste, Items: items},
		{Kind: EventDragDrop, Items: items, Files: one},
		{Kind: EventFileInput},
		{Kind: EventFileInput, Files: one},
	} {
		if !ev.Consistent() {
			t.Errorf("%v event with %d items should be consistent", ev.Kind, len(ev.Items))
		}
	}
	for _, ev := range []Event{
		{Kind: EventClipboardPaste, Files: one},
		{Kind: EventDragDrop, Files: one},
		{Kind: EventFileInput, Items: items},
		{Kind: EventUnknown},
	} {
		if ev.Consistent() {
			t.Errorf("%v event with %d items should not be consistent", ev.Kind, len(ev.Items))
		}
	}
}

func TestEventKindValid(t *testing.T) {
	if EventUnknown.Valid() || EventKind(42).Valid() {
		t.Fatal("unexpected valid kind")
	}
	if !EventFileInput.Valid() || EventFileInput.String() != "file-input" {
		t.Fatal("file-input should be valid")
	}
}

func TestPayloadReadAll(t *testing.T) {
	data := []byte("hello")
	p := NewPayload("a.txt", "text/plain", data)
	data[0] = 'J'

	got, err := p.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("ReadAll = %q, want hello", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.ReadAll(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestPayloadFromFileSniffsType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot")
	if err := os.WriteFile(path, pngBytes, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := PayloadFromFile(path)
	if err != nil {
		t.Fatalf("PayloadFromFile: %v", err)
	}
	if p.Name != "shot" || p.MIMEType != "image/png" {
		t.Fatalf("unexpected payload: %s", p)
	}
	got, err := p.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(pngBytes) {
		t.Fatalf("read %d bytes, want %d", len(got), len(pngBytes))
	}
}

func TestPayloadFromFileRejectsDirectory(t *testing.T) {
	if _, err := PayloadFromFile(t.TempDir()); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestDetectMIME(t *testing.T) {
	if got := DetectMIME("x.bin", pngBytes); got != "image/png" {
		t.Errorf("sniffed = %q", got)
	}
	if got := DetectMIME("photo.JPG", nil); got != "image/jpeg" {
		t.Errorf("by extension = %q", got)
	}
	if got := DetectMIME("notes", []byte("plain words")); got != "text/plain" {
		t.Errorf("fallback = %q", got)
	}
	if got := DetectMIME("noext", nil); got != "" {
		t.Errorf("unknown = %q", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd": "passwd",
		"a..b.png":         "ab.png",
		"dir/pic.png":      "pic.png",
		"":                 "",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
