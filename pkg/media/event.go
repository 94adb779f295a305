package media

import "fmt"

// EventKind identifies which user gesture produced an Event.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventClipboardPaste
	EventDragDrop
	EventFileInput
)

func (k EventKind) String() string {
	switch k {
	case EventClipboardPaste:
		return "clipboard-paste"
	case EventDragDrop:
		return "drag-drop"
	case EventFileInput:
		return "file-input"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

func (k EventKind) Valid() bool {
	return k == EventClipboardPaste || k == EventDragDrop || k == EventFileInput
}

// Transfer item kinds as reported by a clipboard or drag data source.
const (
	ItemKindFile   = "file"
	ItemKindString = "string"
)

// TransferItem is one entry of a clipboard or drag item collection. Only
// entries of kind "file" carry a payload.
type TransferItem struct {
	Kind string
	File *Payload
}

// FileList is the indexed collection a file input hands over.
type FileList interface {
	Len() int
	Item(i int) *Payload
}

// Files is a slice-backed FileList.
type Files []*Payload

func (f Files) Len() int { return len(f) }

func (f Files) Item(i int) *Payload {
	if i < 0 || i >= len(f) {
		return nil
	}
	return f[i]
}

// Event is the acquisition gesture. Clipboard and drag events use Items,
// file-input events use Files.
type Event struct {
	Kind  EventKind
	Items []TransferItem
	Files FileList
}

// Consistent reports whether the event carries the collection its kind
// reads from. A clipboard or drag event holding only a file list, or a file
// input holding only transfer items, is the wrong shape. An event with
// neither collection is consistent and extracts nothing.
func (ev Event) Consistent() bool {
	switch ev.Kind {
	case EventClipboardPaste, EventDragDrop:
		return len(ev.Items) > 0 || ev.Files == nil
	case EventFileInput:
		return ev.Files != nil || len(ev.Items) == 0
	}
	return false
}

// Extract normalises an event into its ordered file payloads.
func Extract(ev Event) []*Payload {
	switch ev.Kind {
	case EventClipboardPaste, EventDragDrop:
		return FromTransferItems(ev.Items)
	case EventFileInput:
		return FromFileList(ev.Files)
	}
	return nil
}

// FromTransferItems keeps the file-bearing items in their original order and
// silently drops the rest (plain text, HTML, ...).
func FromTransferItems(items []TransferItem) []*Payload {
	out := make([]*Payload, 0, len(items))
	for _, item := range items {
		if item.Kind != ItemKindFile || item.File == nil {
			continue
		}
		out = append(out, item.File)
	}
	return out
}

// FromFileList returns every file of the list, reading each index in turn.
func FromFileList(list FileList) []*Payload {
	if list == nil {
		return []*Payload{}
	}
	out := make([]*Payload, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		if p := list.Item(i); p != nil {
			out = append(out, p)
		}
	}
	return out
}
