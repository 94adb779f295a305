package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Payload is a file-like blob taken from a paste, drop or file-input event.
// It is immutable once constructed; the bytes are only read on demand.
type Payload struct {
	Name     string
	MIMEType string
	open     func() (io.ReadCloser, error)
}

// NewPayload wraps in-memory bytes. The slice is copied.
func NewPayload(name, mimeType string, data []byte) *Payload {
	buf := append([]byte(nil), data...)
	return &Payload{
		Name:     name,
		MIMEType: mimeType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		},
	}
}

// PayloadFromReader builds a payload whose contents come from open each time
// they are read.
func PayloadFromReader(name, mimeType string, open func() (io.ReadCloser, error)) *Payload {
	return &Payload{Name: name, MIMEType: mimeType, open: open}
}

// PayloadFromFile builds a payload backed by a local file. The MIME type is
// sniffed from the file header and extension.
func PayloadFromFile(path string) (*Payload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat payload file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("payload path is not a regular file: %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payload file: %w", err)
	}
	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(f, head)
	f.Close()

	name := filepath.Base(path)
	return &Payload{
		Name:     name,
		MIMEType: DetectMIME(name, head[:n]),
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// ReadAll decodes the payload into raw bytes.
func (p *Payload) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.open == nil {
		return nil, fmt.Errorf("payload %q has no contents", p.Name)
	}
	rc, err := p.open()
	if err != nil {
		return nil, fmt.Errorf("open payload %q: %w", p.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read payload %q: %w", p.Name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

func (p *Payload) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.MIMEType)
}
