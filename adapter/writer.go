package adapter

import (
	"io"
	"os"
	"sync"

	"github.com/logfan/logfan/core"
)

// Writer delivers each record as one newline-terminated line on an
// io.Writer. Writes are serialized, so a Writer may back multiple
// bindings concurrently.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer adapter around w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Stdout returns a Writer adapter on standard output.
func Stdout() *Writer {
	return NewWriter(os.Stdout)
}

// Stderr returns a Writer adapter on standard error.
func Stderr() *Writer {
	return NewWriter(os.Stderr)
}

// Handle implements dispatch.Adapter.
func (a *Writer) Handle(formatted string, _ *core.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := io.WriteString(a.w, formatted); err != nil {
		return err
	}
	_, err := io.WriteString(a.w, "\n")
	return err
}
