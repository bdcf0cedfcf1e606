// Package binio provides a sequential, position-tracking writer for binary
// file formats that need both forward writing and back-patching of fields
// whose values are only known after later content has been written.
package binio

import (
	"encoding/binary"
	"io"
)

// Writer writes fixed-width integers and raw bytes to an io.WriteSeeker in a
// byte order chosen once at construction.
//
// Writer records the first error it encounters and turns every later call
// into a no-op, so a run of writes can be issued without checking each one;
// callers consult Err at phase boundaries. A Writer that has recorded an
// error must not be reused.
type Writer struct {
	ws      io.WriteSeeker
	order   binary.ByteOrder
	err     error
	pending int
}

// Placeholder identifies a byte position holding a placeholder value that
// must be overwritten with a final value via Resolve.
type Placeholder struct {
	pos   int64
	width int
}

func NewWriter(ws io.WriteSeeker, order binary.ByteOrder) *Writer {
	return &Writer{ws: ws, order: order}
}

// Err returns the first error encountered by any write or seek.
func (w *Writer) Err() error {
	return w.err
}

// Pos returns the current offset from the start of the stream.
func (w *Writer) Pos() int64 {
	if w.err != nil {
		return 0
	}
	pos, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		w.err = err
		return 0
	}
	return pos
}

func (w *Writer) WriteBytes(p []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.ws.Write(p); err != nil {
		w.err = err
	}
}

func (w *Writer) WriteUint8(v uint8) {
	w.WriteBytes([]byte{v})
}

func (w *Writer) WriteUint16(v uint16) {
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	w.WriteBytes(buf[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	w.WriteBytes(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	w.WriteBytes(buf[:])
}

// WriteVal serializes a fixed-size value (typically a packed record struct)
// field by field in the writer's byte order.
func (w *Writer) WriteVal(v any) {
	if w.err != nil {
		return
	}
	if err := binary.Write(w.ws, w.order, v); err != nil {
		w.err = err
	}
}

// Fill writes n copies of the fill byte.
func (w *Writer) Fill(fill byte, n int64) {
	if w.err != nil || n <= 0 {
		return
	}
	buf := make([]byte, n)
	if fill != 0 {
		for i := range buf {
			buf[i] = fill
		}
	}
	w.WriteBytes(buf)
}

// Skip writes n zero bytes.
func (w *Writer) Skip(n int64) {
	w.Fill(0, n)
}

// Align pads the stream with the fill byte up to the next multiple of n and
// returns how many bytes were added.
func (w *Writer) Align(n int64, fill byte) int64 {
	pos := w.Pos()
	if w.err != nil {
		return 0
	}
	pad := n - pos%n
	if pad == n {
		pad = 0
	}
	w.Fill(fill, pad)
	return pad
}

// DeferUint16 writes a zero placeholder and returns a token for resolving it.
func (w *Writer) DeferUint16() Placeholder {
	p := Placeholder{pos: w.Pos(), width: 2}
	w.WriteUint16(0)
	w.pending++
	return p
}

// DeferUint32 writes a zero placeholder and returns a token for resolving it.
func (w *Writer) DeferUint32() Placeholder {
	p := Placeholder{pos: w.Pos(), width: 4}
	w.WriteUint32(0)
	w.pending++
	return p
}

// DeferUint64 writes a zero placeholder and returns a token for resolving it.
func (w *Writer) DeferUint64() Placeholder {
	p := Placeholder{pos: w.Pos(), width: 8}
	w.WriteUint64(0)
	w.pending++
	return p
}

// Resolve overwrites the placeholder's position with v at the placeholder's
// declared width, then restores the cursor to where it was before the call.
// Each placeholder must be resolved exactly once before the stream is
// finalized.
func (w *Writer) Resolve(p Placeholder, v uint64) {
	end := w.Pos()
	if w.err != nil {
		return
	}
	if _, err := w.ws.Seek(p.pos, io.SeekStart); err != nil {
		w.err = err
		return
	}
	switch p.width {
	case 2:
		w.WriteUint16(uint16(v))
	case 4:
		w.WriteUint32(uint32(v))
	case 8:
		w.WriteUint64(v)
	}
	if w.err != nil {
		return
	}
	if _, err := w.ws.Seek(end, io.SeekStart); err != nil {
		w.err = err
		return
	}
	w.pending--
}

// Pending reports how many placeholders have been created but not resolved.
func (w *Writer) Pending() int {
	return w.pending
}

// CopyFrom copies src to the stream until EOF, returning the byte count.
func (w *Writer) CopyFrom(src io.Reader) int64 {
	if w.err != nil {
		return 0
	}
	n, err := io.Copy(w.ws, src)
	if err != nil {
		w.err = err
	}
	return n
}
