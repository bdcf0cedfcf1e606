package binio

import (
	"fmt"
	"io"
)

// Buffer is an in-memory io.WriteSeeker, for building files in memory the
// way an *os.File would be written. The zero value is ready to use.
type Buffer struct {
	buf []byte
	pos int64
}

func (b *Buffer) Write(p []byte) (int, error) {
	if need := b.pos + int64(len(p)); need > int64(len(b.buf)) {
		grown := make([]byte, need)
		copy(grown, b.buf)
		b.buf = grown
	}
	copy(b.buf[b.pos:], p)
	b.pos += int64(len(p))
	return len(p), nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("negative seek position %d", pos)
	}
	b.pos = pos
	return pos, nil
}

// Bytes returns the written contents. The slice is only valid until the next
// write.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the total length of the written contents.
func (b *Buffer) Len() int {
	return len(b.buf)
}
