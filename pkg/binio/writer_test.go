package binio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterIntegers(t *testing.T) {
	var buf Buffer
	w := NewWriter(&buf, binary.LittleEndian)
	w.WriteUint8(0x11)
	w.WriteUint16(0x2233)
	w.WriteUint32(0x44556677)
	w.WriteUint64(0x8899aabbccddeeff)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{
		0x11,
		0x33, 0x22,
		0x77, 0x66, 0x55, 0x44,
		0xff, 0xee, 0xdd, 0xcc, 0xbb, 0xaa, 0x99, 0x88,
	}, buf.Bytes())
	assert.Equal(t, int64(15), w.Pos())

	var bbuf Buffer
	bw := NewWriter(&bbuf, binary.BigEndian)
	bw.WriteUint16(0x2233)
	bw.WriteUint32(0x44556677)
	require.NoError(t, bw.Err())
	assert.Equal(t, []byte{0x22, 0x33, 0x44, 0x55, 0x66, 0x77}, bbuf.Bytes())
}

func TestWriterVal(t *testing.T) {
	type rec struct {
		A uint32
		B uint8
		C uint8
		D uint16
	}
	var buf Buffer
	w := NewWriter(&buf, binary.BigEndian)
	w.WriteVal(rec{A: 1, B: 2, C: 3, D: 4})
	require.NoError(t, w.Err())
	assert.Equal(t, []byte{0, 0, 0, 1, 2, 3, 0, 4}, buf.Bytes())
}

func TestAlignAndFill(t *testing.T) {
	var buf Buffer
	w := NewWriter(&buf, binary.LittleEndian)
	w.WriteBytes([]byte("abc"))

	added := w.Align(4, ' ')
	assert.Equal(t, int64(1), added)
	assert.Equal(t, int64(4), w.Pos())

	// Already aligned: no padding.
	added = w.Align(4, ' ')
	assert.Equal(t, int64(0), added)

	w.Fill('x', 2)
	w.Skip(2)
	require.NoError(t, w.Err())
	assert.Equal(t, []byte("abc xx\x00\x00"), buf.Bytes())
}

func TestPlaceholderResolve(t *testing.T) {
	var buf Buffer
	w := NewWriter(&buf, binary.LittleEndian)
	w.WriteUint16(0xaaaa)
	p := w.DeferUint32()
	w.WriteUint16(0xbbbb)
	assert.Equal(t, 1, w.Pending())

	w.Resolve(p, 0x11223344)
	require.NoError(t, w.Err())
	assert.Equal(t, 0, w.Pending())

	// Cursor restored to the end of the stream.
	assert.Equal(t, int64(8), w.Pos())
	assert.Equal(t, []byte{0xaa, 0xaa, 0x44, 0x33, 0x22, 0x11, 0xbb, 0xbb}, buf.Bytes())
}

func TestCopyFrom(t *testing.T) {
	var buf Buffer
	w := NewWriter(&buf, binary.LittleEndian)
	n := w.CopyFrom(bytes.NewReader([]byte("hello!")))
	require.NoError(t, w.Err())
	assert.Equal(t, int64(6), n)
	assert.Equal(t, []byte("hello!"), buf.Bytes())
}

type failingWriteSeeker struct {
	failAfter int
	err       error
}

func (f *failingWriteSeeker) Write(p []byte) (int, error) {
	if f.failAfter <= 0 {
		return 0, f.err
	}
	f.failAfter--
	return len(p), nil
}

func (f *failingWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	return 0, nil
}

func TestStickyError(t *testing.T) {
	wantErr := errors.New("disk full")
	w := NewWriter(&failingWriteSeeker{failAfter: 1, err: wantErr}, binary.LittleEndian)
	w.WriteUint32(1)
	require.NoError(t, w.Err())
	w.WriteUint32(2)
	assert.Equal(t, wantErr, w.Err())

	// Later writes keep the first error.
	w.WriteUint32(3)
	w.Fill(0, 8)
	assert.Equal(t, wantErr, w.Err())
}

func TestBufferSeek(t *testing.T) {
	var buf Buffer
	_, err := buf.Write([]byte("0123456789"))
	require.NoError(t, err)

	pos, err := buf.Seek(2, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)
	_, err = buf.Write([]byte("xx"))
	require.NoError(t, err)

	pos, err = buf.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos)
	assert.Equal(t, []byte("01xx456789"), buf.Bytes())

	// Writing past the end zero-fills the gap.
	_, err = buf.Seek(12, io.SeekStart)
	require.NoError(t, err)
	_, err = buf.Write([]byte("z"))
	require.NoError(t, err)
	assert.Equal(t, []byte("01xx456789\x00\x00z"), buf.Bytes())

	_, err = buf.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}
