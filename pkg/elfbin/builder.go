// Package elfbin builds ELF relocatable object files that contain symbols
// referring to arbitrary data, so that a standard ELF linker can embed
// external data (images, configs, binaries) into a program alongside normal
// symbols.
//
// It is a specialized encoder focused on that singular task: each file it
// produces carries exactly one read-only data section holding every
// registered symbol's bytes, plus the string and symbol tables a linker
// needs to find them. It is not a general-purpose ELF library.
package elfbin

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/apparentlymart/elfbin/pkg/binio"
)

// Class is the ELF file class (integer/address width).
type Class uint8

const (
	ClassELF32 Class = 1
	ClassELF64 Class = 2
)

func (c Class) String() string {
	switch c {
	case ClassELF32:
		return "ELF32"
	case ClassELF64:
		return "ELF64"
	}
	return "unknown"
}

// Encoding is the ELF data encoding (byte order).
type Encoding uint8

const (
	EncodingLSB Encoding = 1
	EncodingMSB Encoding = 2
)

func (e Encoding) String() string {
	switch e {
	case EncodingLSB:
		return "LSB"
	case EncodingMSB:
		return "MSB"
	}
	return "unknown"
}

// Header carries the ELF header values fixed at builder construction. Class
// and Encoding also select which layout and byte-order strategies the
// builder uses for the entire file. Machine and Flags are written as given;
// no validation against any registry is attempted.
type Header struct {
	Class    Class
	Encoding Encoding
	Machine  uint16
	Flags    uint32
}

// Symbol describes one symbol already written to a Builder. Offset is
// relative to the start of the data section, not the file.
type Symbol struct {
	Offset     uint64
	Size       uint64
	PaddedSize uint64
	Alignment  int
}

// Builder incrementally writes an ELF object file to a destination stream.
// The destination must support seeking: one header field (the section
// header table offset) is back-patched during Close.
//
// The builder owns the destination for its lifetime; no other writer may
// interleave with it. After any operation returns an error the builder is
// unusable and the partially written output should be discarded.
type Builder struct {
	w        *binio.Writer
	layout   layout
	shoff    binio.Placeholder
	rodata   int64  // file offset of the data section
	dataLen  uint64 // bytes accounted to the data section, padding included
	syms     []Symbol
	symNames []string
	shstrtab []byte
	closed   bool
}

var errClosed = errors.New("elfbin: builder already finalized")

// NewBuilder writes the ELF header for hdr to target and returns a builder
// ready to accept symbols. The header is written immediately; the section
// header table offset within it is patched later by Close.
func NewBuilder(hdr Header, target io.WriteSeeker) (*Builder, error) {
	var l layout
	switch hdr.Class {
	case ClassELF32:
		l = elf32Layout{}
	case ClassELF64:
		l = elf64Layout{}
	default:
		return nil, errors.New("elfbin: unknown ELF class")
	}

	var order binary.ByteOrder
	switch hdr.Encoding {
	case EncodingLSB:
		order = binary.LittleEndian
	case EncodingMSB:
		order = binary.BigEndian
	default:
		return nil, errors.New("elfbin: unknown ELF encoding")
	}

	w := binio.NewWriter(target, order)
	shoff := l.writeHeader(w, hdr)
	// One word of zero padding always separates the header from the data
	// region, even though the header end is already word-aligned.
	w.Skip(l.wordSize())
	rodata := w.Pos()
	if err := w.Err(); err != nil {
		return nil, err
	}

	return &Builder{
		w:        w,
		layout:   l,
		shoff:    shoff,
		rodata:   rodata,
		shstrtab: defaultShstrtab,
	}, nil
}

// SetSectionName replaces the name the data section is declared under
// (".rodata" by default). It must be called before Close.
func (b *Builder) SetSectionName(name string) {
	// The default table keeps the data section's name last exactly so this
	// swap cannot move the other three names' offsets.
	tab := make([]byte, 0, rodataNameOff+len(name)+1)
	tab = append(tab, defaultShstrtab[:rodataNameOff]...)
	tab = append(tab, name...)
	tab = append(tab, 0)
	b.shstrtab = tab
}

// AddSymbol defines a new symbol whose contents are read from src until EOF
// and copied into the data section, aligned to the word size of the
// destination class. Use AddSymbolAlign for a specific alignment.
//
// Nothing checks whether the same name was already defined; a duplicate
// produces a confusing object file that a linker may reject.
func (b *Builder) AddSymbol(name string, src io.Reader) (Symbol, error) {
	return b.AddSymbolAlign(name, int(b.layout.wordSize()), src)
}

// AddSymbolAlign defines a new symbol with a particular alignment, reading
// src to completion and copying its bytes into the data section. The gap
// bytes written around symbol data are ASCII spaces and are not counted in
// the symbol's Size.
func (b *Builder) AddSymbolAlign(name string, alignment int, src io.Reader) (Symbol, error) {
	if b.closed {
		return Symbol{}, errClosed
	}
	if err := b.w.Err(); err != nil {
		return Symbol{}, err
	}

	if alignment < 1 {
		alignment = 1
	}
	align := uint64(alignment)
	lead := padding(b.dataLen, align)
	b.w.Fill(' ', int64(lead))
	offset := b.dataLen + lead

	size := uint64(b.w.CopyFrom(src))
	trail := padding(size, align)
	b.w.Fill(' ', int64(trail))
	if err := b.w.Err(); err != nil {
		return Symbol{}, err
	}

	sym := Symbol{
		Offset:     offset,
		Size:       size,
		PaddedSize: lead + size + trail,
		Alignment:  alignment,
	}
	b.syms = append(b.syms, sym)
	b.symNames = append(b.symNames, name)
	b.dataLen = offset + size + trail
	return sym, nil
}

// Close finalizes the ELF metadata: it writes the string tables, the symbol
// table and the section header table, then patches the header's section
// header offset and leaves the stream positioned at end of file. Without a
// Close the file holds any symbol data written so far but no metadata, so a
// linker would see no symbols at all.
//
// Close does not close the destination; that remains the caller's.
func (b *Builder) Close() error {
	if b.closed {
		return errClosed
	}
	if err := b.w.Err(); err != nil {
		return err
	}
	b.closed = true

	shoff := b.writeMetadataSections()
	b.w.Resolve(b.shoff, uint64(shoff))
	if err := b.w.Err(); err != nil {
		return err
	}
	if n := b.w.Pending(); n != 0 {
		return errors.New("elfbin: internal error: unresolved header fields")
	}
	return nil
}

// padding returns how many fill bytes take pos up to a multiple of align.
func padding(pos, align uint64) uint64 {
	if align <= 1 {
		return 0
	}
	rem := pos % align
	if rem == 0 {
		return 0
	}
	return align - rem
}
