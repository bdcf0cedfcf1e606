package elfbin

import (
	"debug/elf"

	"github.com/apparentlymart/elfbin/pkg/binio"
)

// symEntry and shdrEntry are the class-independent forms of a symbol-table
// entry and a section-header entry; a layout narrows them to the on-disk
// record for its class.
type symEntry struct {
	name  uint32
	val   uint64
	size  uint64
	info  uint8
	other uint8
	shndx uint16
}

type shdrEntry struct {
	name      uint32
	typ       uint32
	flags     uint64
	addr      uint64
	offset    uint64
	size      uint64
	link      uint32
	info      uint32
	addrAlign uint64
	entSize   uint64
}

// layout is the integer-width half of the format's two-axis dispatch: field
// sizes and record shapes for one ELF class. The byte-order half lives in
// the binio.Writer. Both are selected once at NewBuilder, never per field.
type layout interface {
	wordSize() int64
	symEntSize() int
	writeHeader(w *binio.Writer, hdr Header) binio.Placeholder
	writeSym(w *binio.Writer, s symEntry)
	writeShdr(w *binio.Writer, s shdrEntry)
}

type elf32Layout struct{}
type elf64Layout struct{}

// writeIdent writes the 16-byte e_ident block, which is single bytes
// throughout and therefore identical in both byte orders.
func writeIdent(w *binio.Writer, hdr Header) {
	w.WriteBytes(magic)
	w.WriteUint8(uint8(hdr.Class))
	w.WriteUint8(uint8(hdr.Encoding))
	w.WriteUint8(uint8(elf.EV_CURRENT))
	w.WriteUint8(uint8(elf.ELFOSABI_NONE))
	w.Skip(8)
}

func (elf32Layout) wordSize() int64 { return 4 }
func (elf32Layout) symEntSize() int { return Sym32Size }

func (elf32Layout) writeHeader(w *binio.Writer, hdr Header) binio.Placeholder {
	writeIdent(w, hdr)
	w.WriteUint16(uint16(elf.ET_REL))
	w.WriteUint16(hdr.Machine)
	w.WriteUint32(uint32(elf.EV_CURRENT))
	w.WriteUint32(0) // e_entry
	w.WriteUint32(0) // e_phoff
	shoff := w.DeferUint32()
	w.WriteUint32(hdr.Flags)
	ehsize := w.DeferUint16()
	w.WriteUint16(0) // e_phentsize
	w.WriteUint16(0) // e_phnum
	w.WriteUint16(uint16(Shdr32Size))
	w.WriteUint16(sectionCount)
	w.WriteUint16(shstrtabSectionIdx)
	w.Resolve(ehsize, Ehdr32Size)
	return shoff
}

func (elf32Layout) writeSym(w *binio.Writer, s symEntry) {
	w.WriteVal(Sym32{
		Name:  s.name,
		Val:   uint32(s.val),
		Size:  uint32(s.size),
		Info:  s.info,
		Other: s.other,
		Shndx: s.shndx,
	})
}

func (elf32Layout) writeShdr(w *binio.Writer, s shdrEntry) {
	w.WriteVal(Shdr32{
		Name:      s.name,
		Type:      s.typ,
		Flags:     uint32(s.flags),
		Addr:      uint32(s.addr),
		Offset:    uint32(s.offset),
		Size:      uint32(s.size),
		Link:      s.link,
		Info:      s.info,
		AddrAlign: uint32(s.addrAlign),
		EntSize:   uint32(s.entSize),
	})
}

func (elf64Layout) wordSize() int64 { return 8 }
func (elf64Layout) symEntSize() int { return Sym64Size }

func (elf64Layout) writeHeader(w *binio.Writer, hdr Header) binio.Placeholder {
	writeIdent(w, hdr)
	w.WriteUint16(uint16(elf.ET_REL))
	w.WriteUint16(hdr.Machine)
	w.WriteUint32(uint32(elf.EV_CURRENT))
	w.WriteUint64(0) // e_entry
	w.WriteUint64(0) // e_phoff
	shoff := w.DeferUint64()
	w.WriteUint32(hdr.Flags)
	ehsize := w.DeferUint16()
	w.WriteUint16(0) // e_phentsize
	w.WriteUint16(0) // e_phnum
	w.WriteUint16(uint16(Shdr64Size))
	w.WriteUint16(sectionCount)
	w.WriteUint16(shstrtabSectionIdx)
	w.Resolve(ehsize, Ehdr64Size)
	return shoff
}

func (elf64Layout) writeSym(w *binio.Writer, s symEntry) {
	w.WriteVal(Sym64{
		Name:  s.name,
		Info:  s.info,
		Other: s.other,
		Shndx: s.shndx,
		Val:   s.val,
		Size:  s.size,
	})
}

func (elf64Layout) writeShdr(w *binio.Writer, s shdrEntry) {
	w.WriteVal(Shdr64{
		Name:      s.name,
		Type:      s.typ,
		Flags:     s.flags,
		Addr:      s.addr,
		Offset:    s.offset,
		Size:      s.size,
		Link:      s.link,
		Info:      s.info,
		AddrAlign: s.addrAlign,
		EntSize:   s.entSize,
	})
}
