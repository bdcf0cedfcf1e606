package elfbin

import "debug/elf"

// writeMetadataSections writes everything that follows the data section:
// the section-name table, the symbol-name table, the symbol table and the
// section header table. It returns the file offset of the section header
// table so Close can patch it into the header.
//
// The section bodies must come out in this order; the header's e_shstrndx
// and every st_shndx and sh_link written below hard-code the resulting
// indices (see the *SectionIdx constants).
func (b *Builder) writeMetadataSections() int64 {
	w := b.w
	align := b.layout.wordSize()

	// .shstrtab: the fixed catalog of section names.
	w.Align(align, 0)
	shstrtabStart := w.Pos()
	w.WriteBytes(b.shstrtab)
	shstrtabLen := w.Pos() - shstrtabStart

	// .strtab: the symbol names, null-terminated, with the mandatory empty
	// string at offset zero. Each name's offset is its running position at
	// append time.
	w.Align(align, 0)
	strtabStart := w.Pos()
	w.WriteUint8(0)
	nameOffs := make([]uint32, 0, len(b.symNames))
	idx := uint32(1)
	for _, name := range b.symNames {
		nameOffs = append(nameOffs, idx)
		w.WriteBytes([]byte(name))
		w.WriteUint8(0)
		idx += uint32(len(name)) + 1
	}
	strtabLen := w.Pos() - strtabStart

	// .symtab: the format requires an all-zero entry at index zero even when
	// no symbols were registered, then one entry per symbol in registration
	// order. The data section's total size and strongest alignment fall out
	// of the same pass.
	w.Align(align, 0)
	symtabStart := w.Pos()
	var rodataSize uint64
	rodataAlign := uint64(1)
	b.layout.writeSym(w, symEntry{})
	for i, sym := range b.syms {
		b.layout.writeSym(w, symEntry{
			name:  nameOffs[i],
			val:   sym.Offset,
			size:  sym.Size,
			info:  uint8(elf.STB_GLOBAL)<<4 | uint8(elf.STT_OBJECT),
			other: 0,
			shndx: rodataSectionIdx,
		})
		rodataSize += sym.PaddedSize
		if uint64(sym.Alignment) > rodataAlign {
			rodataAlign = uint64(sym.Alignment)
		}
	}
	symtabLen := w.Pos() - symtabStart

	w.Align(align, 0)
	shoff := w.Pos()

	var shdrs [sectionCount]shdrEntry

	// Index 0: unused entry required by the format.
	shdrs[nullSectionIdx] = shdrEntry{}

	shdrs[shstrtabSectionIdx] = shdrEntry{
		name:    shstrtabNameOff,
		typ:     uint32(elf.SHT_STRTAB),
		flags:   uint64(elf.SHF_STRINGS),
		offset:  uint64(shstrtabStart),
		size:    uint64(shstrtabLen),
		entSize: 1,
	}

	// The data section; its final address is the linker's problem.
	shdrs[rodataSectionIdx] = shdrEntry{
		name:      rodataNameOff,
		typ:       uint32(elf.SHT_PROGBITS),
		flags:     uint64(elf.SHF_ALLOC),
		offset:    uint64(b.rodata),
		size:      rodataSize,
		addrAlign: rodataAlign,
	}

	shdrs[strtabSectionIdx] = shdrEntry{
		name:    strtabNameOff,
		typ:     uint32(elf.SHT_STRTAB),
		flags:   uint64(elf.SHF_STRINGS),
		offset:  uint64(strtabStart),
		size:    uint64(strtabLen),
		entSize: 1,
	}

	// .symtab links to .strtab; entry 1 is the first global.
	shdrs[symtabSectionIdx] = shdrEntry{
		name:    symtabNameOff,
		typ:     uint32(elf.SHT_SYMTAB),
		offset:  uint64(symtabStart),
		size:    uint64(symtabLen),
		link:    strtabSectionIdx,
		info:    1,
		entSize: uint64(b.layout.symEntSize()),
	}

	for _, s := range shdrs {
		b.layout.writeShdr(w, s)
	}

	return shoff
}
