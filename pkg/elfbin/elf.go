package elfbin

import "unsafe"

// On-disk record layouts for the two ELF classes. The field order matches
// the format exactly, so a whole record can be serialized in one
// binary.Write; note the 64-bit symbol entry places Info/Other/Shndx ahead
// of Val/Size while the 32-bit one trails them.

type Sym32 struct {
	Name  uint32
	Val   uint32
	Size  uint32
	Info  uint8
	Other uint8
	Shndx uint16
}

type Sym64 struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Val   uint64
	Size  uint64
}

type Shdr32 struct {
	Name      uint32
	Type      uint32
	Flags     uint32
	Addr      uint32
	Offset    uint32
	Size      uint32
	Link      uint32
	Info      uint32
	AddrAlign uint32
	EntSize   uint32
}

type Shdr64 struct {
	Name      uint32
	Type      uint32
	Flags     uint64
	Addr      uint64
	Offset    uint64
	Size      uint64
	Link      uint32
	Info      uint32
	AddrAlign uint64
	EntSize   uint64
}

const Sym32Size = int(unsafe.Sizeof(Sym32{}))
const Sym64Size = int(unsafe.Sizeof(Sym64{}))
const Shdr32Size = int(unsafe.Sizeof(Shdr32{}))
const Shdr64Size = int(unsafe.Sizeof(Shdr64{}))

// Ehdr32Size and Ehdr64Size are the encoded lengths of the fixed header for
// each class, which the header's own e_ehsize field must declare.
const Ehdr32Size = 52
const Ehdr64Size = 64

var magic = []byte("\177ELF")

// The output always carries exactly these five sections, in this order. The
// indices are cross-referenced from the ELF header (e_shstrndx), from every
// symbol entry (st_shndx) and from the symbol table's sh_link, so the
// emission order in Builder.Close must not change independently of them.
const (
	nullSectionIdx     = 0
	shstrtabSectionIdx = 1
	rodataSectionIdx   = 2
	strtabSectionIdx   = 3
	symtabSectionIdx   = 4

	sectionCount = 5
)

// defaultShstrtab is the section-name string table. The data section's name
// is deliberately last so that SetSectionName can swap it out by appending,
// leaving the other three name offsets untouched.
var defaultShstrtab = []byte("\x00.shstrtab\x00.strtab\x00.symtab\x00.rodata\x00")

const (
	shstrtabNameOff = 1
	strtabNameOff   = 11
	symtabNameOff   = 19
	rodataNameOff   = 27
)
