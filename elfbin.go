// Command elfbin creates ELF object files containing data from other files.
//
// Each NAME=FILE argument defines one symbol NAME whose contents are the
// bytes of FILE. Linking the resulting object into a program makes that
// data addressable like any other symbol.
package main

import (
	"debug/elf"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/apparentlymart/elfbin/pkg/elfbin"
)

var (
	app = kingpin.New("elfbin", "Creates ELF object files containing data from other files.")

	classArg    = app.Flag("class", "ELF class (ELF32 or ELF64).").Default("ELF64").String()
	encodingArg = app.Flag("encoding", "ELF encoding (LSB or MSB).").Default("LSB").String()
	machineArg  = app.Flag("machine", "Target machine, as an architecture keyword or a 0x-prefixed hex ELF machine id.").Default("none").String()
	flagsArg    = app.Flag("flags", "Machine-specific ELF flags, as a 0x-prefixed hex value.").Default("0x00000000").String()
	outArg      = app.Flag("out", "Output filename.").Short('o').Required().String()
	verboseArg  = app.Flag("verbose", "Enable debug logging.").Short('v').Bool()
	symbolArgs  = app.Arg("NAME=FILE", "Define a symbol from a file's contents.").Strings()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))
	if *verboseArg {
		log.SetLevel(log.DebugLevel)
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// All argument parsing happens before the output file is created, so a
	// bad invocation never leaves a truncated file behind.
	hdr, err := parseHeader()
	if err != nil {
		return err
	}
	defs, err := parseSymbolDefs(*symbolArgs)
	if err != nil {
		return err
	}

	of, err := os.Create(*outArg)
	if err != nil {
		return err
	}
	defer of.Close()

	builder, err := elfbin.NewBuilder(hdr, of)
	if err != nil {
		return err
	}

	for _, def := range defs {
		f, err := os.Open(def.filename)
		if err != nil {
			return errors.Wrapf(err, "symbol %q", def.name)
		}
		sym, err := builder.AddSymbol(def.name, f)
		f.Close()
		if err != nil {
			return errors.Wrapf(err, "symbol %q", def.name)
		}
		log.Debugf("defined symbol %q: %d bytes at data offset %d", def.name, sym.Size, sym.Offset)
	}

	if err := builder.Close(); err != nil {
		return err
	}
	if err := of.Sync(); err != nil {
		return err
	}
	return of.Close()
}

func parseHeader() (elfbin.Header, error) {
	var hdr elfbin.Header
	var err error
	if hdr.Class, err = parseClass(*classArg); err != nil {
		return hdr, err
	}
	if hdr.Encoding, err = parseEncoding(*encodingArg); err != nil {
		return hdr, err
	}
	if hdr.Machine, err = parseMachine(*machineArg); err != nil {
		return hdr, err
	}
	if hdr.Flags, err = parseFlags(*flagsArg); err != nil {
		return hdr, err
	}
	return hdr, nil
}

type symbolDef struct {
	name     string
	filename string
}

func parseSymbolDefs(args []string) ([]symbolDef, error) {
	defs := make([]symbolDef, 0, len(args))
	for _, arg := range args {
		name, filename, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errors.Errorf("symbol definition must be NAME=FILENAME, not %q", arg)
		}
		defs = append(defs, symbolDef{name: name, filename: filename})
	}
	return defs, nil
}

func parseClass(s string) (elfbin.Class, error) {
	switch strings.ToUpper(s) {
	case "ELF32":
		return elfbin.ClassELF32, nil
	case "ELF64":
		return elfbin.ClassELF64, nil
	}
	return 0, errors.New("class must be either ELF32 or ELF64")
}

func parseEncoding(s string) (elfbin.Encoding, error) {
	switch strings.ToUpper(s) {
	case "LSB", "LE":
		return elfbin.EncodingLSB, nil
	case "MSB", "BE":
		return elfbin.EncodingMSB, nil
	}
	return 0, errors.New("encoding must be either LSB or MSB")
}

var machineKeywords = map[string]elf.Machine{
	"none":    elf.EM_NONE,
	"386":     elf.EM_386,
	"68k":     elf.EM_68K,
	"aarch64": elf.EM_AARCH64,
	"amd64":   elf.EM_X86_64,
	"arm":     elf.EM_ARM,
	"avr":     elf.EM_AVR,
	"riscv":   elf.EM_RISCV,
	"x64":     elf.EM_X86_64,
	"x86":     elf.EM_386,
	"x86_64":  elf.EM_X86_64,
}

func parseMachine(s string) (uint16, error) {
	if m, ok := machineKeywords[s]; ok {
		return uint16(m), nil
	}
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return 0, errors.New("machine must either be a hex value (with 0x prefix) or an architecture keyword")
	}
	v, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, errors.New("0x must be followed by up to four hex digits representing an ELF machine id")
	}
	return uint16(v), nil
}

func parseFlags(s string) (uint32, error) {
	digits, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return 0, errors.New("flags must be a hex value with 0x prefix")
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, errors.New("0x must be followed by up to eight hex digits representing ELF flags")
	}
	return uint32(v), nil
}
