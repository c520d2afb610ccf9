// SPDX-License-Identifier: GPL-3.0-or-later

// Package elfsym is a symbol reader for ELF images.
//
// It understands the ELF symbol tables only: STT_FILE entries provide the
// source file names, and function and object symbols provide the names
// and addresses. There is no line table and there are no probes, so the
// ReadLinetable, NewInit and Probes slots are left absent.
package elfsym

import (
	"debug/elf"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bassosimone/runtimex"
	"github.com/bassosimone/symtrace"
)

// Flavour is the [symtrace.OpTable] flavour of this reader.
const Flavour = "elf"

// ErrNotRead indicates that Read has not run for the module.
var ErrNotRead = errors.New("elfsym: symbols not read")

// ErrNoSection indicates that the image lacks the requested section.
var ErrNoSection = errors.New("elfsym: no such section")

// Reader reads ELF symbol tables.
//
// Per-module state lives between Init and Finish. Not safe for concurrent use.
type Reader struct {
	ops    *symtrace.OpTable
	states symtrace.AttachmentStore[moduleState]
}

// New returns a new [*Reader].
func New() *Reader {
	r := &Reader{}
	r.ops = &symtrace.OpTable{
		Flavour:  Flavour,
		Init:     r.init,
		Read:     r.read,
		Finish:   r.finish,
		Offsets:  r.offsets,
		Segments: segments,
		Relocate: r.relocate,
	}
	return r
}

// Ops returns the operation table of the reader.
//
// The same table is returned on every call.
func (r *Reader) Ops() *symtrace.OpTable {
	return r.ops
}

// Quick returns the query object to pair with [*Reader.Ops].
func (r *Reader) Quick() symtrace.QuickSymbols {
	return &quick{r: r}
}

type symbol struct {
	name   string
	addr   uint64
	size   uint64
	global bool
	fn     bool
	file   int
}

type moduleState struct {
	file      *elf.File
	offsets   symtrace.SectionAddrInfo
	symbols   []symbol // sorted by addr
	globals   map[string]int
	locals    map[string][]int // a static name may repeat across files
	compunits []*symtrace.CompunitSymtab // one per STT_FILE, plus the image
	isGo      bool
}

func (r *Reader) init(m *symtrace.Module) {
	if r.states.Get(m.ID()) != nil {
		return
	}
	r.states.Set(m.ID(), &moduleState{})
}

func (r *Reader) offsets(m *symtrace.Module, info symtrace.SectionAddrInfo) {
	st := r.states.Get(m.ID())
	runtimex.Assert(st != nil)
	st.offsets = info
}

func (r *Reader) read(m *symtrace.Module, flags symtrace.AddFlags) error {
	st := r.states.Get(m.ID())
	runtimex.Assert(st != nil)
	if st.file != nil {
		return nil
	}

	f, err := elf.Open(m.Name())
	if err != nil {
		return err
	}
	syms, err := f.Symbols()
	if errors.Is(err, elf.ErrNoSymbols) {
		syms, err = f.DynamicSymbols()
	}
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		f.Close()
		return fmt.Errorf("elfsym: reading symbols: %w", err)
	}

	st.file = f
	st.isGo = f.Section(".gopclntab") != nil
	st.load(m.Name(), syms)
	return nil
}

// load indexes syms. Local symbols following an STT_FILE entry belong
// to that file; everything else belongs to the image itself.
func (st *moduleState) load(image string, syms []elf.Symbol) {
	imageCU := newCompunit(filepath.Base(image), image)
	st.compunits = []*symtrace.CompunitSymtab{imageCU}
	st.symbols = st.symbols[:0]
	st.globals = make(map[string]int)
	st.locals = make(map[string][]int)

	current := 0
	for _, s := range syms {
		kind := elf.ST_TYPE(s.Info)
		bind := elf.ST_BIND(s.Info)
		if kind == elf.STT_FILE {
			st.compunits = append(st.compunits, newCompunit(s.Name, ""))
			current = len(st.compunits) - 1
			continue
		}
		if kind != elf.STT_FUNC && kind != elf.STT_OBJECT {
			continue
		}
		if s.Name == "" || s.Section == elf.SHN_UNDEF {
			continue
		}
		file := current
		if bind != elf.STB_LOCAL {
			file = 0
		}
		st.symbols = append(st.symbols, symbol{
			name:   s.Name,
			addr:   s.Value,
			size:   s.Size,
			global: bind != elf.STB_LOCAL,
			fn:     kind == elf.STT_FUNC,
			file:   file,
		})
	}

	sort.SliceStable(st.symbols, func(i, j int) bool {
		return st.symbols[i].addr < st.symbols[j].addr
	})
	for i, s := range st.symbols {
		if !s.global {
			st.locals[s.name] = append(st.locals[s.name], i)
			continue
		}
		if _, found := st.globals[s.name]; !found {
			st.globals[s.name] = i
		}
	}
}

func newCompunit(filename, fullname string) *symtrace.CompunitSymtab {
	primary := &symtrace.Symtab{Filename: filename, Fullname: fullname}
	return &symtrace.CompunitSymtab{Primary: primary, Symtabs: []*symtrace.Symtab{primary}}
}

func (r *Reader) finish(m *symtrace.Module) {
	st := r.states.Get(m.ID())
	if st == nil {
		return
	}
	if st.file != nil {
		st.file.Close()
	}
	r.states.Clear(m.ID())
}

// segments lists the PT_LOAD segments of image.
func segments(image string) (*symtrace.SegmentData, error) {
	f, err := elf.Open(image)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data := &symtrace.SegmentData{}
	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD {
			data.Segments = append(data.Segments, symtrace.Segment{Base: p.Vaddr, Size: p.Memsz})
		}
	}
	return data, nil
}

// relocate returns the contents of sec. Images are read as linked, so the
// contents are returned as stored, copied into buf when it is large enough.
func (r *Reader) relocate(m *symtrace.Module, sec *symtrace.Section, buf []byte) ([]byte, error) {
	if sec == nil {
		return nil, ErrNoSection
	}
	st := r.states.Get(m.ID())
	if st == nil || st.file == nil {
		return nil, ErrNotRead
	}
	s := st.file.Section(sec.Name)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSection, sec.Name)
	}
	data, err := s.Data()
	if err != nil {
		return nil, fmt.Errorf("elfsym: reading %s: %w", sec.Name, err)
	}
	if len(buf) >= len(data) {
		return buf[:copy(buf, data)], nil
	}
	return data, nil
}

// textDelta returns how far .text moved from its link-time address.
func (st *moduleState) textDelta() uint64 {
	if st.file == nil {
		return 0
	}
	text := st.file.Section(".text")
	if text == nil {
		return 0
	}
	for _, sa := range st.offsets {
		if sa.Name == ".text" {
			return sa.Addr - text.Addr
		}
	}
	return 0
}
