// SPDX-License-Identifier: GPL-3.0-or-later

package elfsym

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bassosimone/symtrace"
)

// quick answers symbol queries from the tables indexed by Read.
type quick struct {
	r *Reader
}

var _ symtrace.QuickSymbols = &quick{}

func (q *quick) state(m *symtrace.Module) *moduleState {
	st := q.r.states.Get(m.ID())
	if st == nil || st.file == nil {
		return nil
	}
	return st
}

func (q *quick) HasSymbols(m *symtrace.Module) bool {
	st := q.state(m)
	return st != nil && len(st.symbols) > 0
}

func (q *quick) CanLazilyReadSymbols() bool {
	return false
}

func (q *quick) FindLastSourceSymtab(m *symtrace.Module) *symtrace.Symtab {
	st := q.state(m)
	if st == nil || len(st.compunits) < 2 {
		return nil
	}
	return st.compunits[len(st.compunits)-1].Primary
}

// ForgetCachedSourceInfo is a no-op: full names are never resolved.
func (q *quick) ForgetCachedSourceInfo(m *symtrace.Module) {}

func (q *quick) MapSymtabsMatchingFilename(
	m *symtrace.Module, name, realPath string, fn func(*symtrace.Symtab) bool) bool {
	st := q.state(m)
	if st == nil {
		return false
	}
	for _, cu := range st.compunits[1:] {
		if !matchFilename(cu.Primary.Filename, name, realPath) {
			continue
		}
		if fn(cu.Primary) {
			return true
		}
	}
	return false
}

func matchFilename(filename, name, realPath string) bool {
	switch {
	case filename == name:
		return true
	case realPath != "" && filename == realPath:
		return true
	default:
		return strings.HasSuffix(filename, "/"+name)
	}
}

func (q *quick) LookupSymbol(
	m *symtrace.Module, kind symtrace.BlockKind, name string, domain symtrace.Domain) *symtrace.CompunitSymtab {
	st := q.state(m)
	if st == nil {
		return nil
	}
	idxs := st.lookup(name, kind == symtrace.BlockGlobal)
	if len(idxs) == 0 {
		return nil
	}
	return st.compunits[st.symbols[idxs[0]].file]
}

// lookup returns the indexes of the symbols named name in the global or
// static block.
func (st *moduleState) lookup(name string, global bool) []int {
	if !global {
		return st.locals[name]
	}
	if idx, found := st.globals[name]; found {
		return []int{idx}
	}
	return nil
}

// The symbol tables are fully indexed by Read, so expansion is a no-op.

func (q *quick) ExpandSymtabsForFunction(m *symtrace.Module, fn string) {}

func (q *quick) ExpandAllSymtabs(m *symtrace.Module) {}

func (q *quick) ExpandSymtabsWithFullname(m *symtrace.Module, fullname string) {}

func (q *quick) FindCompunitSymtabByAddress(m *symtrace.Module, addr uint64) *symtrace.CompunitSymtab {
	st := q.state(m)
	if st == nil {
		return nil
	}
	return st.findAddress(addr)
}

// FindPCSectCompunitSymtab restricts the address search to sec when sec
// has a known extent. Symbols are never read lazily, so warnIfReadin has
// nothing to warn about.
func (q *quick) FindPCSectCompunitSymtab(
	m *symtrace.Module, pc uint64, sec *symtrace.Section, warnIfReadin bool) *symtrace.CompunitSymtab {
	st := q.state(m)
	if st == nil {
		return nil
	}
	if sec != nil && sec.Size > 0 && (pc < sec.Addr || pc-sec.Addr >= sec.Size) {
		return nil
	}
	return st.findAddress(pc)
}

// findAddress returns the compunit of the symbol covering the run-time
// address addr, or nil.
func (st *moduleState) findAddress(addr uint64) *symtrace.CompunitSymtab {
	addr -= st.textDelta()
	i := sort.Search(len(st.symbols), func(i int) bool {
		return st.symbols[i].addr > addr
	}) - 1
	if i < 0 {
		return nil
	}
	sym := st.symbols[i]
	if sym.size != 0 && addr >= sym.addr+sym.size {
		return nil
	}
	return st.compunits[sym.file]
}

func (q *quick) MapSymbolFilenames(m *symtrace.Module, fn func(filename, fullname string), needFullname bool) {
	st := q.state(m)
	if st == nil {
		return
	}
	for _, cu := range st.compunits[1:] {
		fullname := ""
		if needFullname {
			fullname = cu.Primary.Filename
		}
		fn(cu.Primary.Filename, fullname)
	}
}

func (q *quick) LookupGlobalSymbolLanguage(
	m *symtrace.Module, name string, domain symtrace.Domain) (symtrace.Language, bool) {
	st := q.state(m)
	if st == nil {
		return symtrace.LanguageUnknown, false
	}
	if _, found := st.globals[name]; !found {
		return symtrace.LanguageUnknown, false
	}
	if st.isGo {
		return symtrace.LanguageGo, true
	}
	return symtrace.LanguageUnknown, true
}

func (q *quick) MapMatchingSymbols(m *symtrace.Module, name string, domain symtrace.Domain, global bool,
	fn func(cu *symtrace.CompunitSymtab, symbol string) bool) {
	st := q.state(m)
	if st == nil {
		return
	}
	for _, idx := range st.lookup(name, global) {
		sym := st.symbols[idx]
		if !fn(st.compunits[sym.file], sym.name) {
			return
		}
	}
}

func (q *quick) ExpandSymtabsMatching(m *symtrace.Module, fileMatcher func(filename string) bool, lookupName string,
	symbolMatcher func(symbol string) bool, notify func(cu *symtrace.CompunitSymtab) bool, kind symtrace.SearchDomain) {
	st := q.state(m)
	if st == nil {
		return
	}

	filtered := lookupName != "" || symbolMatcher != nil
	matched := make([]bool, len(st.compunits))
	if filtered {
		for _, sym := range st.symbols {
			switch {
			case matched[sym.file]:
			case !searchKindMatches(sym, kind):
			case lookupName != "" && sym.name != lookupName:
			case symbolMatcher != nil && !symbolMatcher(sym.name):
			default:
				matched[sym.file] = true
			}
		}
	}

	for i, cu := range st.compunits {
		if filtered && !matched[i] {
			continue
		}
		if fileMatcher != nil && !fileMatcher(cu.Primary.Filename) {
			continue
		}
		if notify != nil && !notify(cu) {
			return
		}
	}
}

// searchKindMatches maps ELF symbol types onto search domains. ELF has
// no type or module symbols.
func searchKindMatches(sym symbol, kind symtrace.SearchDomain) bool {
	switch kind {
	case symtrace.SearchAll:
		return true
	case symtrace.SearchFunctions:
		return sym.fn
	case symtrace.SearchVariables:
		return !sym.fn
	default:
		return false
	}
}

func (q *quick) PrintStats(m *symtrace.Module, w io.Writer, printBcache bool) {
	fmt.Fprintf(w, "Statistics for '%s':\n", m.Name())
	st := q.state(m)
	if st == nil {
		fmt.Fprintf(w, "  No symbols read.\n")
		return
	}
	fmt.Fprintf(w, "  Number of symbols: %d\n", len(st.symbols))
	fmt.Fprintf(w, "  Number of source files: %d\n", len(st.compunits)-1)
	if printBcache {
		fmt.Fprintf(w, "  Global names indexed: %d\n", len(st.globals))
		fmt.Fprintf(w, "  Local names indexed: %d\n", len(st.locals))
	}
}

func (q *quick) Dump(m *symtrace.Module, w io.Writer) {
	st := q.state(m)
	if st == nil {
		fmt.Fprintf(w, "%s: no symbols read\n", m.Name())
		return
	}
	fmt.Fprintf(w, "%s: %d symbols, %d source files\n", m.Name(), len(st.symbols), len(st.compunits)-1)
	for _, s := range st.symbols {
		fmt.Fprintf(w, "%#016x %8d %s\n", s.addr, s.size, s.name)
	}
}
