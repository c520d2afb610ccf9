// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"fmt"
	"io"
	"log/slog"
)

// The methods below forward to the module's [QuickSymbols]. When the
// owning tracer has tracing enabled they log the call and, where there is
// one, the result. A module without a query object behaves as if it had
// no symbols at all.

func (m *Module) traceEnabled() bool {
	return m.tracer != nil && m.tracer.enabled
}

func (m *Module) logQuery(msg string, args ...any) {
	t := m.tracer
	t.Logger.Info(msg, moduleAttrs(m, t.TimeNow(), args...)...)
}

// HasPartialSymbols reports whether the module has (or can lazily read) symbols.
func (m *Module) HasPartialSymbols() bool {
	retval := false

	// Symbols not yet read but readable on demand count as present.
	if !m.symbolsRead && m.quick != nil && m.quick.CanLazilyReadSymbols() {
		retval = true
	} else if m.quick != nil {
		retval = m.quick.HasSymbols(m)
	}

	if m.traceEnabled() {
		m.logQuery("qfHasSymbols", slog.Bool("result", retval))
	}
	return retval
}

// FindLastSourceSymtab returns the last source symtab of the module, or nil.
func (m *Module) FindLastSourceSymtab() *Symtab {
	if m.traceEnabled() {
		m.logQuery("qfFindLastSourceSymtabStart")
	}

	var retval *Symtab
	if m.quick != nil {
		retval = m.quick.FindLastSourceSymtab(m)
	}

	if m.traceEnabled() {
		m.logQuery("qfFindLastSourceSymtabDone", slog.String("result", retval.DisplayName()))
	}
	return retval
}

// ForgetCachedSourceInfo drops cached source paths.
func (m *Module) ForgetCachedSourceInfo() {
	if m.traceEnabled() {
		m.logQuery("qfForgetCachedSourceInfo")
	}
	if m.quick != nil {
		m.quick.ForgetCachedSourceInfo(m)
	}
}

// MapSymtabsMatchingFilename calls fn on each symtab matching name or
// realPath until fn returns true, and reports whether it did.
func (m *Module) MapSymtabsMatchingFilename(name, realPath string, fn func(*Symtab) bool) bool {
	if m.traceEnabled() {
		m.logQuery(
			"qfMapSymtabsMatchingFilenameStart",
			slog.String("name", name),
			slog.String("realPath", realPath),
		)
	}

	retval := false
	if m.quick != nil {
		retval = m.quick.MapSymtabsMatchingFilename(m, name, realPath, fn)
	}

	if m.traceEnabled() {
		m.logQuery("qfMapSymtabsMatchingFilenameDone", slog.Bool("result", retval))
	}
	return retval
}

// LookupSymbol returns the compunit defining name, or nil.
func (m *Module) LookupSymbol(kind BlockKind, name string, domain Domain) *CompunitSymtab {
	if m.traceEnabled() {
		m.logQuery(
			"qfLookupSymbolStart",
			slog.Int("kind", int(kind)),
			slog.String("name", name),
			slog.String("domain", domain.String()),
		)
	}

	var retval *CompunitSymtab
	if m.quick != nil {
		retval = m.quick.LookupSymbol(m, kind, name, domain)
	}

	if m.traceEnabled() {
		m.logQuery("qfLookupSymbolDone", slog.String("result", retval.DisplayName()))
	}
	return retval
}

// ExpandSymtabsForFunction expands the symtabs defining fn.
func (m *Module) ExpandSymtabsForFunction(fn string) {
	if m.traceEnabled() {
		m.logQuery("qfExpandSymtabsForFunction", slog.String("function", fn))
	}
	if m.quick != nil {
		m.quick.ExpandSymtabsForFunction(m, fn)
	}
}

// ExpandAllSymtabs expands every symtab.
func (m *Module) ExpandAllSymtabs() {
	if m.traceEnabled() {
		m.logQuery("qfExpandAllSymtabs")
	}
	if m.quick != nil {
		m.quick.ExpandAllSymtabs(m)
	}
}

// ExpandSymtabsWithFullname expands the symtabs of fullname.
func (m *Module) ExpandSymtabsWithFullname(fullname string) {
	if m.traceEnabled() {
		m.logQuery("qfExpandSymtabsWithFullname", slog.String("fullname", fullname))
	}
	if m.quick != nil {
		m.quick.ExpandSymtabsWithFullname(m, fullname)
	}
}

// FindCompunitSymtabByAddress returns the compunit covering addr, or nil.
func (m *Module) FindCompunitSymtabByAddress(addr uint64) *CompunitSymtab {
	if m.traceEnabled() {
		m.logQuery("qfFindCompunitSymtabByAddressStart", slog.String("address", fmt.Sprintf("%#x", addr)))
	}

	var retval *CompunitSymtab
	if m.quick != nil {
		retval = m.quick.FindCompunitSymtabByAddress(m, addr)
	}

	if m.traceEnabled() {
		m.logQuery("qfFindCompunitSymtabByAddressDone", slog.String("result", retval.DisplayName()))
	}
	return retval
}

// MapSymbolFilenames calls fn on every source file name.
func (m *Module) MapSymbolFilenames(fn func(filename, fullname string), needFullname bool) {
	if m.traceEnabled() {
		m.logQuery("qfMapSymbolFilenames", slog.Bool("needFullname", needFullname))
	}
	if m.quick != nil {
		m.quick.MapSymbolFilenames(m, fn, needFullname)
	}
}

// Dump writes a description of the module's symbols to w.
func (m *Module) Dump(w io.Writer) {
	if m.traceEnabled() {
		m.logQuery("qfDump")
	}
	if m.quick != nil {
		m.quick.Dump(m, w)
	}
}

// PrintStats writes statistics about the module's symbols to w.
func (m *Module) PrintStats(w io.Writer, printBcache bool) {
	if m.traceEnabled() {
		m.logQuery("qfPrintStats", slog.Bool("printBcache", printBcache))
	}
	if m.quick != nil {
		m.quick.PrintStats(m, w, printBcache)
	}
}

// MapMatchingSymbols calls fn on every symbol named name in the global
// or static block until fn returns false.
func (m *Module) MapMatchingSymbols(name string, domain Domain, global bool,
	fn func(cu *CompunitSymtab, symbol string) bool) {
	if m.traceEnabled() {
		m.logQuery(
			"qfMapMatchingSymbols",
			slog.String("name", name),
			slog.String("domain", domain.String()),
			slog.Bool("global", global),
		)
	}
	if m.quick != nil {
		m.quick.MapMatchingSymbols(m, name, domain, global, fn)
	}
}

// ExpandSymtabsMatching expands the compunits selected by the matchers
// and reports each one to notify.
func (m *Module) ExpandSymtabsMatching(fileMatcher func(filename string) bool, lookupName string,
	symbolMatcher func(symbol string) bool, notify func(cu *CompunitSymtab) bool, kind SearchDomain) {
	if m.traceEnabled() {
		m.logQuery(
			"qfExpandSymtabsMatching",
			slog.Bool("fileMatcher", fileMatcher != nil),
			slog.String("lookupName", lookupName),
			slog.Bool("symbolMatcher", symbolMatcher != nil),
			slog.Bool("expansionNotify", notify != nil),
			slog.String("kind", kind.String()),
		)
	}
	if m.quick != nil {
		m.quick.ExpandSymtabsMatching(m, fileMatcher, lookupName, symbolMatcher, notify, kind)
	}
}

// FindPCSectCompunitSymtab returns the compunit covering pc inside sec, or nil.
func (m *Module) FindPCSectCompunitSymtab(pc uint64, sec *Section, warnIfReadin bool) *CompunitSymtab {
	if m.traceEnabled() {
		m.logQuery(
			"qfFindPCSectCompunitSymtabStart",
			slog.String("pc", fmt.Sprintf("%#x", pc)),
			slog.String("section", sectionName(sec)),
			slog.Bool("warnIfReadin", warnIfReadin),
		)
	}

	var retval *CompunitSymtab
	if m.quick != nil {
		retval = m.quick.FindPCSectCompunitSymtab(m, pc, sec, warnIfReadin)
	}

	if m.traceEnabled() {
		m.logQuery("qfFindPCSectCompunitSymtabDone", slog.String("result", retval.DisplayName()))
	}
	return retval
}

// LookupGlobalSymbolLanguage returns the language of the global symbol
// name and whether it was found. This query is never traced.
func (m *Module) LookupGlobalSymbolLanguage(name string, domain Domain) (Language, bool) {
	if m.quick == nil {
		return LanguageUnknown, false
	}
	return m.quick.LookupGlobalSymbolLanguage(m, name, domain)
}
