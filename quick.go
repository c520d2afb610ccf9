// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"fmt"
	"io"
)

// Symtab is the symbol table of a single source file.
type Symtab struct {
	// Filename is the name as recorded in the debug info.
	Filename string

	// Fullname is the resolved path, if known.
	Fullname string
}

// DisplayName returns the name to use when printing the symtab.
func (s *Symtab) DisplayName() string {
	if s == nil {
		return "NULL"
	}
	return s.Filename
}

// CompunitSymtab groups the symtabs of a compilation unit.
type CompunitSymtab struct {
	// Primary is the symtab of the main source file.
	Primary *Symtab

	// Symtabs contains all the symtabs, including Primary.
	Symtabs []*Symtab
}

// DisplayName returns the name of the primary symtab, or "NULL".
func (c *CompunitSymtab) DisplayName() string {
	if c == nil {
		return "NULL"
	}
	return c.Primary.DisplayName()
}

// BlockKind selects the global or static block.
type BlockKind int

const (
	BlockGlobal BlockKind = iota
	BlockStatic
)

// Domain is the namespace a symbol lives in.
type Domain int

const (
	DomainUndef Domain = iota
	DomainVar
	DomainStruct
	DomainModule
	DomainLabel
)

var domainNames = [...]string{
	DomainUndef:  "UNDEF_DOMAIN",
	DomainVar:    "VAR_DOMAIN",
	DomainStruct: "STRUCT_DOMAIN",
	DomainModule: "MODULE_DOMAIN",
	DomainLabel:  "LABEL_DOMAIN",
}

// String implements [fmt.Stringer].
func (d Domain) String() string {
	if d >= 0 && int(d) < len(domainNames) {
		return domainNames[d]
	}
	return fmt.Sprintf("Domain(%d)", int(d))
}

// SearchDomain selects the kind of symbols an expansion looks for.
type SearchDomain int

const (
	SearchVariables SearchDomain = iota
	SearchFunctions
	SearchTypes
	SearchModules
	SearchAll
)

var searchDomainNames = [...]string{
	SearchVariables: "VARIABLES_DOMAIN",
	SearchFunctions: "FUNCTIONS_DOMAIN",
	SearchTypes:     "TYPES_DOMAIN",
	SearchModules:   "MODULES_DOMAIN",
	SearchAll:       "ALL_DOMAIN",
}

// String implements [fmt.Stringer].
func (d SearchDomain) String() string {
	if d >= 0 && int(d) < len(searchDomainNames) {
		return searchDomainNames[d]
	}
	return fmt.Sprintf("SearchDomain(%d)", int(d))
}

// Language is the source language of a symbol.
type Language int

const (
	LanguageUnknown Language = iota
	LanguageC
	LanguageCPlusPlus
	LanguageGo
	LanguageRust
	LanguageAsm
)

// QuickSymbols is the read-only symbol query capability of a [*Module].
//
// Unlike [*OpTable] every method is required. The tracing layer never
// wraps this object: the forwarding methods on [*Module] consult the
// owning [*Tracer] toggle before logging.
type QuickSymbols interface {
	// HasSymbols reports whether the module has any symbols.
	HasSymbols(m *Module) bool

	// CanLazilyReadSymbols reports whether symbols can be read on demand.
	CanLazilyReadSymbols() bool

	// FindLastSourceSymtab returns the last source symtab, or nil.
	FindLastSourceSymtab(m *Module) *Symtab

	// ForgetCachedSourceInfo drops cached full paths.
	ForgetCachedSourceInfo(m *Module)

	// MapSymtabsMatchingFilename invokes fn on every symtab matching name
	// or realPath until fn returns true. It returns whether fn did so.
	MapSymtabsMatchingFilename(m *Module, name, realPath string, fn func(*Symtab) bool) bool

	// LookupSymbol returns the compunit defining name, or nil.
	LookupSymbol(m *Module, kind BlockKind, name string, domain Domain) *CompunitSymtab

	// ExpandSymtabsForFunction expands the symtabs that define fn.
	ExpandSymtabsForFunction(m *Module, fn string)

	// ExpandAllSymtabs expands every symtab of the module.
	ExpandAllSymtabs(m *Module)

	// ExpandSymtabsWithFullname expands the symtabs of the given file.
	ExpandSymtabsWithFullname(m *Module, fullname string)

	// FindCompunitSymtabByAddress returns the compunit covering addr, or nil.
	FindCompunitSymtabByAddress(m *Module, addr uint64) *CompunitSymtab

	// MapSymbolFilenames invokes fn on every source file name.
	MapSymbolFilenames(m *Module, fn func(filename, fullname string), needFullname bool)

	// LookupGlobalSymbolLanguage returns the language of the global
	// symbol name and whether the symbol was found.
	LookupGlobalSymbolLanguage(m *Module, name string, domain Domain) (Language, bool)

	// Dump writes a description of the module's symbols to w.
	Dump(m *Module, w io.Writer)

	// PrintStats writes statistics about the module's symbols to w.
	PrintStats(m *Module, w io.Writer, printBcache bool)

	// MapMatchingSymbols invokes fn on every symbol named name in the
	// global or static block, with the compunit defining it, until fn
	// returns false.
	MapMatchingSymbols(m *Module, name string, domain Domain, global bool,
		fn func(cu *CompunitSymtab, symbol string) bool)

	// ExpandSymtabsMatching expands the compunits whose file name passes
	// fileMatcher and that define a symbol of the given kind named
	// lookupName and passing symbolMatcher. Nil matchers and an empty
	// lookupName match everything. When not nil, notify receives each
	// expanded compunit and stops the walk by returning false.
	ExpandSymtabsMatching(m *Module, fileMatcher func(filename string) bool, lookupName string,
		symbolMatcher func(symbol string) bool, notify func(cu *CompunitSymtab) bool, kind SearchDomain)

	// FindPCSectCompunitSymtab returns the compunit covering pc inside
	// sec, or nil. A nil sec means any section.
	FindPCSectCompunitSymtab(m *Module, pc uint64, sec *Section, warnIfReadin bool) *CompunitSymtab
}
