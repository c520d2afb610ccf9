// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

// Module is a loaded binary image together with its symbol reader.
//
// Create modules with [*Tracer.Load] and destroy them with [*Tracer.Unload].
// A module is not safe for concurrent use.
type Module struct {
	id           ModuleID
	name         string
	ops          *OpTable
	quick        QuickSymbols
	tracer       *Tracer
	sectionAddrs SectionAddrInfo
	symbolsRead  bool
}

// ID returns the module identity.
func (m *Module) ID() ModuleID {
	return m.id
}

// Name returns the image path the module was loaded from.
func (m *Module) Name() string {
	return m.name
}

// Ops returns the active operation table.
//
// When tracing is enabled this is a shadow table whose populated slots
// log before forwarding to the reader's own table.
func (m *Module) Ops() *OpTable {
	return m.ops
}

// Quick returns the query capability object, which may be nil.
func (m *Module) Quick() QuickSymbols {
	return m.quick
}

// SectionAddrs returns the section load addresses passed to Offsets.
func (m *Module) SectionAddrs() SectionAddrInfo {
	return m.sectionAddrs
}

// SetSectionAddrs records the section load addresses passed to Offsets
// by [*Tracer.ReadSymbols].
func (m *Module) SetSectionAddrs(info SectionAddrInfo) {
	m.sectionAddrs = info
}

// SymbolsRead reports whether [*Tracer.ReadSymbols] completed.
func (m *Module) SymbolsRead() bool {
	return m.symbolsRead
}
