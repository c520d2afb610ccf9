// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import "fmt"

// AddFlags modifies how a symbol reader loads a [*Module].
type AddFlags uint32

const (
	// AddVerbose asks the reader to be chatty about what it loads.
	AddVerbose AddFlags = 1 << 1

	// AddMainline marks the main program as opposed to a shared library.
	AddMainline AddFlags = 1 << 2

	// AddDeferBreakpointReset defers breakpoint re-setting to the caller.
	AddDeferBreakpointReset AddFlags = 1 << 3

	// AddNoRead skips reading symbols entirely.
	AddNoRead AddFlags = 1 << 4
)

// SectionAddr is the load address of a single section.
type SectionAddr struct {
	Name  string
	Index int
	Addr  uint64
}

// SectionAddrInfo describes where the sections of an image were loaded.
type SectionAddrInfo []SectionAddr

// Section identifies a section inside a [*Module] image.
type Section struct {
	Name  string
	Index int
	Addr  uint64
	Size  uint64
}

// Segment is a loadable segment of an image.
type Segment struct {
	Base uint64
	Size uint64
}

// SegmentData lists the loadable segments of an image.
type SegmentData struct {
	Segments []Segment
}

// Probe is a static probe point exposed by an image.
type Probe struct {
	Provider string
	Name     string
	Address  uint64
}

// ProbeOps is the optional nested table for probe-related queries.
type ProbeOps struct {
	// GetProbes returns the static probes defined by the module.
	GetProbes func(m *Module) []Probe
}

// OpTable is the per-module table of symbol reader operations.
//
// Every func field is optional. A nil field is an absent slot: the
// backend does not support that operation and callers must not invoke
// it. Wrapping a table never changes which slots are absent.
//
// Replace the table of a loaded module only through [*Tracer.SetOps].
type OpTable struct {
	// Flavour names the symbol format (e.g., "elf").
	Flavour string

	// NewInit is called before Init when a module's symbols are (re)loaded.
	NewInit func(m *Module)

	// Init initializes the reader's per-module state.
	Init func(m *Module)

	// Read reads the symbols of the module.
	Read func(m *Module, flags AddFlags) error

	// Finish releases the reader's per-module state.
	Finish func(m *Module)

	// Offsets records where the sections of the module were loaded.
	Offsets func(m *Module, info SectionAddrInfo)

	// Segments returns the loadable segments of an image.
	//
	// It receives the image path and no module.
	Segments func(image string) (*SegmentData, error)

	// ReadLinetable reads the line table of the module.
	ReadLinetable func(m *Module)

	// Relocate returns the relocated contents of sec, using buf as
	// storage when it is large enough.
	Relocate func(m *Module, sec *Section, buf []byte) ([]byte, error)

	// Probes is the optional probe table.
	Probes *ProbeOps

	// wraps is the reader's table when this is a tracing shadow.
	wraps *OpTable
}

// Slot names one entry of an [*OpTable].
type Slot int

const (
	SlotNewInit Slot = iota
	SlotInit
	SlotRead
	SlotFinish
	SlotOffsets
	SlotSegments
	SlotReadLinetable
	SlotRelocate
	SlotProbes
)

// Slots is the canonical list of [*OpTable] slots.
var Slots = []Slot{
	SlotNewInit,
	SlotInit,
	SlotRead,
	SlotFinish,
	SlotOffsets,
	SlotSegments,
	SlotReadLinetable,
	SlotRelocate,
	SlotProbes,
}

var slotNames = [...]string{
	SlotNewInit:       "new_init",
	SlotInit:          "init",
	SlotRead:          "read",
	SlotFinish:        "finish",
	SlotOffsets:       "offsets",
	SlotSegments:      "segments",
	SlotReadLinetable: "read_linetable",
	SlotRelocate:      "relocate",
	SlotProbes:        "probes",
}

// String implements [fmt.Stringer].
func (s Slot) String() string {
	if s >= 0 && int(s) < len(slotNames) {
		return slotNames[s]
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

// Has reports whether the given slot is populated.
//
// For [SlotProbes] the nested table counts as populated when it exists,
// regardless of its contents.
func (t *OpTable) Has(s Slot) bool {
	switch s {
	case SlotNewInit:
		return t.NewInit != nil
	case SlotInit:
		return t.Init != nil
	case SlotRead:
		return t.Read != nil
	case SlotFinish:
		return t.Finish != nil
	case SlotOffsets:
		return t.Offsets != nil
	case SlotSegments:
		return t.Segments != nil
	case SlotReadLinetable:
		return t.ReadLinetable != nil
	case SlotRelocate:
		return t.Relocate != nil
	case SlotProbes:
		return t.Probes != nil
	default:
		return false
	}
}

// Supported returns the populated slots in canonical order.
func (t *OpTable) Supported() []Slot {
	var out []Slot
	for _, s := range Slots {
		if t.Has(s) {
			out = append(out, s)
		}
	}
	return out
}
