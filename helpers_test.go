// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/bassosimone/slogstub"
)

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

// traceMessages returns the messages of the Info records, which are the
// trace events. Debug records carry lifecycle noise and are skipped.
func traceMessages(records []slog.Record) []string {
	var out []string
	for _, r := range records {
		if r.Level == slog.LevelInfo {
			out = append(out, r.Message)
		}
	}
	return out
}

// findRecord returns the first record with the given message.
func findRecord(records []slog.Record, msg string) (slog.Record, bool) {
	for _, r := range records {
		if r.Message == msg {
			return r, true
		}
	}
	return slog.Record{}, false
}

// recordAttrs flattens the attributes of r into a map.
func recordAttrs(r slog.Record) map[string]slog.Value {
	out := make(map[string]slog.Value)
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value
		return true
	})
	return out
}

// allSlotsMask has one bit per entry of [Slots].
var allSlotsMask = uint(1)<<len(Slots) - 1

// fakeReader is a symbol reader recording the slots it sees called.
type fakeReader struct {
	calls     []string
	flags     []AddFlags
	offsets   SectionAddrInfo
	readErr   error
	relocated []byte
	segments  *SegmentData
	probes    []Probe
}

// table returns a table populating the slots whose bit is set in mask,
// where bit i corresponds to Slots[i].
func (r *fakeReader) table(mask uint) *OpTable {
	ops := &OpTable{Flavour: "fake"}
	has := func(s Slot) bool { return mask&(1<<uint(s)) != 0 }
	if has(SlotNewInit) {
		ops.NewInit = func(m *Module) { r.calls = append(r.calls, "new_init") }
	}
	if has(SlotInit) {
		ops.Init = func(m *Module) { r.calls = append(r.calls, "init") }
	}
	if has(SlotRead) {
		ops.Read = func(m *Module, flags AddFlags) error {
			r.calls = append(r.calls, "read")
			r.flags = append(r.flags, flags)
			return r.readErr
		}
	}
	if has(SlotFinish) {
		ops.Finish = func(m *Module) { r.calls = append(r.calls, "finish") }
	}
	if has(SlotOffsets) {
		ops.Offsets = func(m *Module, info SectionAddrInfo) {
			r.calls = append(r.calls, "offsets")
			r.offsets = info
		}
	}
	if has(SlotSegments) {
		ops.Segments = func(image string) (*SegmentData, error) {
			r.calls = append(r.calls, "segments")
			return r.segments, nil
		}
	}
	if has(SlotReadLinetable) {
		ops.ReadLinetable = func(m *Module) { r.calls = append(r.calls, "read_linetable") }
	}
	if has(SlotRelocate) {
		ops.Relocate = func(m *Module, sec *Section, buf []byte) ([]byte, error) {
			r.calls = append(r.calls, "relocate")
			return r.relocated, nil
		}
	}
	if has(SlotProbes) {
		ops.Probes = &ProbeOps{
			GetProbes: func(m *Module) []Probe {
				r.calls = append(r.calls, "probes")
				return r.probes
			},
		}
	}
	return ops
}

// fakeQuick is a [QuickSymbols] returning canned answers.
type fakeQuick struct {
	calls    []string
	lazy     bool
	has      bool
	last     *Symtab
	compunit *CompunitSymtab
	files    []string
}

var _ QuickSymbols = &fakeQuick{}

func (q *fakeQuick) HasSymbols(m *Module) bool {
	q.calls = append(q.calls, "HasSymbols")
	return q.has
}

func (q *fakeQuick) CanLazilyReadSymbols() bool {
	return q.lazy
}

func (q *fakeQuick) FindLastSourceSymtab(m *Module) *Symtab {
	q.calls = append(q.calls, "FindLastSourceSymtab")
	return q.last
}

func (q *fakeQuick) ForgetCachedSourceInfo(m *Module) {
	q.calls = append(q.calls, "ForgetCachedSourceInfo")
}

func (q *fakeQuick) MapSymtabsMatchingFilename(m *Module, name, realPath string, fn func(*Symtab) bool) bool {
	q.calls = append(q.calls, "MapSymtabsMatchingFilename")
	if q.last != nil && q.last.Filename == name {
		return fn(q.last)
	}
	return false
}

func (q *fakeQuick) LookupSymbol(m *Module, kind BlockKind, name string, domain Domain) *CompunitSymtab {
	q.calls = append(q.calls, "LookupSymbol")
	return q.compunit
}

func (q *fakeQuick) ExpandSymtabsForFunction(m *Module, fn string) {
	q.calls = append(q.calls, "ExpandSymtabsForFunction")
}

func (q *fakeQuick) ExpandAllSymtabs(m *Module) {
	q.calls = append(q.calls, "ExpandAllSymtabs")
}

func (q *fakeQuick) ExpandSymtabsWithFullname(m *Module, fullname string) {
	q.calls = append(q.calls, "ExpandSymtabsWithFullname")
}

func (q *fakeQuick) FindCompunitSymtabByAddress(m *Module, addr uint64) *CompunitSymtab {
	q.calls = append(q.calls, "FindCompunitSymtabByAddress")
	return q.compunit
}

func (q *fakeQuick) MapSymbolFilenames(m *Module, fn func(filename, fullname string), needFullname bool) {
	q.calls = append(q.calls, "MapSymbolFilenames")
	for _, f := range q.files {
		fn(f, "")
	}
}

func (q *fakeQuick) LookupGlobalSymbolLanguage(m *Module, name string, domain Domain) (Language, bool) {
	q.calls = append(q.calls, "LookupGlobalSymbolLanguage")
	return LanguageGo, true
}

func (q *fakeQuick) Dump(m *Module, w io.Writer) {
	q.calls = append(q.calls, "Dump")
	fmt.Fprintf(w, "fake symbols for %s\n", m.Name())
}

func (q *fakeQuick) PrintStats(m *Module, w io.Writer, printBcache bool) {
	q.calls = append(q.calls, "PrintStats")
	fmt.Fprintf(w, "fake stats for %s\n", m.Name())
}

func (q *fakeQuick) MapMatchingSymbols(m *Module, name string, domain Domain, global bool,
	fn func(cu *CompunitSymtab, symbol string) bool) {
	q.calls = append(q.calls, "MapMatchingSymbols")
	if q.compunit != nil {
		fn(q.compunit, name)
	}
}

func (q *fakeQuick) ExpandSymtabsMatching(m *Module, fileMatcher func(filename string) bool, lookupName string,
	symbolMatcher func(symbol string) bool, notify func(cu *CompunitSymtab) bool, kind SearchDomain) {
	q.calls = append(q.calls, "ExpandSymtabsMatching")
	if q.compunit != nil && notify != nil {
		notify(q.compunit)
	}
}

func (q *fakeQuick) FindPCSectCompunitSymtab(m *Module, pc uint64, sec *Section, warnIfReadin bool) *CompunitSymtab {
	q.calls = append(q.calls, "FindPCSectCompunitSymtab")
	return q.compunit
}

var errFakeRead = errors.New("fake read failure")
