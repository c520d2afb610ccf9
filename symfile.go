// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"errors"
	"fmt"

	"github.com/bassosimone/runtimex"
)

// ErrNoReader indicates that no reader is registered for a flavour.
var ErrNoReader = errors.New("no symbol reader for flavour")

// ErrNoSegments indicates that the reader cannot list segments.
var ErrNoSegments = errors.New("symbol reader does not support segments")

// RegisterReader makes ops available to [*Tracer.SegmentData] under
// ops.Flavour. Panics if the flavour is empty or already registered.
func (t *Tracer) RegisterReader(ops *OpTable) {
	runtimex.Assert(ops != nil && ops.Flavour != "")
	_, found := t.readers[ops.Flavour]
	runtimex.Assert(!found)
	if t.readers == nil {
		t.readers = make(map[string]*OpTable)
	}
	t.readers[ops.Flavour] = ops
}

// FindReader returns the reader registered for flavour, or nil.
func (t *Tracer) FindReader(flavour string) *OpTable {
	return t.readers[flavour]
}

// SegmentData returns the loadable segments of m's image.
//
// The reader is looked up again by flavour rather than taken from the
// active table of m, which is why the traced segments slot is never called.
func (t *Tracer) SegmentData(m *Module) (*SegmentData, error) {
	if m.ops == nil {
		return nil, fmt.Errorf("%s: %w", m.name, ErrNoReader)
	}
	ops := t.FindReader(m.ops.Flavour)
	if ops == nil {
		return nil, fmt.Errorf("%s: %w: %q", m.name, ErrNoReader, m.ops.Flavour)
	}
	if ops.Segments == nil {
		return nil, fmt.Errorf("%s: %w", m.name, ErrNoSegments)
	}
	return ops.Segments(m.name)
}

// ReadSymbols drives the active table of m through a full symbol load.
//
// Absent slots are skipped. Offsets receives the addresses recorded with
// [*Module.SetSectionAddrs]. With [AddNoRead] in flags, Read is skipped
// and the module is not marked as read.
func (t *Tracer) ReadSymbols(m *Module, flags AddFlags) error {
	runtimex.Assert(m.tracer == t)
	ops := m.ops
	if ops == nil {
		return fmt.Errorf("%s: %w", m.name, ErrNoReader)
	}
	if ops.NewInit != nil {
		ops.NewInit(m)
	}
	if ops.Init != nil {
		ops.Init(m)
	}
	if ops.Offsets != nil {
		ops.Offsets(m, m.sectionAddrs)
	}
	if flags&AddNoRead == 0 && ops.Read != nil {
		if err := ops.Read(m, flags); err != nil {
			return fmt.Errorf("%s: reading symbols: %w", m.name, err)
		}
	}
	if ops.ReadLinetable != nil {
		ops.ReadLinetable(m)
	}
	m.symbolsRead = flags&AddNoRead == 0
	return nil
}
