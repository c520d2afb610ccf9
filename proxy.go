// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"fmt"
	"log/slog"

	"github.com/bassosimone/runtimex"
)

// The trace* methods populate the shadow tables built by install. Each one
// logs before forwarding, so a trace exists even when the reader panics,
// and slots returning a result log a *Done event with the result as is.

// realOps returns the reader's table of m.
func (t *Tracer) realOps(m *Module) *OpTable {
	st := t.shadows.Get(m.id)
	runtimex.Assert(st != nil)
	return st.orig
}

func (t *Tracer) traceNewInit(m *Module) {
	orig := t.realOps(m)
	t.Logger.Info("symNewInit", moduleAttrs(m, t.TimeNow())...)
	orig.NewInit(m)
}

func (t *Tracer) traceInit(m *Module) {
	orig := t.realOps(m)
	t.Logger.Info("symInit", moduleAttrs(m, t.TimeNow())...)
	orig.Init(m)
}

func (t *Tracer) traceRead(m *Module, flags AddFlags) error {
	orig := t.realOps(m)
	t0 := t.TimeNow()
	t.Logger.Info(
		"symReadStart",
		moduleAttrs(m, t0,
			slog.String("flags", fmt.Sprintf("%#x", uint32(flags))),
		)...,
	)

	err := orig.Read(m, flags)

	t.Logger.Info(
		"symReadDone",
		moduleAttrs(m, t.TimeNow(),
			slog.Any("err", err),
			slog.String("errClass", t.ErrClassifier.Classify(err)),
			slog.String("flags", fmt.Sprintf("%#x", uint32(flags))),
			slog.Time("t0", t0),
		)...,
	)
	return err
}

func (t *Tracer) traceFinish(m *Module) {
	orig := t.realOps(m)
	t.Logger.Info("symFinish", moduleAttrs(m, t.TimeNow())...)
	orig.Finish(m)
}

func (t *Tracer) traceOffsets(m *Module, info SectionAddrInfo) {
	orig := t.realOps(m)
	t.Logger.Info(
		"symOffsets",
		moduleAttrs(m, t.TimeNow(),
			slog.Int("sections", len(info)),
		)...,
	)
	orig.Offsets(m, info)
}

// traceSegments is never reached: segments is invoked with an image path
// only, so there is no module to find the reader's table from, and the
// single caller looks the reader up again before calling it.
func traceSegments(image string) (*SegmentData, error) {
	panic(fmt.Sprintf("symtrace: traced segments slot called for %q", image))
}

func (t *Tracer) traceReadLinetable(m *Module) {
	orig := t.realOps(m)
	t.Logger.Info("symReadLinetable", moduleAttrs(m, t.TimeNow())...)
	orig.ReadLinetable(m)
}

func (t *Tracer) traceRelocate(m *Module, sec *Section, buf []byte) ([]byte, error) {
	orig := t.realOps(m)
	t0 := t.TimeNow()
	t.Logger.Info(
		"symRelocateStart",
		moduleAttrs(m, t0,
			slog.String("section", sectionName(sec)),
			slog.Int("bufSize", len(buf)),
		)...,
	)

	data, err := orig.Relocate(m, sec, buf)

	t.Logger.Info(
		"symRelocateDone",
		moduleAttrs(m, t.TimeNow(),
			slog.Int("dataSize", len(data)),
			slog.Any("err", err),
			slog.String("errClass", t.ErrClassifier.Classify(err)),
			slog.String("section", sectionName(sec)),
			slog.Time("t0", t0),
		)...,
	)
	return data, err
}

func (t *Tracer) traceGetProbes(m *Module) []Probe {
	orig := t.realOps(m)
	t0 := t.TimeNow()
	t.Logger.Info("probesGetStart", moduleAttrs(m, t0)...)

	probes := orig.Probes.GetProbes(m)

	t.Logger.Info(
		"probesGetDone",
		moduleAttrs(m, t.TimeNow(),
			slog.Int("probes", len(probes)),
			slog.Time("t0", t0),
		)...,
	)
	return probes
}

func sectionName(sec *Section) string {
	if sec == nil {
		return "NULL"
	}
	return sec.Name
}
