// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"log/slog"
	"strings"

	"github.com/bassosimone/runtimex"
)

// shadowState is attached to a module while tracing is installed.
//
// The module's active table is &shadow exactly when the state is
// registered in [Tracer.shadows].
type shadowState struct {
	// orig is the reader's table, borrowed.
	orig *OpTable

	// shadow holds the proxies. Its nil slots mirror those of orig.
	shadow OpTable

	// probes backs shadow.Probes when orig has a probe table.
	probes ProbeOps
}

// install wraps the active table of m with tracing proxies.
//
// Panics if tracing is already installed, m has no table, or the table
// is itself a shadow.
func (t *Tracer) install(m *Module) {
	runtimex.Assert(m.ops != nil)
	runtimex.Assert(m.ops.wraps == nil)
	runtimex.Assert(!t.Installed(m))

	orig := m.ops
	st := &shadowState{orig: orig}
	st.shadow.Flavour = orig.Flavour
	st.shadow.wraps = orig

	if orig.NewInit != nil {
		st.shadow.NewInit = t.traceNewInit
	}
	if orig.Init != nil {
		st.shadow.Init = t.traceInit
	}
	if orig.Read != nil {
		st.shadow.Read = t.traceRead
	}
	if orig.Finish != nil {
		st.shadow.Finish = t.traceFinish
	}
	if orig.Offsets != nil {
		st.shadow.Offsets = t.traceOffsets
	}
	if orig.Segments != nil {
		st.shadow.Segments = traceSegments
	}
	if orig.ReadLinetable != nil {
		st.shadow.ReadLinetable = t.traceReadLinetable
	}
	if orig.Relocate != nil {
		st.shadow.Relocate = t.traceRelocate
	}
	if orig.Probes != nil {
		if orig.Probes.GetProbes != nil {
			st.probes.GetProbes = t.traceGetProbes
		}
		st.shadow.Probes = &st.probes
	}

	t.shadows.Set(m.id, st)
	m.ops = &st.shadow

	t.Logger.Debug(
		"installDone",
		moduleAttrs(m, t.TimeNow(),
			slog.String("slots", slotList(orig)),
		)...,
	)
}

// uninstall restores the reader's table of m and drops the shadow.
//
// Panics if tracing is not installed.
func (t *Tracer) uninstall(m *Module) {
	runtimex.Assert(t.Installed(m))
	st := t.shadows.Get(m.id)
	m.ops = st.orig
	t.shadows.Clear(m.id)
	t.Logger.Debug("uninstallDone", moduleAttrs(m, t.TimeNow())...)
}

// slotList renders the populated slots of ops for logging.
func slotList(ops *OpTable) string {
	var names []string
	for _, s := range ops.Supported() {
		names = append(names, s.String())
	}
	return strings.Join(names, ",")
}
