// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"log/slog"
	"slices"
	"time"

	"github.com/bassosimone/runtimex"
)

// NewTracer returns a new [*Tracer] with tracing disabled.
//
// The cfg argument contains the common configuration.
//
// The logger argument is the [SLogger] to use for structured logging.
func NewTracer(cfg *Config, logger SLogger) *Tracer {
	return &Tracer{
		ErrClassifier: cfg.ErrClassifier,
		Logger:        logger,
		TimeNow:       cfg.TimeNow,
	}
}

// Tracer owns the set of loaded modules and the symfile tracing toggle.
//
// While tracing is enabled, the active [*OpTable] of every loaded module
// is a shadow table whose populated slots log each call and forward it
// to the reader's own table. Absent slots stay absent.
//
// All fields are safe to modify after construction but before first use.
// A Tracer and its modules must be driven from a single goroutine.
type Tracer struct {
	// ErrClassifier classifies errors for structured logging.
	//
	// Set by [NewTracer] from [Config.ErrClassifier].
	ErrClassifier ErrClassifier

	// Logger is the [SLogger] to use (configurable for testing or custom logging).
	//
	// Set by [NewTracer] to the user-provided logger.
	Logger SLogger

	// TimeNow is the function to get the current time (configurable for testing).
	//
	// Set by [NewTracer] from [Config.TimeNow].
	TimeNow func() time.Time

	enabled bool
	modules []*Module
	readers map[string]*OpTable
	shadows AttachmentStore[shadowState]
}

// Load registers a new module named after the given image path.
//
// The initial table goes through [*Tracer.SetOps], so the module is traced
// right away when tracing is enabled. Both ops and quick may be nil.
func (t *Tracer) Load(name string, ops *OpTable, quick QuickSymbols) *Module {
	m := &Module{
		id:     NewModuleID(),
		name:   name,
		quick:  quick,
		tracer: t,
	}
	t.modules = append(t.modules, m)
	t.Logger.Debug("moduleLoad", moduleAttrs(m, t.TimeNow())...)
	t.SetOps(m, ops)
	return m
}

// Unload finishes and forgets the given module.
//
// The active Finish slot runs first, so it is traced when tracing is
// enabled. Panics if m is not loaded by t.
func (t *Tracer) Unload(m *Module) {
	idx := slices.Index(t.modules, m)
	runtimex.Assert(idx >= 0)
	if m.ops != nil && m.ops.Finish != nil {
		m.ops.Finish(m)
	}
	if t.Installed(m) {
		t.uninstall(m)
	}
	t.modules = slices.Delete(t.modules, idx, idx+1)
	t.Logger.Debug("moduleUnload", moduleAttrs(m, t.TimeNow())...)
}

// Modules returns the loaded modules in load order.
func (t *Tracer) Modules() []*Module {
	return slices.Clone(t.modules)
}

// SetOps replaces the active table of m.
//
// This is the only sanctioned way to change the table of a loaded module.
// A stale shadow is discarded first, and when tracing is enabled a fresh
// shadow is built around ops. Passing a nil ops leaves m untraced.
//
// Passing a shadow (e.g., a table saved from [*Module.Ops] while tracing
// was on) stands for the reader's table it wraps.
func (t *Tracer) SetOps(m *Module, ops *OpTable) {
	runtimex.Assert(m.tracer == t)
	if t.Installed(m) {
		runtimex.Assert(t.enabled)
		t.uninstall(m)
	}
	for ops != nil && ops.wraps != nil {
		ops = ops.wraps
	}
	m.ops = ops
	if t.enabled && ops != nil {
		t.install(m)
	}
	t.Logger.Debug(
		"setOps",
		moduleAttrs(m, t.TimeNow(),
			slog.Bool("traced", t.Installed(m)),
		)...,
	)
}

// Installed reports whether tracing is currently installed for m.
func (t *Tracer) Installed(m *Module) bool {
	return m.ops != nil && t.shadows.Get(m.id) != nil
}
