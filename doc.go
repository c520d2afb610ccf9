// SPDX-License-Identifier: GPL-3.0-or-later

// Package symtrace traces the calls a debugger makes into its symbol readers.
//
// # Core Abstraction
//
// Each loaded image is a [*Module]. A module owns an [*OpTable] supplied by
// the symbol reader that understands the image format:
//
//	type OpTable struct {
//		Flavour       string
//		NewInit       func(m *Module)
//		Init          func(m *Module)
//		Read          func(m *Module, flags AddFlags) error
//		Finish        func(m *Module)
//		Offsets       func(m *Module, info SectionAddrInfo)
//		Segments      func(image string) (*SegmentData, error)
//		ReadLinetable func(m *Module)
//		Relocate      func(m *Module, sec *Section, buf []byte) ([]byte, error)
//		Probes        *ProbeOps
//	}
//
// Every slot is optional and a nil slot means the reader does not support
// the operation. A module also owns a [QuickSymbols] object answering
// read-only symbol queries.
//
// # Tracing
//
// A [*Tracer] owns the loaded modules and a single on/off switch. Turning it
// on with [*Tracer.SetEnabled] replaces the table of every loaded module with
// a shadow table: each populated slot becomes a proxy that logs the call,
// forwards it to the reader, and logs the result. Absent slots stay absent,
// so code checking for support keeps working. Turning it off restores the
// reader's own table, pointer for pointer.
//
// The shadow is tracked in an [AttachmentStore] keyed by [ModuleID] rather
// than in the module itself. Replace a module's table only through
// [*Tracer.SetOps], which drops a stale shadow and builds a new one around
// the replacement while tracing is on.
//
// The traced Segments slot panics when called. The operation takes an image
// path and no module, so there is no way to find the reader to forward to;
// [*Tracer.SegmentData] looks the reader up by flavour instead.
//
// Query methods on [*Module] (e.g., [*Module.LookupSymbol]) forward to the
// query object and log when tracing is on, without any wrapping.
//
// # Observability
//
// Events are emitted through [SLogger] (compatible with [log/slog]). By
// default logging is disabled. Calls through traced slots and traced queries
// are logged at [slog.LevelInfo]; slots returning a result log a *Start and a
// *Done event, the others a single event. Install, uninstall and toggle
// lifecycle events are logged at [slog.LevelDebug].
//
// All events carry module, moduleID, and t. Done events of traced slots
// add t0, the start time. Done events of slots returning an error also add
// err and errClass, the latter computed by the configured [ErrClassifier].
//
// # Error Handling
//
// Misuse of the tracing machinery (tracing a module twice, removing tracing
// that is not there, reaching a proxy for an untraced module) panics.
// Errors and panics raised by readers pass through the proxies unchanged.
//
// # Concurrency
//
// A [*Tracer] and its modules must be driven from a single goroutine.
package symtrace
