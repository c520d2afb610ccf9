// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"fmt"
	"io"
	"log/slog"
)

// Enabled reports whether symfile tracing is enabled.
func (t *Tracer) Enabled() bool {
	return t.enabled
}

// SetEnabled turns symfile tracing on or off.
//
// Every loaded module is brought in line with the new value: tracing is
// installed where missing when on, and removed where present when off.
// Modules already in the target state, and modules without a table, are
// left untouched, so calling SetEnabled twice with the same value is a no-op.
func (t *Tracer) SetEnabled(on bool) {
	t.enabled = on
	for _, m := range t.modules {
		switch {
		case on && m.ops != nil && !t.Installed(m):
			t.install(m)
		case !on && t.Installed(m):
			t.uninstall(m)
		}
	}
	t.Logger.Debug(
		"setDebugSymfile",
		slog.Bool("enabled", on),
		slog.Int("modules", len(t.modules)),
		slog.Time("t", t.TimeNow()),
	)
}

// Show writes the current toggle state in human readable form.
func (t *Tracer) Show(w io.Writer) error {
	value := "off"
	if t.enabled {
		value = "on"
	}
	_, err := fmt.Fprintf(w, "Symfile debugging is %s.\n", value)
	return err
}
