// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// ModuleID identifies a [*Module] for its whole lifetime.
//
// IDs are UUIDv7 values, so they sort by creation time.
type ModuleID uuid.UUID

// NewModuleID returns a fresh [ModuleID].
//
// This function panics if the system random number generator fails,
// which should only happen under extraordinary circumstances.
func NewModuleID() ModuleID {
	return ModuleID(runtimex.PanicOnError1(uuid.NewV7()))
}

// String implements [fmt.Stringer].
func (id ModuleID) String() string {
	return uuid.UUID(id).String()
}
