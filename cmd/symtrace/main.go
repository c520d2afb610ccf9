// SPDX-License-Identifier: GPL-3.0-or-later

// Command symtrace loads ELF images and queries their symbols, optionally
// tracing every call into the symbol reader.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
