// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import "time"

// Config holds common configuration for a [*Tracer].
//
// Pass this to [NewTracer] to pre-wire dependencies.
// All fields have sensible defaults set by [NewConfig].
type Config struct {
	// ErrClassifier classifies errors returned by symbol readers.
	//
	// Set by [NewConfig] to [DefaultErrClassifier].
	ErrClassifier ErrClassifier

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now].
	TimeNow func() time.Time
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		ErrClassifier: DefaultErrClassifier,
		TimeNow:       time.Now,
	}
}
