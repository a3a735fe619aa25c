// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop config.go
//

package talkpipe

import "time"

// Config holds common configuration for talkpipe operations.
//
// Pass this to constructor functions to pre-wire dependencies. All fields
// have sensible defaults set by [NewConfig].
type Config struct {
	// Logger is the [SLogger] offered to collaborators that build on this
	// Config. Nothing in this package reads Config; [Script] logs through
	// its own Logger field.
	//
	// Set by [NewConfig] to [DefaultSLogger].
	Logger SLogger

	// TimeNow returns the current time.
	//
	// Set by [NewConfig] to [time.Now]. Overridable for deterministic tests.
	TimeNow func() time.Time

	// EnvPrefix is the prefix applied to environment-variable lookups when
	// resolving a ChatterLang `$name` parameter that is absent from both
	// const_store and the caller's external configuration map.
	//
	// Set by [NewConfig] to "TALKPIPE".
	EnvPrefix string
}

// NewConfig creates a [*Config] with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Logger:    DefaultSLogger(),
		TimeNow:   time.Now,
		EnvPrefix: "TALKPIPE",
	}
}
