// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop spanid.go
//

package talkpipe

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 string identifying one [Script] execution.
//
// Attach the span ID to a logger with [*slog.Logger.With] and assign that
// logger to the Script's Logger field before calling [Script.Run], so every
// log line the Script emits for that run can be correlated.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
