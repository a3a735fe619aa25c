// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import "fmt"

// ParseError reports a malformed ChatterLang script.
//
// Pos is a byte offset into the script text after comment stripping;
// Token is the lexeme or construct that could not be parsed at that
// position. For an error raised by the lexer, Pos is 0 and Token holds the
// lexer's message.
type ParseError struct {
	Pos   int
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: unexpected %q", e.Pos, e.Token)
}

// UnresolvedRef reports a `$name` parameter reference that could not be
// resolved against const_store, external configuration, or the environment.
type UnresolvedRef struct {
	Name string
}

func (e *UnresolvedRef) Error() string {
	return fmt.Sprintf("unresolved reference: %s", e.Name)
}

// NotFound reports a registry lookup miss. Known lists every name the
// registry could resolve at the time of the failed lookup, eagerly
// registered or entry-point-known.
type NotFound struct {
	Name  string
	Known []string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("not found: %s", e.Name)
}

// NameCollision reports two or more entry-point records claiming the same
// (group, name) pair during registry discovery.
type NameCollision struct {
	Group     string
	Name      string
	Providers []string
}

func (e *NameCollision) Error() string {
	return fmt.Sprintf("name collision in %s: %q claimed by %v", e.Group, e.Name, e.Providers)
}

// FieldMissing reports that a dot path could not be resolved and no default
// value was supplied.
type FieldMissing struct {
	Path string
}

func (e *FieldMissing) Error() string {
	return fmt.Sprintf("field missing: %s", e.Path)
}

// PathNotAddressable reports that assign could not create or reach the
// container needed to write a dot path, naming the step at which
// resolution failed.
type PathNotAddressable struct {
	Path string
	At   string
}

func (e *PathNotAddressable) Error() string {
	return fmt.Sprintf("path not addressable: %s (at %q)", e.Path, e.At)
}

// SegmentFailure wraps an error raised by a Segment's Transform, so that
// callers can distinguish a segment-level failure from a framework error
// via errors.As.
type SegmentFailure struct {
	Segment string
	Cause   error
}

func (e *SegmentFailure) Error() string {
	return fmt.Sprintf("segment %s failed: %v", e.Segment, e.Cause)
}

func (e *SegmentFailure) Unwrap() error {
	return e.Cause
}

// Cancelled is the error type for a fork branch terminated by
// cancellation. [Fork] does not construct it: a branch that stops because
// its context was cancelled surfaces whatever error it returns, wrapped in
// [SegmentFailure], from the fork's output Stream.
type Cancelled struct {
	Branch int
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("branch %d cancelled", e.Branch)
}

// ErrConstRedefined is raised by (*Context).AddConsts when override=false
// and a name already present in const_store is supplied again with a
// different value. This package treats redefinition-without-override as a
// compile-time mistake rather than a
// silent no-op, so that two scripts sharing a process never observe a
// stale constant because a later AddConsts call was accidentally ignored.
type ErrConstRedefined struct {
	Name string
}

func (e *ErrConstRedefined) Error() string {
	return fmt.Sprintf("const already defined: %s", e.Name)
}
