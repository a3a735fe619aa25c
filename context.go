// SPDX-License-Identifier: GPL-3.0-or-later

package talkpipe

import (
	"reflect"
	"sync"
)

// Context is the mutable variable store plus immutable constant store
// shared by every operation within one execution.
//
// A Context is an explicit value threaded through constructors, not an
// ambient/global. Two Contexts constructed independently never share
// state, so two scripts run concurrently in one process stay isolated from
// each other even when both touch identically-named variables or
// constants.
type Context struct {
	mu        sync.RWMutex
	variables map[string][]any
	consts    map[string]any
}

// NewContext returns an empty, ready-to-use Context.
func NewContext() *Context {
	return &Context{
		variables: make(map[string][]any),
		consts:    make(map[string]any),
	}
}

// GetVar returns the list of items last written to the named variable, or
// nil if it was never set.
func (c *Context) GetVar(name string) []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.variables[name]
	if !ok {
		return nil
	}
	out := make([]any, len(v))
	copy(out, v)
	return out
}

// SetVar replaces the named variable's value with list, overwriting any
// previous value.
func (c *Context) SetVar(name string, list []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]any, len(list))
	copy(stored, list)
	c.variables[name] = stored
}

// AppendVar appends a single item to the named variable's value.
func (c *Context) AppendVar(name string, item any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variables[name] = append(c.variables[name], item)
}

// GetConst returns the named constant and whether it was present.
func (c *Context) GetConst(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.consts[name]
	return v, ok
}

// AddConsts merges mapping into const_store.
//
// When override is true, entries in mapping replace any existing value for
// the same name. When override is false and a name in mapping is already
// bound to a different value, AddConsts returns [*ErrConstRedefined]
// instead of silently keeping the old value or silently accepting the new
// one; see DESIGN.md.
func (c *Context) AddConsts(mapping map[string]any, override bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range mapping {
		if existing, ok := c.consts[k]; ok && !override && !equalConst(existing, v) {
			return &ErrConstRedefined{Name: k}
		}
		c.consts[k] = v
	}
	return nil
}

func equalConst(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
