// SPDX-License-Identifier: GPL-3.0-or-later

// Package registry implements the two process-wide name→constructor
// registries: sources and segments, each supporting eager
// decorator registration and lazy entry-point discovery with collision
// detection.
package registry

import (
	"sort"
	"sync"

	"github.com/sandialabs/talkpipe-go"
)

// Entry describes one contribution to a registry's entry-point discovery
// surface: (group, name, module-path, symbol).
//
// Go has no dynamic module loading, so Load stands in for "importing the
// module": invoking it is expected to run the same side effect an eager
// decorator registration would run at import time (calling Register on the
// owning Registry). A real collaborator package supplies this as a closure
// over its own init-time registration function; [StaticEntryPoints] builds
// Entries for tests directly from already-known constructors.
type Entry struct {
	Group      string
	Name       string
	ModulePath string
	Symbol     string
	Load       func() error
}

// Source enumerates the entries known to the process's plugin/manifest
// surface. It must be safe to call more than once; a Registry calls it at
// most once per process unless reset via [Registry.Reset].
type Source func() ([]Entry, error)

// Registry maps names to constructors of type C (a Source or Segment
// constructor function type).
type Registry[C any] struct {
	group string

	mu            sync.Mutex
	eager         map[string]C
	failed        map[string]error
	entries       map[string]Entry
	discovered    bool
	discoverErr   error
	entryPointSrc Source
	loaded        map[string]bool
}

// New builds an empty Registry for the named group ("sources" or
// "segments", used in error messages).
func New[C any](group string) *Registry[C] {
	return &Registry[C]{
		group:   group,
		eager:   make(map[string]C),
		failed:  make(map[string]error),
		entries: make(map[string]Entry),
		loaded:  make(map[string]bool),
	}
}

// Register performs eager decorator registration: name is bound to ctor
// immediately. Multiple names may map to the same constructor (aliases).
// Calling Register again for a name that already failed to load clears the
// cached failure, since an explicit registration is authoritative.
func (r *Registry[C]) Register(name string, ctor C) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eager[name] = ctor
	delete(r.failed, name)
}

// SetEntryPointSource installs the lazy entry-point discovery source. It
// must be called before the first [Registry.Get] or [Registry.ListAll] to
// take effect; later calls are a no-op once discovery has already run
// (use [Registry.Reset] in tests that need to swap sources).
func (r *Registry[C]) SetEntryPointSource(src Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.discovered {
		return
	}
	r.entryPointSrc = src
}

// Reset clears registrations, entry-point discovery results and cached
// failures. The installed entry-point source is kept, so the next lookup
// re-runs discovery against it unless [Registry.SetEntryPointSource]
// installs another first. Intended for tests that need a clean Registry
// without constructing a new one.
func (r *Registry[C]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eager = make(map[string]C)
	r.failed = make(map[string]error)
	r.entries = make(map[string]Entry)
	r.loaded = make(map[string]bool)
	r.discovered = false
	r.discoverErr = nil
}

// ensureDiscovered runs entry-point discovery exactly once, serialized by
// r.mu. It populates r.entries without invoking
// any entry's Load, and raises NameCollision if two distinct entries claim
// the same name.
//
// Must be called with r.mu held.
func (r *Registry[C]) ensureDiscovered() error {
	if r.discovered {
		return r.discoverErr
	}
	r.discovered = true
	if r.entryPointSrc == nil {
		return nil
	}
	entries, err := r.entryPointSrc()
	if err != nil {
		r.discoverErr = err
		return err
	}
	providers := make(map[string][]string)
	for _, e := range entries {
		providers[e.Name] = append(providers[e.Name], e.ModulePath+"."+e.Symbol)
	}
	for name, names := range providers {
		if len(names) > 1 {
			sort.Strings(names)
			r.discoverErr = &talkpipe.NameCollision{Group: r.group, Name: name, Providers: names}
			return r.discoverErr
		}
	}
	for _, e := range entries {
		r.entries[e.Name] = e
	}
	return nil
}

// Get implements eager-hit, then cached-failure, then lazy-discovery-then-load
// lookup.
func (r *Registry[C]) Get(name string) (C, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctor, ok := r.eager[name]; ok {
		return ctor, nil
	}
	if err, ok := r.failed[name]; ok {
		var zero C
		return zero, err
	}
	if err := r.ensureDiscovered(); err != nil {
		var zero C
		return zero, err
	}
	if entry, ok := r.entries[name]; ok && !r.loaded[name] {
		r.loaded[name] = true
		if entry.Load != nil {
			// Load typically calls r.Register, which takes r.mu, so the lock
			// is released for the duration of the call.
			r.mu.Unlock()
			err := entry.Load()
			r.mu.Lock()
			if err != nil {
				r.failed[name] = err
				var zero C
				return zero, err
			}
		}
		if ctor, ok := r.eager[name]; ok {
			return ctor, nil
		}
		var zero C
		err := &talkpipe.NotFound{Name: name, Known: r.knownLocked()}
		r.failed[name] = err
		return zero, err
	}
	var zero C
	return zero, &talkpipe.NotFound{Name: name, Known: r.knownLocked()}
}

// ListAll enumerates every registered and entry-point-known name without
// importing anything.
func (r *Registry[C]) ListAll() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureDiscovered(); err != nil {
		return nil, err
	}
	return r.knownLocked(), nil
}

func (r *Registry[C]) knownLocked() []string {
	seen := make(map[string]bool)
	var names []string
	for n := range r.eager {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for n := range r.entries {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names
}

// Stats summarizes a Registry's introspectable state.
type Stats struct {
	Group          string
	EagerCount     int
	EntryPointOnly int
	FailedCount    int
}

// Stats returns counts of eager entries, known-but-unloaded entry points,
// and failed loads.
func (r *Registry[C]) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	entryOnly := 0
	for n := range r.entries {
		if _, ok := r.eager[n]; !ok {
			entryOnly++
		}
	}
	return Stats{
		Group:          r.group,
		EagerCount:     len(r.eager),
		EntryPointOnly: entryOnly,
		FailedCount:    len(r.failed),
	}
}

// StaticEntryPoints builds a [Source] from entries that are already known
// in-process, useful for tests and for small deployments that enumerate
// their plugins from a static table instead of a real manifest scan.
func StaticEntryPoints(entries ...Entry) Source {
	return func() ([]Entry, error) { return entries, nil }
}
