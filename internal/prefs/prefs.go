// Package prefs holds the user's partition of packages into essential and
// limited sets. The recorder consults it to decide whether a launch triggers
// a cooldown; it never writes to it.
package prefs

import (
	"sort"
	"sync"
)

// Source is the read-side view of the app partition. It is safe for
// concurrent use; Update swaps both sets atomically, so a config reload never
// exposes a half-applied partition.
type Source struct {
	mu        sync.RWMutex
	essential map[string]bool
	limited   map[string]bool
}

// New creates a Source from the initial essential and limited package lists.
func New(essential, limited []string) *Source {
	s := &Source{}
	s.Update(essential, limited)
	return s
}

// Update replaces both sets. Called on config reload.
func (s *Source) Update(essential, limited []string) {
	e := make(map[string]bool, len(essential))
	for _, pkg := range essential {
		e[pkg] = true
	}
	l := make(map[string]bool, len(limited))
	for _, pkg := range limited {
		l[pkg] = true
	}

	s.mu.Lock()
	s.essential = e
	s.limited = l
	s.mu.Unlock()
}

// IsEssential reports whether the package is in the essential set.
func (s *Source) IsEssential(pkg string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.essential[pkg]
}

// IsLimited reports whether the package is in the limited set.
func (s *Source) IsLimited(pkg string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limited[pkg]
}

// Limited returns the limited package names in sorted order.
func (s *Source) Limited() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.limited))
	for pkg := range s.limited {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}
