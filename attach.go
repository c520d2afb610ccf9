// SPDX-License-Identifier: GPL-3.0-or-later

package symtrace

import "github.com/bassosimone/runtimex"

// AttachmentStore associates auxiliary data with modules by identity.
//
// Lookups never touch the module itself, so the store stays consistent
// while the module's own fields are being rewritten.
//
// The zero value is ready to use. Not safe for concurrent use.
type AttachmentStore[V any] struct {
	entries map[ModuleID]*V
}

// Set attaches value to id.
//
// Panics if id already has an attachment or value is nil.
func (s *AttachmentStore[V]) Set(id ModuleID, value *V) {
	runtimex.Assert(value != nil)
	_, found := s.entries[id]
	runtimex.Assert(!found)
	if s.entries == nil {
		s.entries = make(map[ModuleID]*V)
	}
	s.entries[id] = value
}

// Get returns the attachment of id, or nil.
func (s *AttachmentStore[V]) Get(id ModuleID) *V {
	return s.entries[id]
}

// Clear removes the attachment of id.
//
// Panics if id has no attachment.
func (s *AttachmentStore[V]) Clear(id ModuleID) {
	_, found := s.entries[id]
	runtimex.Assert(found)
	delete(s.entries, id)
}

// Len returns the number of attachments.
func (s *AttachmentStore[V]) Len() int {
	return len(s.entries)
}
