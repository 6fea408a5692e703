// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps previously submitted questions for keyboard recall.
package history

// DefaultCapacity is the number of questions kept when no capacity is given.
const DefaultCapacity = 50

// notBrowsing is the cursor value when no entry is being recalled.
const notBrowsing = -1

// Buffer is a bounded, ordered store of submitted questions with a recall
// cursor. Cursor 0 is the newest entry; larger values are older.
//
// Buffer is not safe for concurrent use. It is owned by the UI goroutine.
type Buffer struct {
	entries  []string // oldest first
	capacity int
	cursor   int
}

// New creates a buffer holding at most capacity entries.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		entries:  make([]string, 0, capacity),
		capacity: capacity,
		cursor:   notBrowsing,
	}
}

// Push records a submitted question, evicting the oldest entry once capacity
// is exceeded. The cursor is always reset.
func (b *Buffer) Push(text string) {
	b.entries = append(b.entries, text)
	if over := len(b.entries) - b.capacity; over > 0 {
		b.entries = append(b.entries[:0], b.entries[over:]...)
	}
	b.cursor = notBrowsing
}

// RecallPrevious moves one step toward older entries and returns that entry.
// At the oldest entry it holds and returns the same text. ok is false only
// when the buffer is empty.
func (b *Buffer) RecallPrevious() (text string, ok bool) {
	if len(b.entries) == 0 {
		return "", false
	}
	if b.cursor < len(b.entries)-1 {
		b.cursor++
	}
	return b.at(b.cursor), true
}

// RecallNext moves one step toward newer entries. Stepping past the newest
// entry returns "" and stops browsing. ok is false when not browsing.
func (b *Buffer) RecallNext() (text string, ok bool) {
	switch {
	case b.cursor == notBrowsing:
		return "", false
	case b.cursor == 0:
		b.cursor = notBrowsing
		return "", true
	default:
		b.cursor--
		return b.at(b.cursor), true
	}
}

// Cursor returns the recall cursor, -1 when not browsing.
func (b *Buffer) Cursor() int { return b.cursor }

// Len returns the number of stored entries.
func (b *Buffer) Len() int { return len(b.entries) }

// Capacity returns the maximum number of entries.
func (b *Buffer) Capacity() int { return b.capacity }

// Entries returns a copy of the stored entries, oldest first.
func (b *Buffer) Entries() []string {
	out := make([]string, len(b.entries))
	copy(out, b.entries)
	return out
}

// at maps a cursor position to an entry, 0 being the newest.
func (b *Buffer) at(cursor int) string {
	return b.entries[len(b.entries)-1-cursor]
}
