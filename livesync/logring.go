// Copyright 2026 The Agentdeck Authors
// SPDX-License-Identifier: Apache-2.0

package livesync

// logCapacity is the maximum number of retained log lines per session.
const logCapacity = 100

// dedupKey identifies a log line for duplicate suppression.
type dedupKey struct {
	timestamp string
	line      string
}

// logRing is a fixed-capacity ring of log entries. Appends go to the
// tail; when full, the oldest entry is evicted from the head. The ring
// remembers the key of the most recently accepted entry and suppresses
// an immediately repeated (timestamp, line) pair. That single-slot
// memory is deliberate: it absorbs double-delivery from the server
// without the cost of full-history dedup, so non-consecutive
// duplicates pass through.
//
// logRing is not safe for concurrent use; the owning session
// serializes access.
type logRing struct {
	buf   []LogEntry
	start int
	count int

	last    dedupKey
	hasLast bool
}

func newLogRing(capacity int) *logRing {
	return &logRing{buf: make([]LogEntry, capacity)}
}

// Append adds an entry at the tail, evicting the oldest entry if the
// ring is full. Returns false when the entry matches the immediately
// preceding accepted entry and was suppressed.
func (r *logRing) Append(entry LogEntry) bool {
	key := dedupKey{timestamp: entry.Timestamp, line: entry.Line}
	if r.hasLast && key == r.last {
		return false
	}

	if r.count == len(r.buf) {
		r.buf[r.start] = entry
		r.start = (r.start + 1) % len(r.buf)
	} else {
		r.buf[(r.start+r.count)%len(r.buf)] = entry
		r.count++
	}

	r.last = key
	r.hasLast = true
	return true
}

// Entries returns the retained entries in insertion order. The result
// is a fresh slice; callers may keep it across further appends.
func (r *logRing) Entries() []LogEntry {
	entries := make([]LogEntry, 0, r.count)
	for i := 0; i < r.count; i++ {
		entries = append(entries, r.buf[(r.start+i)%len(r.buf)])
	}
	return entries
}

// Len returns the number of retained entries.
func (r *logRing) Len() int { return r.count }

// Clear empties the ring and forgets the dedup memory, so the next
// append is always accepted.
func (r *logRing) Clear() {
	r.start = 0
	r.count = 0
	r.hasLast = false
	r.last = dedupKey{}
}
