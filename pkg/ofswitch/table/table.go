/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Package table implements the flow table: an ordered collection of
// flow entries by priority, with add/modify/delete semantics, overlap
// checking, and per-table/per-entry counters (§3, §4.E, §4.G).
package table

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/superkkt/ofswitch/internal/ofswitchlog"
	"github.com/superkkt/ofswitch/pkg/ofswitch"
)

var logger = ofswitchlog.Get("table")

// entryCacheSize bounds the exact-match fast-path LRU per table (§4
// design notes — a lookup accelerator, not a semantics shortcut).
const entryCacheSize = 4096

// Entry is a resident flow entry (§3). Counters live alongside the
// entry, keyed by its synthetic ID, so modify-instructions preserves
// them cleanly without structural hashing (§9 design notes).
type Entry struct {
	ID           uint64
	Priority     uint16
	Match        ofswitch.OXMSet
	Instructions []ofswitch.Instruction
	Cookie       uint64
	Flags        ofswitch.EntryFlags
	IdleTimeout  uint16
	HardTimeout  uint16
	InstallTime  time.Time

	packets ofswitch.Counter
	bytes   ofswitch.Counter
}

func (e *Entry) touch(size uint64) {
	e.packets.Add(1)
	e.bytes.Add(size)
}

// Packets returns the entry's received-packet counter.
func (e *Entry) Packets() uint64 { return e.packets.Load() }

// Bytes returns the entry's received-byte counter.
func (e *Entry) Bytes() uint64 { return e.bytes.Load() }

// Table is an ordered bag of flow entries with a miss policy (§3).
// Readers (pipeline traversals) observe a consistent entries slice from
// start to finish of their probe of this table: writers replace the
// slice wholesale under the write lock rather than mutating elements in
// place, so a reader holding the read lock never sees a torn update.
type Table struct {
	id uint8

	mu      sync.RWMutex
	entries []*Entry
	miss    ofswitch.MissConfig
	removed ofswitch.FlowRemovedSink

	lookups ofswitch.Counter
	matches ofswitch.Counter

	nextID *uint64
	cache  *lru.Cache
}

// New returns an empty table with the given id and miss policy. nextID
// is a pointer to a process-wide entry id sequence shared across all
// tables in a registry, so ids stay unique even after table deletion.
func New(id uint8, miss ofswitch.MissConfig, nextID *uint64) *Table {
	cache, err := lru.New(entryCacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size, which
		// entryCacheSize never is.
		panic(fmt.Sprintf("ofswitch: failed to init table fast-path cache: %v", err))
	}
	return &Table{
		id:     id,
		miss:   miss,
		nextID: nextID,
		cache:  cache,
	}
}

// ID returns the table's id.
func (t *Table) ID() uint8 { return t.id }

// Miss returns the table's current miss policy.
func (t *Table) Miss() ofswitch.MissConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.miss
}

// SetMiss updates the table's miss policy (ModifyTable, §6).
func (t *Table) SetMiss(miss ofswitch.MissConfig) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.miss = miss
}

// SetFlowRemovedSink installs the optional flow-removed notification
// collaborator (§12).
func (t *Table) SetFlowRemovedSink(sink ofswitch.FlowRemovedSink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removed = sink
}

// Counters returns the table's lookup and match counters (§4.G).
func (t *Table) Counters() (lookups, matches uint64) {
	return t.lookups.Load(), t.matches.Load()
}

// Entries returns a snapshot of the table's entries in traversal order
// (priority-descending, ties by insertion order). The returned slice
// must not be mutated by the caller.
func (t *Table) Entries() []*Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup probes the table with a packet's field set (§4.F step 2): it
// always increments the lookup counter, walks entries in
// priority-descending order invoking the match evaluator, and on the
// first match increments the table match counter and the entry's
// packet/byte counters before returning it.
func (t *Table) Lookup(fields ofswitch.OXMSet, size uint64) (*Entry, bool) {
	t.lookups.Add(1)

	if e := t.lookupFastPath(fields); e != nil {
		t.matches.Add(1)
		e.touch(size)
		return e, true
	}

	t.mu.RLock()
	entries := t.entries
	t.mu.RUnlock()

	for _, e := range entries {
		if ofswitch.Matches(fields, e.Match) {
			t.matches.Add(1)
			e.touch(size)
			t.cache.Add(fieldHash(fields), e)
			return e, true
		}
	}
	return nil, false
}

// lookupFastPath consults the exact-match LRU; a hit is re-verified
// against the full match evaluator before being trusted, because a
// flow-mod may have changed the table since the entry was cached — the
// cache accelerates lookup order, it never substitutes for evaluation
// (§4 design notes).
func (t *Table) lookupFastPath(fields ofswitch.OXMSet) *Entry {
	v, ok := t.cache.Get(fieldHash(fields))
	if !ok {
		return nil
	}
	e, ok := v.(*Entry)
	if !ok {
		return nil
	}
	t.mu.RLock()
	stillPresent := false
	for _, cur := range t.entries {
		if cur == e {
			stillPresent = true
			break
		}
	}
	t.mu.RUnlock()
	if !stillPresent || !ofswitch.Matches(fields, e.Match) {
		t.cache.Remove(fieldHash(fields))
		return nil
	}
	return e
}

func fieldHash(fields ofswitch.OXMSet) uint64 {
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, fmt.Sprintf("%d:%d:%x", f.Class, f.Field, f.Value))
	}
	sort.Strings(keys)
	h := fnv.New64a()
	for _, k := range keys {
		_, _ = h.Write([]byte(k))
	}
	return h.Sum64()
}

// Add installs a new entry, or supersedes an existing one (§3, §4.E): at
// most one entry may exist for a given (match, priority) pair in a
// table, so an add naming the same (match, priority) as a resident
// entry replaces that entry's instructions/flags/cookie/timeouts in
// place rather than inserting a second entry, preserving its counters
// unless fm.Flags carries FlagResetCounts, and notifies the optional
// FlowRemovedSink with FlowRemovedOverlapEvicted for the entry it
// replaced. This supersession check runs before, and is independent of,
// FlagCheckOverlap.
//
// Otherwise, Add rejects with ErrOverlap if fm.Flags carries
// FlagCheckOverlap and an existing entry shares fm.Priority and its
// match set overlaps fm.Match (any packet could match both) — the
// tightened field-set-overlap predicate from the source ambiguity in
// §9; equal priority with disjoint matches is not rejected. A rejected
// add leaves the table byte-identical to its prior state.
func (t *Table) Add(fm ofswitch.FlowMod) (*Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, e := range t.entries {
		if e.Priority == fm.Priority && equalMatch(e.Match, fm.Match) {
			return t.supersedeLocked(e, fm), nil
		}
	}

	if fm.Flags&ofswitch.FlagCheckOverlap != 0 {
		for _, e := range t.entries {
			if e.Priority == fm.Priority && ofswitch.Overlaps(e.Match, fm.Match) {
				return nil, ofswitch.ErrOverlap
			}
		}
	}

	entry := &Entry{
		ID:           atomic.AddUint64(t.nextID, 1),
		Priority:     fm.Priority,
		Match:        fm.Match.Clone(),
		Instructions: fm.Instructions,
		Cookie:       fm.Cookie,
		Flags:        fm.Flags,
		IdleTimeout:  fm.IdleTimeout,
		HardTimeout:  fm.HardTimeout,
		InstallTime:  time.Now(),
	}

	t.insertLocked(entry)
	logger.Debugf("table %d: added entry id=%d priority=%d", t.id, entry.ID, entry.Priority)
	return entry, nil
}

// supersedeLocked replaces e's instructions/flags/cookie/timeouts with
// fm's, firing the flow-removed hook for e's pre-supersession state
// first. Callers must hold t.mu. e keeps its ID and table position; its
// counters carry over untouched unless fm.Flags carries
// FlagResetCounts.
func (t *Table) supersedeLocked(e *Entry, fm ofswitch.FlowMod) *Entry {
	if t.removed != nil {
		t.removed.FlowRemoved(ofswitch.FlowRemovedOverlapEvicted, t.id, e.Priority, e.Match, e.Cookie, e.Packets(), e.Bytes())
	}

	e.Match = fm.Match.Clone()
	e.Instructions = fm.Instructions
	e.Cookie = fm.Cookie
	e.Flags = fm.Flags
	e.IdleTimeout = fm.IdleTimeout
	e.HardTimeout = fm.HardTimeout
	if fm.Flags&ofswitch.FlagResetCounts != 0 {
		e.packets.Reset()
		e.bytes.Reset()
	}
	t.cache.Purge()
	logger.Debugf("table %d: entry id=%d superseded by add at priority=%d", t.id, e.ID, e.Priority)
	return e
}

// insertLocked inserts entry so t.entries remains sorted by
// non-increasing priority, placed after any existing entries of equal
// priority (insertion-order tie-break, §3). Callers must hold t.mu.
func (t *Table) insertLocked(entry *Entry) {
	next := make([]*Entry, 0, len(t.entries)+1)
	inserted := false
	for _, e := range t.entries {
		if !inserted && entry.Priority > e.Priority {
			next = append(next, entry)
			inserted = true
		}
		next = append(next, e)
	}
	if !inserted {
		next = append(next, entry)
	}
	t.entries = next
	t.cache.Purge()
}

// ModifyLoose updates the instructions of every entry selected by fm
// (match compatible with fm.Match, cookie compatible with
// fm.Cookie/fm.CookieMask, priority ignored). Counters are preserved.
func (t *Table) ModifyLoose(fm ofswitch.FlowMod) int {
	return t.modify(fm, false)
}

// ModifyStrict updates the instructions of the single entry with exact
// match-set and priority equality to fm, if any. Counters are
// preserved.
func (t *Table) ModifyStrict(fm ofswitch.FlowMod) int {
	return t.modify(fm, true)
}

func (t *Table) modify(fm ofswitch.FlowMod, strict bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, e := range t.entries {
		if !selects(e, fm, strict) {
			continue
		}
		e.Instructions = fm.Instructions
		if fm.Flags&ofswitch.FlagResetCounts != 0 {
			e.packets.Reset()
			e.bytes.Reset()
		}
		n++
	}
	if n > 0 {
		t.cache.Purge()
	}
	return n
}

// DeleteLoose removes every entry selected by fm (match compatible,
// cookie compatible, priority ignored) and its counters.
func (t *Table) DeleteLoose(fm ofswitch.FlowMod) int {
	return t.delete(fm, false)
}

// DeleteStrict removes the single entry with exact match-set and
// priority equality to fm, if any, and its counters.
func (t *Table) DeleteStrict(fm ofswitch.FlowMod) int {
	return t.delete(fm, true)
}

func (t *Table) delete(fm ofswitch.FlowMod, strict bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := make([]*Entry, 0, len(t.entries))
	n := 0
	for _, e := range t.entries {
		if selects(e, fm, strict) {
			n++
			if t.removed != nil {
				t.removed.FlowRemoved(ofswitch.FlowRemovedDelete, t.id, e.Priority, e.Match, e.Cookie, e.Packets(), e.Bytes())
			}
			continue
		}
		kept = append(kept, e)
	}
	if n > 0 {
		t.entries = kept
		t.cache.Purge()
	}
	return n
}

// selects implements the flow-mod entry-selection predicate shared by
// modify and delete (§4.E): strict requires exact match-set and
// priority equality; loose requires e's match to be subset-compatible
// with fm.Match — every field fm.Match specifies must have a
// field-equal counterpart in e.Match, and a field e.Match leaves
// unspecified never satisfies the filter — priority ignored. Both honor
// an optional cookie mask (§12).
func selects(e *Entry, fm ofswitch.FlowMod, strict bool) bool {
	if fm.CookieMask != 0 && (e.Cookie&fm.CookieMask) != (fm.Cookie&fm.CookieMask) {
		return false
	}
	if strict {
		return e.Priority == fm.Priority && equalMatch(e.Match, fm.Match)
	}
	return matchesFilter(e.Match, fm.Match)
}

// matchesFilter reports whether every field in filter has a
// field-equal counterpart in e — the asymmetric "does e's match
// specify at least what filter asks for" test used by loose
// modify/delete selection. Unlike ofswitch.Overlaps, a field present in
// filter but absent from e fails the test rather than being treated as
// a wildcard.
func matchesFilter(e, filter ofswitch.OXMSet) bool {
	for k, ff := range filter {
		ef, ok := e[k]
		if !ok || !oxmFieldEqual(ff, ef) {
			return false
		}
	}
	return true
}

func equalMatch(a, b ofswitch.OXMSet) bool {
	if len(a) != len(b) {
		return false
	}
	for k, af := range a {
		bf, ok := b[k]
		if !ok || !oxmFieldEqual(af, bf) {
			return false
		}
	}
	return true
}

func oxmFieldEqual(a, b ofswitch.OXM) bool {
	if a.HasMask != b.HasMask {
		return false
	}
	return string(a.Value) == string(b.Value) && string(a.Mask) == string(b.Mask)
}

// Features is the read-only table-features shell (§12 supplemented
// features): empty-but-structurally-real, consistent with §4.H's
// "other stats accessors return empty shells."
type Features struct {
	TableID        uint8
	MaxEntries     uint32
	CurrentEntries uint32
}

// TableFeatures returns a features snapshot for this table.
func (t *Table) TableFeatures(maxEntries uint32) Features {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Features{
		TableID:        t.id,
		MaxEntries:     maxEntries,
		CurrentEntries: uint32(len(t.entries)),
	}
}

// AggregateStats sums packet_count, byte_count and flow_count over
// every entry in this table whose match is compatible with filter
// (§12: promoted to real, not an empty shell, since it is a pure
// function of already-tracked counters and the match evaluator).
func (t *Table) AggregateStats(filter ofswitch.OXMSet) (packets, bytes uint64, flows uint32) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.entries {
		if len(filter) > 0 && !ofswitch.Overlaps(e.Match, filter) {
			continue
		}
		packets += e.Packets()
		bytes += e.Bytes()
		flows++
	}
	return
}
