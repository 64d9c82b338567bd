/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package table

import (
	"sync/atomic"

	"github.com/superkkt/ofswitch/pkg/ofswitch"
)

// DefaultMaxTables is the default table-id space, per OpenFlow 1.2
// (§6): table ids are 0..MaxTables-1.
const DefaultMaxTables = 256

// Registry owns every table in the pipeline, keyed by table_id. It
// exclusively owns its tables; table 0 always exists (§3).
type Registry struct {
	maxTables int
	tables    []*Table
	nextID    uint64
}

// NewRegistry builds a registry with maxTables tables (0..maxTables-1),
// each starting with the drop miss policy. maxTables of 0 is treated as
// DefaultMaxTables.
func NewRegistry(maxTables int) *Registry {
	if maxTables <= 0 {
		maxTables = DefaultMaxTables
	}
	r := &Registry{maxTables: maxTables}
	r.tables = make([]*Table, maxTables)
	for i := 0; i < maxTables; i++ {
		r.tables[i] = New(uint8(i), ofswitch.MissDrop, &r.nextID)
	}
	return r
}

// MaxTables returns the configured table-id space size.
func (r *Registry) MaxTables() int {
	return r.maxTables
}

// Get returns the table for id, or ok=false if id is outside the
// configured table-id space (§4.F step 1 fail-safe: a missing table
// means drop).
func (r *Registry) Get(id uint8) (*Table, bool) {
	if int(id) >= len(r.tables) {
		return nil, false
	}
	return r.tables[id], true
}

// Counters returns a snapshot of every table's lookup/match counters,
// indexed by table id.
func (r *Registry) Counters() map[uint8][2]uint64 {
	out := make(map[uint8][2]uint64, len(r.tables))
	for _, t := range r.tables {
		lookups, matches := t.Counters()
		out[t.ID()] = [2]uint64{lookups, matches}
	}
	return out
}

// entryIDSeq exposes the shared entry-id sequence length for tests that
// want to assert ids stay monotonic across tables.
func (r *Registry) entryIDSeq() uint64 {
	return atomic.LoadUint64(&r.nextID)
}
