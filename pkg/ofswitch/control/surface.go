/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Package control is the control-plane surface (§4.H): it applies
// flow-mods and table-mods from a controller and exposes read-only
// stats accessors backed by the counter store. Only ModifyFlow and the
// counter-snapshot accessors carry real semantics here; the remaining
// stats accessors return empty shells, per §4.H.
package control

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/superkkt/ofswitch/internal/ofswitchlog"
	"github.com/superkkt/ofswitch/pkg/ofswitch"
	"github.com/superkkt/ofswitch/pkg/ofswitch/table"
)

var logger = ofswitchlog.Get("control")

// Surface is the control-plane front door onto a table registry.
// Flow-mods serialize against each other and appear atomic with
// respect to packet traversals (§5): Surface takes a single mutex for
// the duration of each ModifyFlow/ModifyTable call, while table.Table's
// own RWMutex lets readers proceed between the per-table critical
// sections a single flow-mod spans.
type Surface struct {
	mu     sync.Mutex
	tables *table.Registry
}

// NewSurface builds a control-plane surface over tables.
func NewSurface(tables *table.Registry) *Surface {
	return &Surface{tables: tables}
}

// ModifyFlow applies a flow-mod (§6). A rejected add leaves the target
// table byte-identical to its prior state (§7 user-visible behavior).
func (s *Surface) ModifyFlow(fm ofswitch.FlowMod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables.Get(fm.TableID)
	if !ok {
		return errors.Wrapf(ofswitch.ErrBadTableID, "table %d", fm.TableID)
	}

	switch fm.Command {
	case ofswitch.CommandAdd:
		if _, err := t.Add(fm); err != nil {
			return errors.Wrapf(err, "add to table %d", fm.TableID)
		}
	case ofswitch.CommandModify:
		t.ModifyLoose(fm)
	case ofswitch.CommandModifyStrict:
		t.ModifyStrict(fm)
	case ofswitch.CommandDelete:
		t.DeleteLoose(fm)
	case ofswitch.CommandDeleteStrict:
		t.DeleteStrict(fm)
	default:
		return errors.Errorf("ofswitch: unsupported flow-mod command %v", fm.Command)
	}
	return nil
}

// ModifyTable sets a table's miss policy (§6).
func (s *Surface) ModifyTable(tm ofswitch.TableMod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables.Get(tm.TableID)
	if !ok {
		return errors.Wrapf(ofswitch.ErrBadTableID, "table %d", tm.TableID)
	}
	t.SetMiss(tm.Miss)
	logger.Infof("table %d: miss policy set to %v", tm.TableID, tm.Miss)
	return nil
}

// FlowEntrySnapshot is a read-only view of one resident entry, for the
// flow-stats accessor.
type FlowEntrySnapshot struct {
	TableID     uint8
	Priority    uint16
	Match       ofswitch.OXMSet
	Cookie      uint64
	Packets     uint64
	Bytes       uint64
	IdleTimeout uint16
	HardTimeout uint16
}

// FlowStats returns a snapshot of every entry in tableID. This and
// AggregateStats/TableStats are the counter-snapshot accessors that
// carry real semantics in this core (§4.H).
func (s *Surface) FlowStats(tableID uint8) ([]FlowEntrySnapshot, error) {
	t, ok := s.tables.Get(tableID)
	if !ok {
		return nil, errors.Wrapf(ofswitch.ErrBadTableID, "table %d", tableID)
	}
	entries := t.Entries()
	out := make([]FlowEntrySnapshot, len(entries))
	for i, e := range entries {
		out[i] = FlowEntrySnapshot{
			TableID:     tableID,
			Priority:    e.Priority,
			Match:       e.Match.Clone(),
			Cookie:      e.Cookie,
			Packets:     e.Packets(),
			Bytes:       e.Bytes(),
			IdleTimeout: e.IdleTimeout,
			HardTimeout: e.HardTimeout,
		}
	}
	return out, nil
}

// AggregateStats sums packet_count/byte_count/flow_count over entries
// in tableID compatible with match (§12).
func (s *Surface) AggregateStats(tableID uint8, match ofswitch.OXMSet) (packets, bytes uint64, flows uint32, err error) {
	t, ok := s.tables.Get(tableID)
	if !ok {
		return 0, 0, 0, errors.Wrapf(ofswitch.ErrBadTableID, "table %d", tableID)
	}
	packets, bytes, flows = t.AggregateStats(match)
	return packets, bytes, flows, nil
}

// TableStatsEntry is a per-table lookup/match counter snapshot.
type TableStatsEntry struct {
	TableID uint8
	Lookups uint64
	Matches uint64
}

// TableStats returns the lookup/match counters for every table.
func (s *Surface) TableStats() []TableStatsEntry {
	counters := s.tables.Counters()
	out := make([]TableStatsEntry, 0, len(counters))
	for id, c := range counters {
		out = append(out, TableStatsEntry{TableID: id, Lookups: c[0], Matches: c[1]})
	}
	return out
}

// TableFeatures returns the read-only features shell for every table
// (§12).
func (s *Surface) TableFeatures(maxEntriesPerTable uint32) []table.Features {
	out := make([]table.Features, 0, s.tables.MaxTables())
	for id := 0; id < s.tables.MaxTables(); id++ {
		t, ok := s.tables.Get(uint8(id))
		if !ok {
			continue
		}
		out = append(out, t.TableFeatures(maxEntriesPerTable))
	}
	return out
}

// Desc, PortStats, QueueStats and GroupStats are empty-shell stats
// accessors (§4.H, §1 out of scope): group tables, meters, queues and
// port statistics are external collaborators this core does not track.

// Desc is the empty-shell switch-description accessor.
type Desc struct {
	Manufacturer string
	SoftwareDesc string
}

func (s *Surface) Desc() Desc {
	return Desc{Manufacturer: "ofswitch", SoftwareDesc: fmt.Sprintf("ofswitch/%d tables", s.tables.MaxTables())}
}

// PortStats is always empty: physical/virtual port I/O is an external
// collaborator (§1).
func (s *Surface) PortStats() []struct{} { return nil }

// QueueStats is always empty: queues are out of scope (§1).
func (s *Surface) QueueStats() []struct{} { return nil }

// GroupStats is always empty: group tables are out of scope (§1).
func (s *Surface) GroupStats() []struct{} { return nil }
