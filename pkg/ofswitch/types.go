/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Package ofswitch implements the flow-table pipeline and flow-mod
// machinery of a userspace OpenFlow-compatible software switch: the
// data structures for tables and entries, the match algorithm, the
// instruction/action evaluator, and the control-plane surface that
// admits flow-modification commands from a controller.
package ofswitch

import "sync/atomic"

// OXM is a single OpenFlow Extensible Match field: a (class, field,
// value[, mask]) tuple. Two fields are field-equal when their class and
// field id agree and their (optionally masked) values agree.
type OXM struct {
	Class   uint16
	Field   uint8
	HasMask bool
	Value   []byte
	Mask    []byte
}

// MaskedValue returns the value with the mask applied, or the raw value
// if the field carries no mask.
func (o OXM) MaskedValue() []byte {
	if !o.HasMask {
		return o.Value
	}
	out := make([]byte, len(o.Value))
	for i := range o.Value {
		var m byte = 0xFF
		if i < len(o.Mask) {
			m = o.Mask[i]
		}
		out[i] = o.Value[i] & m
	}
	return out
}

// key identifies the (class, field) pair an OXM belongs to, ignoring
// its value. Action-set and match-set bookkeeping is keyed on this.
type oxmKey struct {
	class uint16
	field uint8
}

func (o OXM) key() oxmKey {
	return oxmKey{class: o.Class, field: o.Field}
}

// OXMSet is an unordered collection of OXM fields, at most one per
// (class, field) pair.
type OXMSet map[oxmKey]OXM

// NewOXMSet builds an OXMSet from a list of fields, last write wins for
// duplicate (class, field) pairs.
func NewOXMSet(fields ...OXM) OXMSet {
	s := make(OXMSet, len(fields))
	for _, f := range fields {
		s[f.key()] = f
	}
	return s
}

// Set inserts f, replacing any existing field of the same (class, field).
func (s OXMSet) Set(f OXM) {
	s[f.key()] = f
}

// Get returns the field for (class, field) and whether it is present.
func (s OXMSet) Get(class uint16, field uint8) (OXM, bool) {
	f, ok := s[oxmKey{class: class, field: field}]
	return f, ok
}

// Clone returns a shallow copy of the set; OXM values themselves are
// treated as immutable once constructed.
func (s OXMSet) Clone() OXMSet {
	out := make(OXMSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Packet is the in-flight, mutable state the pipeline threads through a
// single traversal. It is owned exclusively by the traversal that
// created it and is never shared across traversals.
type Packet struct {
	InPort    uint32
	Size      uint64
	Fields    OXMSet
	Metadata  uint64
	ActionSet *ActionSet
	Payload   []byte
}

// NewPacket constructs the packet the pipeline driver receives at
// ingress: zero metadata, an empty deferred action set.
func NewPacket(inPort uint32, fields OXMSet, payload []byte) *Packet {
	return &Packet{
		InPort:    inPort,
		Size:      uint64(len(payload)),
		Fields:    fields,
		ActionSet: NewActionSet(),
		Payload:   payload,
	}
}

// WriteMetadata applies (value & mask) into packet.Metadata, leaving
// bits outside mask untouched: metadata := (metadata &^ mask) | (value & mask).
func (p *Packet) WriteMetadata(value, mask uint64) {
	p.Metadata = (p.Metadata &^ mask) | (value & mask)
}

// Snapshot captures the packet state at the moment of an output or
// packet-in, for handoff to an egress or controller collaborator. The
// collaborator must not be able to observe later mutation of the
// originating packet.
func (p *Packet) Snapshot() PacketSnapshot {
	return PacketSnapshot{
		InPort:   p.InPort,
		Size:     p.Size,
		Fields:   p.Fields.Clone(),
		Metadata: p.Metadata,
		Payload:  append([]byte(nil), p.Payload...),
	}
}

// PacketSnapshot is an immutable copy of packet state handed to an
// egress or controller collaborator.
type PacketSnapshot struct {
	InPort   uint32
	Size     uint64
	Fields   OXMSet
	Metadata uint64
	Payload  []byte
}

// Disposition is the terminal result of routing a packet through the
// pipeline.
type Disposition int

const (
	// Drop means the packet was not forwarded anywhere.
	Drop Disposition = iota
	// ControllerBound means a table miss under the controller miss
	// policy handed the packet to the controller collaborator. An
	// explicit output(CONTROLLER) action yields Output, not this.
	ControllerBound
	// Output means at least one output action ran: from apply-actions
	// of an entry matched along the traversal, or from the action set
	// executed at its end. A goto to a table that is not strictly later
	// is a Drop regardless.
	Output
)

func (d Disposition) String() string {
	switch d {
	case Drop:
		return "drop"
	case ControllerBound:
		return "controller"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Counter is a lock-free uint64 counter, usable as a zero-value struct
// field. table.Table and table.Entry use it for their lookup/match and
// packet/byte counters.
type Counter struct {
	v uint64
}

// Add adds n to the counter.
func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.v, n)
}

// Load returns the counter's current value.
func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.v)
}

// Reset sets the counter back to zero.
func (c *Counter) Reset() {
	atomic.StoreUint64(&c.v, 0)
}
