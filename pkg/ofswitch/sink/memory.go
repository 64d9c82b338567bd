/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Package sink provides a reference in-memory implementation of the
// egress and controller collaborators (§6), for tests and for the
// standalone daemon's loopback mode. It carries none of the core's
// correctness surface.
package sink

import (
	"context"
	"sync"

	"github.com/superkkt/ofswitch/pkg/ofswitch"
)

// Memory records every emit, packet-in and flow-removed notification it
// receives, in order. Safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	Emitted   []Emission
	PacketsIn []PacketIn
	Removed   []FlowRemoved
}

// Emission is one recorded egress.Emit call.
type Emission struct {
	Port uint32
	Pkt  ofswitch.PacketSnapshot
}

// PacketIn is one recorded controller.Send call.
type PacketIn struct {
	Reason ofswitch.PacketInReason
	Pkt    ofswitch.PacketSnapshot
}

// FlowRemoved is one recorded table.FlowRemovedSink.FlowRemoved call.
type FlowRemoved struct {
	Reason   ofswitch.FlowRemovedReason
	TableID  uint8
	Priority uint16
	Match    ofswitch.OXMSet
	Cookie   uint64
	Packets  uint64
	Bytes    uint64
}

// NewMemory returns an empty reference sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Emit implements ofswitch.EgressSink.
func (m *Memory) Emit(ctx context.Context, port uint32, pkt ofswitch.PacketSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emitted = append(m.Emitted, Emission{Port: port, Pkt: pkt})
	return nil
}

// Send implements ofswitch.ControllerSink.
func (m *Memory) Send(ctx context.Context, reason ofswitch.PacketInReason, pkt ofswitch.PacketSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PacketsIn = append(m.PacketsIn, PacketIn{Reason: reason, Pkt: pkt})
	return nil
}

// FlowRemoved implements ofswitch.FlowRemovedSink.
func (m *Memory) FlowRemoved(reason ofswitch.FlowRemovedReason, tableID uint8, priority uint16, match ofswitch.OXMSet, cookie uint64, packets, bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, FlowRemoved{
		Reason:   reason,
		TableID:  tableID,
		Priority: priority,
		Match:    match.Clone(),
		Cookie:   cookie,
		Packets:  packets,
		Bytes:    bytes,
	})
}

// Reset clears recorded state, for reuse across subtests.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emitted = nil
	m.PacketsIn = nil
	m.Removed = nil
}

// EmittedCount returns the number of recorded emits, safe for
// concurrent use alongside Emit.
func (m *Memory) EmittedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Emitted)
}
