/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

import "context"

// PacketInReason classifies why a packet was handed to the controller
// collaborator.
type PacketInReason int

const (
	// PacketInTableMiss is a table-miss dispatched by a controller
	// miss-policy (§4.F step 5).
	PacketInTableMiss PacketInReason = iota
	// PacketInActionOutput is an explicit output(CONTROLLER) action.
	PacketInActionOutput
)

// EgressSink is the out-of-core collaborator that performs physical or
// virtual port I/O (§6). The pipeline calls Emit once per executed
// output action.
type EgressSink interface {
	Emit(ctx context.Context, port uint32, pkt PacketSnapshot) error
}

// ControllerSink is the out-of-core collaborator fronting the
// controller transport (§6). The pipeline calls Send for
// controller-bound table misses and explicit output(CONTROLLER)
// actions.
type ControllerSink interface {
	Send(ctx context.Context, reason PacketInReason, pkt PacketSnapshot) error
}

// FlowRemovedReason classifies why an entry left a table, for the
// optional FlowRemovedSink hook (§12 supplemented features).
type FlowRemovedReason int

const (
	FlowRemovedDelete FlowRemovedReason = iota
	FlowRemovedOverlapEvicted
)

// FlowRemovedSink is an optional collaborator notified when a flow-mod
// removes an entry, either by explicit delete or by being superseded on
// add. It carries no semantics of its own; a nil sink means no
// notification is sent.
type FlowRemovedSink interface {
	FlowRemoved(reason FlowRemovedReason, tableID uint8, priority uint16, match OXMSet, cookie uint64, packets, bytes uint64)
}
