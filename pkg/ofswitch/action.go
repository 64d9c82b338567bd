/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

import "context"

// ActionKind identifies the type of an action, independent of its
// arguments. An action set holds at most one action per kind.
type ActionKind uint16

const (
	ActionOutput ActionKind = iota
	ActionGroup
	ActionSetQueue
	ActionSetMplsTTL
	ActionDecMplsTTL
	ActionSetNwTTL
	ActionDecNwTTL
	ActionCopyTTLOut
	ActionCopyTTLIn
	ActionPushVLAN
	ActionPopVLAN
	ActionPushMPLS
	ActionPopMPLS
	ActionSetField
	ActionExperimenter
)

// Action is one entry of an apply-actions or write-actions list.
type Action struct {
	Kind ActionKind
	// Port is the argument for ActionOutput, ActionGroup (group id) and
	// ActionSetQueue (queue id).
	Port uint32
	// Field is the argument for ActionSetField.
	Field OXM
	// EtherType is the argument for push actions (the ethertype of the
	// pushed header).
	EtherType uint16
	// ExperimenterID is the argument for ActionExperimenter.
	ExperimenterID uint32
}

// ControllerPort is the reserved OpenFlow port number meaning "send to
// the controller", mirrored here so apply-actions can detect it without
// importing an out-of-core port registry.
const ControllerPort uint32 = 0xfffffffd

// vlanHeader and mplsHeader are the OXM classes used internally by
// push/pop actions to track header presence. Matching real OpenFlow OXM
// class/field numbers is unnecessary for this core; any stable,
// internally consistent identifiers suffice (§4.A never inspects them
// beyond class+field equality).
const (
	oxmClassInternal uint16 = 0x8000

	fieldVLANPresent  uint8 = 1
	fieldVLANID       uint8 = 2
	fieldMPLSPresent  uint8 = 3
	fieldMPLSTTL      uint8 = 4
	fieldNwTTL        uint8 = 5
	fieldMPLSTTLInner uint8 = 6
)

// Evaluator applies an ordered action list to a packet, emitting
// side-effects through the egress/controller collaborators. Actions run
// in list order and evaluation never fails: malformed or unrecognized
// actions are no-ops, consistent with the policy that packet-path
// errors are not a category (§7).
type Evaluator struct {
	Egress     EgressSink
	Controller ControllerSink
}

// NewEvaluator builds an action evaluator bound to the given egress and
// controller collaborators. Either may be nil, in which case the
// corresponding action is a silent no-op — useful for table/pipeline
// unit tests that don't care about side effects.
func NewEvaluator(egress EgressSink, controller ControllerSink) *Evaluator {
	return &Evaluator{Egress: egress, Controller: controller}
}

// Apply executes actions in order against pkt, mutating it in place.
// output(port) never mutates pkt; it submits a snapshot taken at the
// moment of execution, so later actions in the same list see the
// packet as it stood before that output, per §4.B.
func (e *Evaluator) Apply(ctx context.Context, actions []Action, pkt *Packet) {
	for _, act := range actions {
		e.applyOne(ctx, act, pkt)
	}
}

func (e *Evaluator) applyOne(ctx context.Context, act Action, pkt *Packet) {
	switch act.Kind {
	case ActionOutput:
		e.output(ctx, act.Port, pkt)
	case ActionGroup, ActionSetQueue, ActionExperimenter:
		// Stubbed side-effects: group tables, queues and experimenter
		// actions are out of scope (§1); accepted without error so a
		// flow-mod referencing them still installs.
	case ActionSetMplsTTL:
		setTTL(pkt, fieldMPLSTTL, act.Field.Value)
	case ActionDecMplsTTL:
		decTTL(pkt, fieldMPLSTTL)
	case ActionSetNwTTL:
		setTTL(pkt, fieldNwTTL, act.Field.Value)
	case ActionDecNwTTL:
		decTTL(pkt, fieldNwTTL)
	case ActionCopyTTLOut:
		copyTTL(pkt, fieldMPLSTTLInner, fieldMPLSTTL)
	case ActionCopyTTLIn:
		copyTTL(pkt, fieldMPLSTTL, fieldMPLSTTLInner)
	case ActionPushVLAN:
		pkt.Fields.Set(OXM{Class: oxmClassInternal, Field: fieldVLANPresent, Value: []byte{1}})
	case ActionPopVLAN:
		delete(pkt.Fields, oxmKey{class: oxmClassInternal, field: fieldVLANPresent})
		delete(pkt.Fields, oxmKey{class: oxmClassInternal, field: fieldVLANID})
	case ActionPushMPLS:
		pkt.Fields.Set(OXM{Class: oxmClassInternal, Field: fieldMPLSPresent, Value: []byte{1}})
	case ActionPopMPLS:
		delete(pkt.Fields, oxmKey{class: oxmClassInternal, field: fieldMPLSPresent})
		delete(pkt.Fields, oxmKey{class: oxmClassInternal, field: fieldMPLSTTL})
	case ActionSetField:
		pkt.Fields.Set(act.Field)
	default:
		// Unknown action kinds are silently ignored during pipeline
		// evaluation (§9 design notes). Flow-mod admission does not
		// check action kinds, so an entry carrying one still installs.
	}
}

func (e *Evaluator) output(ctx context.Context, port uint32, pkt *Packet) {
	snap := pkt.Snapshot()
	if port == ControllerPort {
		if e.Controller != nil {
			_ = e.Controller.Send(ctx, PacketInActionOutput, snap)
		}
		return
	}
	if e.Egress != nil {
		_ = e.Egress.Emit(ctx, port, snap)
	}
}

func setTTL(pkt *Packet, field uint8, value []byte) {
	if len(value) == 0 {
		return
	}
	if _, ok := pkt.Fields.Get(oxmClassInternal, field); !ok {
		return
	}
	pkt.Fields.Set(OXM{Class: oxmClassInternal, Field: field, Value: []byte{value[0]}})
}

func decTTL(pkt *Packet, field uint8) {
	f, ok := pkt.Fields.Get(oxmClassInternal, field)
	if !ok || len(f.Value) == 0 {
		return
	}
	v := f.Value[0]
	if v > 0 {
		v--
	}
	pkt.Fields.Set(OXM{Class: oxmClassInternal, Field: field, Value: []byte{v}})
}

func copyTTL(pkt *Packet, from, to uint8) {
	f, ok := pkt.Fields.Get(oxmClassInternal, from)
	if !ok {
		return
	}
	pkt.Fields.Set(OXM{Class: oxmClassInternal, Field: to, Value: append([]byte(nil), f.Value...)})
}

// canonicalOrder is the OpenFlow-mandated order in which the action set
// executes at pipeline termination (§4.C, OpenFlow 1.3 §5.10): ttl-in,
// pop, push, ttl-dec, set-field, set-queue, group, output last.
var canonicalOrder = []ActionKind{
	ActionCopyTTLIn,
	ActionPopVLAN,
	ActionPopMPLS,
	ActionPushMPLS,
	ActionPushVLAN,
	ActionCopyTTLOut,
	ActionDecMplsTTL,
	ActionDecNwTTL,
	ActionSetMplsTTL,
	ActionSetNwTTL,
	ActionSetField,
	ActionSetQueue,
	ActionGroup,
	ActionOutput,
}

// ActionSet is the packet's deferred, per-type action set (§4.C): at
// most one action per ActionKind, executed in canonicalOrder at
// pipeline termination.
type ActionSet struct {
	byKind map[ActionKind]Action
}

// NewActionSet returns an empty action set.
func NewActionSet() *ActionSet {
	return &ActionSet{byKind: make(map[ActionKind]Action)}
}

// Write merges new into the set: each action replaces any existing
// action of the same kind, otherwise it is inserted.
func (s *ActionSet) Write(actions []Action) {
	for _, a := range actions {
		s.byKind[a.Kind] = a
	}
}

// Clear empties the set.
func (s *ActionSet) Clear() {
	s.byKind = make(map[ActionKind]Action)
}

// HasOutput reports whether the set currently carries an output action,
// used by the pipeline driver to decide the overall disposition after
// executing the action set (§4.F step 4).
func (s *ActionSet) HasOutput() bool {
	_, ok := s.byKind[ActionOutput]
	return ok
}

// Execute runs the set in canonicalOrder via evaluator e, against pkt.
func (s *ActionSet) Execute(ctx context.Context, e *Evaluator, pkt *Packet) {
	for _, kind := range canonicalOrder {
		if a, ok := s.byKind[kind]; ok {
			e.applyOne(ctx, a, pkt)
		}
	}
}

// Snapshot returns a copy of the actions currently in the set, in no
// particular order; used by tests and stats accessors.
func (s *ActionSet) Snapshot() []Action {
	out := make([]Action, 0, len(s.byKind))
	for _, a := range s.byKind {
		out = append(out, a)
	}
	return out
}
