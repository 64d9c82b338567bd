/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

import "context"

// InstructionKind identifies the kind of a single instruction in an
// entry's instruction list (§4.D).
type InstructionKind int

const (
	InstApplyActions InstructionKind = iota
	InstClearActions
	InstWriteActions
	InstWriteMetadata
	InstGotoTable
)

// Instruction is one element of a flow entry's instruction list.
type Instruction struct {
	Kind InstructionKind
	// Actions is the argument for InstApplyActions and InstWriteActions.
	Actions []Action
	// MetadataValue, MetadataMask are the arguments for InstWriteMetadata.
	MetadataValue uint64
	MetadataMask  uint64
	// GotoTableID is the argument for InstGotoTable.
	GotoTableID uint8
}

// NextStepKind is the terminal instruction-evaluator decision: either
// run the action set and hand off to egress, or continue the pipeline
// at another table.
type NextStepKind int

const (
	NextOutput NextStepKind = iota
	NextGoto
)

// NextStep is the terminal value of the instruction evaluator (§4.D):
// either (packet, output) or (packet, goto(id)).
type NextStep struct {
	Kind    NextStepKind
	TableID uint8
}

// EvaluateInstructions walks instructions in entry-specified order,
// threading (packet, next step) per §4.D. It never fails: any
// instruction this core doesn't recognize is a no-op here. Flow-mod
// admission does not validate instructions.
func EvaluateInstructions(ctx context.Context, ev *Evaluator, instructions []Instruction, pkt *Packet) NextStep {
	next := NextStep{Kind: NextOutput}
	for _, inst := range instructions {
		switch inst.Kind {
		case InstApplyActions:
			ev.Apply(ctx, inst.Actions, pkt)
		case InstClearActions:
			pkt.ActionSet.Clear()
		case InstWriteActions:
			pkt.ActionSet.Write(inst.Actions)
		case InstWriteMetadata:
			pkt.WriteMetadata(inst.MetadataValue, inst.MetadataMask)
		case InstGotoTable:
			next = NextStep{Kind: NextGoto, TableID: inst.GotoTableID}
		}
	}
	return next
}
