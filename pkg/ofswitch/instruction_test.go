/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

import (
	"context"
	"testing"
)

func TestEvaluateInstructionsGotoOverridesOutput(t *testing.T) {
	pkt := NewPacket(1, NewOXMSet(), nil)
	ev := NewEvaluator(nil, nil)

	next := EvaluateInstructions(context.Background(), ev, []Instruction{
		{Kind: InstApplyActions, Actions: []Action{{Kind: ActionSetField, Field: OXM{Class: 1, Field: 1, Value: []byte{1}}}}},
		{Kind: InstGotoTable, GotoTableID: 3},
	}, pkt)

	if next.Kind != NextGoto || next.TableID != 3 {
		t.Fatalf("expected goto(3), got %+v", next)
	}
}

func TestEvaluateInstructionsDefaultsToOutput(t *testing.T) {
	pkt := NewPacket(1, NewOXMSet(), nil)
	ev := NewEvaluator(nil, nil)

	next := EvaluateInstructions(context.Background(), ev, nil, pkt)
	if next.Kind != NextOutput {
		t.Fatalf("expected default output, got %+v", next)
	}
}

func TestEvaluateInstructionsClearThenWrite(t *testing.T) {
	pkt := NewPacket(1, NewOXMSet(), nil)
	ev := NewEvaluator(nil, nil)
	pkt.ActionSet.Write([]Action{{Kind: ActionOutput, Port: 9}})

	EvaluateInstructions(context.Background(), ev, []Instruction{
		{Kind: InstClearActions},
		{Kind: InstWriteActions, Actions: []Action{{Kind: ActionOutput, Port: 5}}},
	}, pkt)

	snap := pkt.ActionSet.Snapshot()
	if len(snap) != 1 || snap[0].Port != 5 {
		t.Fatalf("expected action set to hold only the post-clear write, got %v", snap)
	}
}

func TestWriteMetadataSequence(t *testing.T) {
	pkt := NewPacket(1, NewOXMSet(), nil)
	pkt.WriteMetadata(0xFF, 0x0F)
	pkt.WriteMetadata(0x10, 0x0F)
	if pkt.Metadata&0x0F != 0x00 {
		t.Fatalf("expected masked bits to equal second write's masked value, got %#x", pkt.Metadata)
	}

	EvaluateInstructions(context.Background(), NewEvaluator(nil, nil), []Instruction{
		{Kind: InstWriteMetadata, MetadataValue: 0xAB, MetadataMask: 0xFF},
	}, pkt)
	if pkt.Metadata&0xFF != 0xAB {
		t.Fatalf("expected write-metadata instruction to apply, got %#x", pkt.Metadata)
	}
}
