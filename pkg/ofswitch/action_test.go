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

	"github.com/google/go-cmp/cmp"
)

func TestEvaluatorApplyOutputDoesNotMutateSubsequentView(t *testing.T) {
	egress := newRecordingSink()
	ev := NewEvaluator(egress, nil)

	pkt := NewPacket(1, NewOXMSet(OXM{Class: 1, Field: 1, Value: []byte{0x01}}), []byte("payload"))
	actions := []Action{
		{Kind: ActionOutput, Port: 2},
		{Kind: ActionSetField, Field: OXM{Class: 1, Field: 1, Value: []byte{0x02}}},
		{Kind: ActionOutput, Port: 3},
	}

	ev.Apply(context.Background(), actions, pkt)

	if len(egress.emits) != 2 {
		t.Fatalf("expected 2 emits, got %d", len(egress.emits))
	}
	first, _ := egress.emits[0].pkt.Fields.Get(1, 1)
	if !cmp.Equal(first.Value, []byte{0x01}) {
		t.Fatalf("first emit should see pre-mutation field, got %v", first.Value)
	}
	second, _ := egress.emits[1].pkt.Fields.Get(1, 1)
	if !cmp.Equal(second.Value, []byte{0x02}) {
		t.Fatalf("second emit should see post-mutation field, got %v", second.Value)
	}
	if egress.emits[0].port != 2 || egress.emits[1].port != 3 {
		t.Fatalf("unexpected port order: %v, %v", egress.emits[0].port, egress.emits[1].port)
	}
}

func TestEvaluatorOutputToControllerPort(t *testing.T) {
	controller := newRecordingController()
	ev := NewEvaluator(nil, controller)

	pkt := NewPacket(1, NewOXMSet(), nil)
	ev.Apply(context.Background(), []Action{{Kind: ActionOutput, Port: ControllerPort}}, pkt)

	if len(controller.sent) != 1 {
		t.Fatalf("expected 1 packet-in, got %d", len(controller.sent))
	}
	if controller.sent[0].reason != PacketInActionOutput {
		t.Fatalf("unexpected packet-in reason: %v", controller.sent[0].reason)
	}
}

func TestDecTTLClampsAtZero(t *testing.T) {
	pkt := NewPacket(1, NewOXMSet(OXM{Class: oxmClassInternal, Field: fieldNwTTL, Value: []byte{0}}), nil)
	ev := NewEvaluator(nil, nil)
	ev.Apply(context.Background(), []Action{{Kind: ActionDecNwTTL}}, pkt)

	f, ok := pkt.Fields.Get(oxmClassInternal, fieldNwTTL)
	if !ok || f.Value[0] != 0 {
		t.Fatalf("expected ttl to clamp at 0, got %v", f)
	}
}

func TestActionSetWriteThenExecuteCanonicalOrder(t *testing.T) {
	egress := newRecordingSink()
	ev := NewEvaluator(egress, nil)

	pkt := NewPacket(1, NewOXMSet(), nil)
	set := NewActionSet()
	// Write output before set_field: canonical order must still run
	// set_field first so the emitted snapshot carries the field.
	set.Write([]Action{
		{Kind: ActionOutput, Port: 4},
		{Kind: ActionSetField, Field: OXM{Class: 9, Field: 9, Value: []byte{0xAA}}},
	})
	set.Execute(context.Background(), ev, pkt)

	if len(egress.emits) != 1 {
		t.Fatalf("expected 1 emit, got %d", len(egress.emits))
	}
	f, ok := egress.emits[0].pkt.Fields.Get(9, 9)
	if !ok || f.Value[0] != 0xAA {
		t.Fatalf("expected set_field to have run before output, got %v", f)
	}
}

func TestActionSetClearAfterWriteEmptiesSet(t *testing.T) {
	set := NewActionSet()
	set.Write([]Action{{Kind: ActionOutput, Port: 1}, {Kind: ActionSetField, Field: OXM{Class: 1, Field: 1}}})
	if len(set.Snapshot()) != 2 {
		t.Fatalf("expected 2 actions before clear")
	}
	set.Clear()
	if len(set.Snapshot()) != 0 {
		t.Fatalf("expected empty set after clear, got %v", set.Snapshot())
	}
	if set.HasOutput() {
		t.Fatalf("expected no output after clear")
	}
}

func TestActionSetWriteReplacesSameKind(t *testing.T) {
	set := NewActionSet()
	set.Write([]Action{{Kind: ActionOutput, Port: 1}})
	set.Write([]Action{{Kind: ActionOutput, Port: 2}})
	snap := set.Snapshot()
	if len(snap) != 1 || snap[0].Port != 2 {
		t.Fatalf("expected single replaced output action, got %v", snap)
	}
}

type recordingSink struct {
	emits []struct {
		port uint32
		pkt  PacketSnapshot
	}
}

func newRecordingSink() *recordingSink { return &recordingSink{} }

func (r *recordingSink) Emit(ctx context.Context, port uint32, pkt PacketSnapshot) error {
	r.emits = append(r.emits, struct {
		port uint32
		pkt  PacketSnapshot
	}{port, pkt})
	return nil
}

type recordingController struct {
	sent []struct {
		reason PacketInReason
		pkt    PacketSnapshot
	}
}

func newRecordingController() *recordingController { return &recordingController{} }

func (r *recordingController) Send(ctx context.Context, reason PacketInReason, pkt PacketSnapshot) error {
	r.sent = append(r.sent, struct {
		reason PacketInReason
		pkt    PacketSnapshot
	}{reason, pkt})
	return nil
}
