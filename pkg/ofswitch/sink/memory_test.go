/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package sink

import (
	"context"
	"testing"

	"github.com/superkkt/ofswitch/pkg/ofswitch"
)

func TestMemoryRecordsEmitsAndPacketsIn(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	pkt := ofswitch.NewPacket(1, ofswitch.NewOXMSet(), []byte{1, 2, 3}).Snapshot()

	if err := m.Emit(ctx, 2, pkt); err != nil {
		t.Fatalf("unexpected emit error: %v", err)
	}
	if err := m.Send(ctx, ofswitch.PacketInTableMiss, pkt); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	if len(m.Emitted) != 1 || m.Emitted[0].Port != 2 {
		t.Fatalf("expected one recorded emit to port 2, got %v", m.Emitted)
	}
	if len(m.PacketsIn) != 1 || m.PacketsIn[0].Reason != ofswitch.PacketInTableMiss {
		t.Fatalf("expected one recorded table-miss packet-in, got %v", m.PacketsIn)
	}
	if m.EmittedCount() != 1 {
		t.Fatalf("expected EmittedCount 1, got %d", m.EmittedCount())
	}
}

func TestMemoryResetClearsRecordedState(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	pkt := ofswitch.NewPacket(1, ofswitch.NewOXMSet(), nil).Snapshot()

	m.Emit(ctx, 1, pkt)
	m.Send(ctx, ofswitch.PacketInActionOutput, pkt)
	m.Reset()

	if len(m.Emitted) != 0 || len(m.PacketsIn) != 0 {
		t.Fatalf("expected empty state after reset, got emitted=%v packetsIn=%v", m.Emitted, m.PacketsIn)
	}
}

func TestMemoryPreservesOrder(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	pkt := ofswitch.NewPacket(1, ofswitch.NewOXMSet(), nil).Snapshot()

	for port := uint32(1); port <= 3; port++ {
		if err := m.Emit(ctx, port, pkt); err != nil {
			t.Fatalf("emit: %v", err)
		}
	}
	for i, e := range m.Emitted {
		if e.Port != uint32(i+1) {
			t.Fatalf("expected emit order preserved, got %v", m.Emitted)
		}
	}
}
