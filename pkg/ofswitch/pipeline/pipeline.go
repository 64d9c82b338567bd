/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Package pipeline implements the pipeline driver: it iterates flow
// tables starting at table 0, dispatches on match/miss, and implements
// miss-policy and goto chaining (§4.F).
package pipeline

import (
	"context"

	"github.com/superkkt/ofswitch/internal/ofswitchlog"
	"github.com/superkkt/ofswitch/pkg/ofswitch"
	"github.com/superkkt/ofswitch/pkg/ofswitch/table"
)

var logger = ofswitchlog.Get("pipeline")

// Driver routes packets through a table registry, starting at table 0.
type Driver struct {
	Tables     *table.Registry
	Evaluator  *ofswitch.Evaluator
	Controller ofswitch.ControllerSink
}

// New builds a pipeline driver over the given table registry, with the
// given egress and controller collaborators (either may be nil).
func New(tables *table.Registry, egress ofswitch.EgressSink, controller ofswitch.ControllerSink) *Driver {
	return &Driver{
		Tables:     tables,
		Evaluator:  ofswitch.NewEvaluator(egress, controller),
		Controller: controller,
	}
}

// Route is the ingress entry point (§6): it starts traversal at table
// 0 and returns the packet's ultimate disposition.
func (d *Driver) Route(ctx context.Context, pkt *ofswitch.Packet) ofswitch.Disposition {
	return d.routeAt(ctx, pkt, 0)
}

// routeAt implements one iteration of §4.F, recursing for goto-table
// and miss-policy continue.
func (d *Driver) routeAt(ctx context.Context, pkt *ofswitch.Packet, tableID uint8) ofswitch.Disposition {
	t, ok := d.Tables.Get(tableID)
	if !ok {
		return ofswitch.Drop
	}

	entry, matched := t.Lookup(pkt.Fields, pkt.Size)
	if !matched {
		return d.miss(ctx, pkt, t)
	}

	// appliedOutput records whether this entry's apply-actions already
	// ran an output action, which makes the disposition Output even if
	// the action set ends up without one.
	appliedOutput := false
	for _, inst := range entry.Instructions {
		if inst.Kind != ofswitch.InstApplyActions {
			continue
		}
		for _, a := range inst.Actions {
			appliedOutput = appliedOutput || a.Kind == ofswitch.ActionOutput
		}
	}

	next := ofswitch.EvaluateInstructions(ctx, d.Evaluator, entry.Instructions, pkt)
	switch next.Kind {
	case ofswitch.NextGoto:
		if next.TableID <= tableID {
			// A goto must reference a strictly higher-numbered table
			// (§4.D); the core requires this in addition to existence.
			logger.Debugf("table %d: goto %d is not forward, dropping", tableID, next.TableID)
			return ofswitch.Drop
		}
		disp := d.routeAt(ctx, pkt, next.TableID)
		if disp == ofswitch.Drop && appliedOutput {
			return ofswitch.Output
		}
		return disp
	default:
		pkt.ActionSet.Execute(ctx, d.Evaluator, pkt)
		if pkt.ActionSet.HasOutput() || appliedOutput {
			return ofswitch.Output
		}
		return ofswitch.Drop
	}
}

// miss implements §4.F step 5: dispatch on the table's miss policy.
func (d *Driver) miss(ctx context.Context, pkt *ofswitch.Packet, t *table.Table) ofswitch.Disposition {
	switch t.Miss() {
	case ofswitch.MissDrop:
		return ofswitch.Drop
	case ofswitch.MissController:
		if d.Controller != nil {
			_ = d.Controller.Send(ctx, ofswitch.PacketInTableMiss, pkt.Snapshot())
		}
		return ofswitch.ControllerBound
	case ofswitch.MissContinue:
		next := int(t.ID()) + 1
		if next >= d.Tables.MaxTables() {
			return ofswitch.Drop
		}
		return d.routeAt(ctx, pkt, uint8(next))
	default:
		return ofswitch.Drop
	}
}
