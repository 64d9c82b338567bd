/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

// Command is the flow-mod command kind (§4.E, §6).
type Command int

const (
	CommandAdd Command = iota
	CommandModify
	CommandModifyStrict
	CommandDelete
	CommandDeleteStrict
)

// EntryFlags mirrors the OpenFlow flow-mod flags this core recognizes.
type EntryFlags uint16

const (
	FlagCheckOverlap EntryFlags = 1 << iota
	FlagResetCounts
)

// FlowMod is the control-plane input admitted by ModifyFlow (§6).
type FlowMod struct {
	TableID      uint8
	Command      Command
	Priority     uint16
	Match        OXMSet
	Instructions []Instruction
	Flags        EntryFlags
	Cookie       uint64
	CookieMask   uint64
	IdleTimeout  uint16
	HardTimeout  uint16
}

// MissConfig is a table's miss policy (§3).
type MissConfig int

const (
	MissDrop MissConfig = iota
	MissController
	MissContinue
)

func (m MissConfig) String() string {
	switch m {
	case MissDrop:
		return "drop"
	case MissController:
		return "controller"
	case MissContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// TableMod is the control-plane input admitted by ModifyTable (§6).
type TableMod struct {
	TableID uint8
	Miss    MissConfig
}
