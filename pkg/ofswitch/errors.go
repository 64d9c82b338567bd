/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

import "errors"

// Error taxonomy for ModifyFlow (§7). Propagation policy: errors are
// returned to the caller, which is responsible for generating an
// OpenFlow ofp_error_msg; the core logs nothing about a rejected
// flow-mod. Packet-path errors are not a category — malformed
// constructs on the packet path are silently no-op or drop so a single
// bad entry can't kill the datapath.
var (
	ErrOverlap        = errors.New("ofswitch: overlapping flow entry")
	ErrBadTableID     = errors.New("ofswitch: referenced table does not exist")
	ErrBadInstruction = errors.New("ofswitch: malformed instruction")
	ErrBadAction      = errors.New("ofswitch: malformed action")
	ErrBadMatch       = errors.New("ofswitch: match references an unknown OXM class/field")
	ErrNotFound       = errors.New("ofswitch: no matching flow entry")
)
