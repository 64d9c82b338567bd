/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

import "bytes"

// Matches reports whether packet fields p satisfy entry match set e
// (§4.A): match iff every field in e has a field-equal counterpart in
// p. An empty e matches every packet — the table-miss wildcard — and is
// never special-cased here; callers represent it as an ordinary
// lowest-priority catch-all entry.
func Matches(p, e OXMSet) bool {
	for k, want := range e {
		have, ok := p[k]
		if !ok {
			return false
		}
		if !fieldEqual(want, have) {
			return false
		}
	}
	return true
}

// fieldEqual compares two OXM fields sharing the same (class, field):
// the entry's masked value (if it carries a mask) must equal the
// packet's corresponding masked value.
func fieldEqual(entryField, packetField OXM) bool {
	want := entryField.MaskedValue()
	have := packetField.Value
	if entryField.HasMask {
		have = maskValue(packetField.Value, entryField.Mask)
	}
	return bytes.Equal(want, have)
}

func maskValue(value, mask []byte) []byte {
	out := make([]byte, len(value))
	for i := range value {
		var m byte = 0xFF
		if i < len(mask) {
			m = mask[i]
		}
		out[i] = value[i] & m
	}
	return out
}

// Overlaps reports whether two match sets could both match some common
// packet — any field present in both sets must be field-compatible, and
// fields present in only one set are wildcards as far as the other is
// concerned. table.Table.Add uses it for check_overlap: an add is
// rejected only when an existing entry has equal priority and its match
// set Overlaps the new one.
func Overlaps(a, b OXMSet) bool {
	for k, af := range a {
		bf, ok := b[k]
		if !ok {
			continue
		}
		if !rangesIntersect(af, bf) {
			return false
		}
	}
	return true
}

func rangesIntersect(a, b OXM) bool {
	av, bv := a.Value, b.Value
	n := len(av)
	if len(bv) < n {
		n = len(bv)
	}
	for i := 0; i < n; i++ {
		am := byte(0xFF)
		if a.HasMask && i < len(a.Mask) {
			am = a.Mask[i]
		}
		bm := byte(0xFF)
		if b.HasMask && i < len(b.Mask) {
			bm = b.Mask[i]
		}
		common := am & bm
		if av[i]&common != bv[i]&common {
			return false
		}
	}
	return true
}
