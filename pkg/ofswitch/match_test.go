/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

package ofswitch

import "testing"

func TestMatches(t *testing.T) {
	inPort := func(v byte) OXM { return OXM{Class: 1, Field: 1, Value: []byte{v}} }
	maskedIP := func(v, m byte) OXM { return OXM{Class: 1, Field: 2, HasMask: true, Value: []byte{v}, Mask: []byte{m}} }

	src := []struct {
		name  string
		pkt   OXMSet
		entry OXMSet
		want  bool
	}{
		{
			name:  "empty entry is the catch-all wildcard",
			pkt:   NewOXMSet(inPort(1)),
			entry: NewOXMSet(),
			want:  true,
		},
		{
			name:  "exact field match",
			pkt:   NewOXMSet(inPort(1)),
			entry: NewOXMSet(inPort(1)),
			want:  true,
		},
		{
			name:  "field value mismatch",
			pkt:   NewOXMSet(inPort(1)),
			entry: NewOXMSet(inPort(2)),
			want:  false,
		},
		{
			name:  "entry field absent from packet",
			pkt:   NewOXMSet(inPort(1)),
			entry: NewOXMSet(inPort(1), maskedIP(10, 0xFF)),
			want:  false,
		},
		{
			name:  "masked value matches within mask",
			pkt:   NewOXMSet(maskedIP(0xAB, 0)),
			entry: NewOXMSet(OXM{Class: 1, Field: 2, HasMask: true, Value: []byte{0xA0}, Mask: []byte{0xF0}}),
			want:  true,
		},
		{
			name:  "masked value mismatch outside mask tolerance",
			pkt:   NewOXMSet(OXM{Class: 1, Field: 2, Value: []byte{0x1B}}),
			entry: NewOXMSet(OXM{Class: 1, Field: 2, HasMask: true, Value: []byte{0xA0}, Mask: []byte{0xF0}}),
			want:  false,
		},
	}

	for _, s := range src {
		s := s
		t.Run(s.name, func(t *testing.T) {
			got := Matches(s.pkt, s.entry)
			if got != s.want {
				t.Fatalf("Matches() = %v, want %v", got, s.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	f := func(class uint16, field uint8, v byte) OXM { return OXM{Class: class, Field: field, Value: []byte{v}} }

	src := []struct {
		name string
		a, b OXMSet
		want bool
	}{
		{
			name: "disjoint field sets always overlap",
			a:    NewOXMSet(f(1, 1, 1)),
			b:    NewOXMSet(f(2, 2, 9)),
			want: true,
		},
		{
			name: "shared field same value overlaps",
			a:    NewOXMSet(f(1, 1, 5)),
			b:    NewOXMSet(f(1, 1, 5)),
			want: true,
		},
		{
			name: "shared field different value does not overlap",
			a:    NewOXMSet(f(1, 1, 5)),
			b:    NewOXMSet(f(1, 1, 6)),
			want: false,
		},
	}

	for _, s := range src {
		s := s
		t.Run(s.name, func(t *testing.T) {
			if got := Overlaps(s.a, s.b); got != s.want {
				t.Fatalf("Overlaps() = %v, want %v", got, s.want)
			}
		})
	}
}
