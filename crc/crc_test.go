// SPDX-License-Identifier: GPL-2.0-or-later

package crc

import (
	"testing"
)

func TestChecksum(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want uint16
	}{
		{"", 0xffff},
		{"123456789", 0x29b1},
		{"A", 0xb915},
	} {
		if got := Checksum([]byte(tc.in)); got != tc.want {
			t.Errorf("Checksum(%q) = %#04x, want %#04x", tc.in, got, tc.want)
		}
	}
}

func TestDigestParts(t *testing.T) {
	d := New()
	d.Write([]byte("1234"))
	d.Write([]byte("56789"))
	if got, want := d.Sum16(), Checksum([]byte("123456789")); got != want {
		t.Errorf("Sum16() = %#04x, want %#04x", got, want)
	}
}
