// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc computes the 16 bit CRC-CCITT (XMODEM polynomial, 0xffff
// start) the compiler prints for the light data of a map, so two compiles
// can be compared at a glance.
package crc

const (
	ccittFalse = 0x1021
	initial    = 0xffff
)

var table = makeTable(ccittFalse)

func makeTable(poly uint16) *[256]uint16 {
	t := &[256]uint16{}
	for i := uint16(0); i < 256; i++ {
		crc := i << 8
		for j := 0; j < 8; j++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}

// Digest is a running checksum. The zero value is not ready, use New.
type Digest struct {
	crc uint16
}

func New() *Digest {
	return &Digest{crc: initial}
}

// Write adds p to the checksum. It never fails.
func (d *Digest) Write(p []byte) (int, error) {
	for _, v := range p {
		d.crc = table[byte(d.crc>>8)^v] ^ (d.crc << 8)
	}
	return len(p), nil
}

func (d *Digest) Sum16() uint16 {
	return d.crc
}

// Checksum returns the checksum of p.
func Checksum(p []byte) uint16 {
	d := New()
	d.Write(p)
	return d.Sum16()
}
