// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package common

import "testing"

func TestCRC8(t *testing.T) {
	var tests = []struct {
		bytes  []byte
		result byte
	}{
		{bytes: []byte{0xbe, 0xef}, result: 0x92},
		{bytes: []byte{0x01, 0xa4}, result: 0x4d},
		{bytes: []byte{0xab, 0xcd}, result: 0x6f},
		// 4 byte register frame payloads.
		{bytes: []byte{0x00, 0x00, 0x12, 0x34}, result: 0x61},
		{bytes: []byte{0x00, 0x00, 0x00, 0x00}, result: 0xd7},
		{bytes: []byte{0x00, 0x00, 0x30, 0x39}, result: 0x28},
	}
	for _, test := range tests {
		res := CRC8(test.bytes)
		if res != test.result {
			t.Errorf("CRC8(%#v)!=0x%x received 0x%x", test.bytes, test.result, res)
		}
	}
}

// A payload with its own CRC8 appended must always verify to 0. The register
// frame validity check in the driver relies on this.
func TestCRC8FrameCheck(t *testing.T) {
	payloads := [][]byte{
		{0x00, 0x00, 0x12, 0x34},
		{0x00, 0x00, 0x00, 0x00},
		{0xff, 0xff, 0xff, 0xff},
		{0x01, 0xe2, 0x40, 0x00},
		{0xde, 0xad, 0xbe, 0xef},
	}
	for _, payload := range payloads {
		frame := append(append([]byte{}, payload...), CRC8(payload))
		if res := CRC8(frame); res != 0 {
			t.Errorf("CRC8(%#v) with checksum appended = 0x%x, want 0", payload, res)
		}
	}
}
