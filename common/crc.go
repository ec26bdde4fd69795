// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains functions shared by the driver package and its
// tests. For example, a CRC8 calculation.
package common

// CRC8 calculates the 8-bit CRC (polynomial 0x31, start value 0xff) of the
// byte slice parameter and returns the calculated value. This checksum is
// used by sensors from ASAIR, TI and Sensirion.
//
// Running CRC8 over a payload with its checksum byte appended yields 0, so a
// received frame verifies as CRC8(frame) == 0 and an outgoing frame is sealed
// by storing CRC8 over its payload bytes.
func CRC8(bytes []byte) byte {
	var crc byte = 0xff
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (byte)((crc << 1) ^ 0x31)
			}
		}
	}
	return crc
}
