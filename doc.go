// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ags3870 controls an ASAIR AGS3870 methane gas sensor over I²C.
//
// The sensor reports the CH4 concentration in PPM along with the raw
// resistance of the sensing element, a firmware version, and zero point
// calibration data. Every register transfer is a fixed five byte frame, a
// four byte payload sealed by a CRC-8 checksum.
//
// The sensing element needs a two minute preheat after power up before the
// readings are trustworthy. The driver keeps its own preheat clock; use
// IsHeated to check it. Concentration reads fall back to the last known
// good value when the sensor cannot produce a fresh one, so a polling loop
// keeps receiving usable data across transient faults. Use LastError to
// find out whether the most recent read was degraded.
//
// Datasheet
//
// https://asairsensors.com/product/ags3870-methane-gas-sensor/
package ags3870
