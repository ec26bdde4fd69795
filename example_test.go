// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ags3870_test

import (
	"log"
	"time"

	"github.com/RobTillaart/AGS3870"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Example shows creating an AGS3870 sensor and polling it for methane
// readings.
func Example() {
	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev, err := ags3870.NewI2C(bus, ags3870.SensorAddress)
	if err != nil {
		log.Fatal(err)
	}
	if !dev.IsConnected() {
		log.Fatal("no AGS3870 found on the bus")
	}
	if version, err := dev.Version(); err == nil {
		log.Printf("firmware version %d", version)
	}
	if !dev.IsHeated() {
		log.Print("sensor is preheating, readings are not trustworthy yet")
	}

	for i := 0; i < 10; i++ {
		ppm, err := dev.ReadPPM()
		if err != nil {
			log.Printf("%s (stale value %s)", err, ppm)
		} else {
			log.Printf("CH4: %s", ppm)
		}
		time.Sleep(2 * time.Second)
	}
}
