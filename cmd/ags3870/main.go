// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ags3870 polls an AGS3870 methane sensor and prints the readings, either
// as log lines or as a colored bar at the console.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RobTillaart/AGS3870"
	"github.com/RobTillaart/AGS3870/gauge"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

var (
	busName  = flag.String("bus", "", "I²C bus name, empty for the first available")
	interval = flag.Duration("interval", 2*time.Second, "time between readings")
	count    = flag.Int("count", 0, "number of readings to take, 0 for unlimited")
	bar      = flag.Bool("gauge", false, "draw a bar instead of log lines")
	barMax   = flag.Int("gauge-max", 10000, "full scale of the bar in PPM")
)

func main() {
	flag.Parse()

	if _, err := host.Init(); err != nil {
		log.Fatal(err)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		log.Fatal(err)
	}
	defer bus.Close()

	dev, err := ags3870.NewI2C(bus, ags3870.SensorAddress)
	if err != nil {
		log.Fatal(err)
	}
	if !dev.IsConnected() {
		log.Fatalf("no AGS3870 found on %s", bus)
	}
	if version, err := dev.Version(); err == nil {
		log.Printf("%s firmware version %d", dev, version)
	} else {
		log.Printf("%s version read failed: %s", dev, err)
	}
	if !dev.IsHeated() {
		log.Printf("preheating, readings are not trustworthy for %s", ags3870.PreheatTime)
	}

	ch, err := dev.SenseContinuous(*interval)
	if err != nil {
		log.Fatal(err)
	}

	var g *gauge.Dev
	if *bar {
		g = gauge.New(&gauge.Opts{Max: ags3870.PPM(*barMax)})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalChan
		_ = dev.Halt()
	}()

	read := 0
	for env := range ch {
		if g != nil {
			if err := g.Update(&env); err != nil {
				log.Fatal(err)
			}
		} else {
			log.Print(env.String())
		}
		read++
		if *count > 0 && read >= *count {
			break
		}
	}
	if g != nil {
		_ = g.Halt()
	}
	_ = dev.Halt()
}
