// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gauge renders gas concentration readings as a colored bar on an
// ANSI terminal.
//
// Useful to keep an eye on a sensor from a shell while it is being
// installed or calibrated.
package gauge

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/RobTillaart/AGS3870"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
)

// Opts represents the options available for the gauge.
type Opts struct {
	// Width is the bar length in terminal cells. Defaults to 40.
	Width int
	// Max is the concentration rendered as a full bar. Higher readings are
	// clamped. Defaults to 10000 PPM.
	Max ags3870.PPM
	// Palette overrides the palette used to pick the bar colors.
	Palette *ansi256.Palette
	// Writer overrides where the bar is drawn. Defaults to stdout with
	// ANSI colors enabled.
	Writer io.Writer

	_ struct{}
}

// Dev draws concentration readings as a bar at the console, green for
// clean air shading to red as the reading approaches Max.
type Dev struct {
	w       io.Writer
	width   int
	max     ags3870.PPM
	palette ansi256.Palette

	buf bytes.Buffer
}

// New returns a Dev that draws at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.Writer
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	width := opts.Width
	if width <= 0 {
		width = 40
	}
	max := opts.Max
	if max == 0 {
		max = 10000
	}
	return &Dev{w: w, width: width, max: max, palette: *p}
}

func (d *Dev) String() string {
	return "Gauge"
}

// Halt implements conn.Resource.
//
// It moves to a fresh line and resets the colors so the shell is not
// corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Update redraws the bar in place for the given reading.
func (d *Dev) Update(env *ags3870.Env) error {
	// The 24 bit reading times the width does not fit an int32.
	filled := int((int64(env.CH4)*int64(d.width) + int64(d.max)/2) / int64(d.max))
	if filled > d.width {
		filled = d.width
	}
	return d.refresh(filled, env.CH4.String())
}

// unlit is the color of the cells beyond the current reading.
var unlit = color.NRGBA{R: 40, G: 40, B: 40, A: 255}

func (d *Dev) refresh(filled int, label string) error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	for i := 0; i < d.width; i++ {
		c := unlit
		if i < filled {
			f := 1.0
			if d.width > 1 {
				f = float64(i) / float64(d.width-1)
			}
			c = rampColor(f)
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	_, _ = d.buf.WriteString(label)
	_, _ = d.buf.WriteString("\033[K")
	_, err := d.buf.WriteTo(d.w)
	return err
}

// rampColor returns the bar color at fraction f, green through yellow to
// red.
func rampColor(f float64) color.NRGBA {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	c := color.NRGBA{A: 255}
	if f < 0.5 {
		c.R = byte(2 * f * 255)
		c.G = 255
	} else {
		c.R = 255
		c.G = byte((2 - 2*f) * 255)
	}
	return c
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
