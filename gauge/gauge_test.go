// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gauge

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/RobTillaart/AGS3870"
)

func TestUpdate(t *testing.T) {
	buf := &bytes.Buffer{}
	d := New(&Opts{Width: 10, Max: 1000, Writer: buf})

	env := ags3870.Env{CH4: 500}
	if err := d.Update(&env); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\r\033[0m") {
		t.Errorf("missing redraw prefix: %q", out)
	}
	if !strings.Contains(out, "500 PPM") {
		t.Errorf("missing readout: %q", out)
	}

	// Clamped above Max, and the longer label is still printed.
	buf.Reset()
	env.CH4 = 200000
	if err := d.Update(&env); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "200000 PPM") {
		t.Errorf("missing readout: %q", buf.String())
	}
}

func TestHalt(t *testing.T) {
	buf := &bytes.Buffer{}
	d := New(&Opts{Writer: buf})
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\n\033[0m" {
		t.Errorf("Halt() wrote %q", buf.String())
	}
	if d.String() != "Gauge" {
		t.Errorf("String() returned %q", d.String())
	}
}

func TestDefaults(t *testing.T) {
	d := New(&Opts{Writer: &bytes.Buffer{}})
	if d.width != 40 || d.max != 10000 {
		t.Errorf("unexpected defaults: width=%d max=%d", d.width, d.max)
	}
}

func TestRampColor(t *testing.T) {
	tests := []struct {
		f        float64
		expected color.NRGBA
	}{
		{f: -1, expected: color.NRGBA{R: 0, G: 255, B: 0, A: 255}},
		{f: 0, expected: color.NRGBA{R: 0, G: 255, B: 0, A: 255}},
		{f: 0.5, expected: color.NRGBA{R: 255, G: 255, B: 0, A: 255}},
		{f: 1, expected: color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
		{f: 2, expected: color.NRGBA{R: 255, G: 0, B: 0, A: 255}},
	}
	for _, test := range tests {
		if c := rampColor(test.f); c != test.expected {
			t.Errorf("rampColor(%v) = %#v, expected %#v", test.f, c, test.expected)
		}
	}
}
