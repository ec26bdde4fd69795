// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ags3870

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RobTillaart/AGS3870/common"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// PPM is a gas concentration in parts per million.
type PPM uint32

func (p PPM) String() string {
	return fmt.Sprintf("%d PPM", uint32(p))
}

const (
	// SensorAddress is the I²C address of the AGS3870. It is fixed, the
	// sensor offers no address pins.
	SensorAddress uint16 = 0x1a

	// PreheatTime is how long the sensing element needs after power up
	// before readings are trustworthy. The driver does not reject early
	// reads; use IsHeated to check.
	PreheatTime = 120 * time.Second
)

// Registers of the AGS3870. The typed read methods decode the well known
// ones; ReadRegister accepts any address and returns the raw frame.
const (
	RegPPM         byte = 0x00
	RegCalibration byte = 0x01
	RegVersion     byte = 0x11
	RegResistance  byte = 0x20
)

// StatusNotReady is set in the status byte of a concentration frame while
// the sensor is still acquiring a measurement. The value in such a frame is
// provisional.
const StatusNotReady byte = 0x01

const (
	// Register transfers are a 4 byte payload plus a trailing CRC8.
	frameLen = 5

	// The sensor refreshes its measurement roughly every 2 seconds.
	minReadInterval = 2 * time.Second
)

var (
	// ErrRead is returned when the sensor delivers less than a full register
	// frame.
	ErrRead = errors.New("ags3870: incomplete frame read")
	// ErrCRC is returned when a received frame fails its checksum. The
	// measurement reads still return the decoded value alongside it; the
	// calibration and raw register reads discard the frame.
	ErrCRC = errors.New("ags3870: invalid crc")
	// ErrNotReady is returned while the sensor is still acquiring a fresh
	// measurement. ReadPPM substitutes the last known good value.
	ErrNotReady = errors.New("ags3870: sensor not ready")
)

// CalibrationData holds the two 16 bit words of the zero calibration
// register.
type CalibrationData struct {
	Status uint16
	Value  uint16
}

// RegisterData is a raw register frame as received from the sensor.
type RegisterData struct {
	Data     [4]byte
	CRC      byte
	CRCValid bool
}

// Env represents one reading from the sensor.
type Env struct {
	// CH4 is the methane concentration.
	CH4 PPM
	// Resistance is the raw resistance of the gas sensing element. It
	// drifts as the element ages, so it is mostly useful for diagnostics.
	Resistance physic.ElectricResistance
}

func (e *Env) String() string {
	return fmt.Sprintf("CH4: %s Resistance: %s", e.CH4.String(), e.Resistance.String())
}

// Dev represents an AGS3870 methane sensor.
type Dev struct {
	d        *i2c.Dev
	mu       sync.Mutex
	shutdown chan struct{}

	// buf holds the most recent register frame.
	buf [frameLen]byte
	// lastErr mirrors the outcome of the most recent bus operation. Read
	// and cleared through LastError.
	lastErr  error
	status   byte
	lastPPM  PPM
	lastRead time.Time
	started  time.Time
}

// NewI2C returns a new AGS3870 sensor using the specified bus and address.
// The address is fixed, pass SensorAddress.
//
// The preheat clock starts running immediately. The bus is not touched
// until the first operation; use IsConnected to probe for the device.
func NewI2C(b i2c.Bus, addr uint16) (*Dev, error) {
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}}
	d.Reset()
	return d, nil
}

// IsConnected probes the configured address with an empty transaction and
// reports whether the sensor acknowledged it. Cached state is not modified.
func (d *Dev) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.d.Tx(nil, nil) == nil
}

// Reset returns the driver to its power on state: the error slot, status
// byte and last known good value are cleared and the preheat clock
// restarts. The sensor itself has no soft reset command, so no bus traffic
// is generated.
func (d *Dev) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started = time.Now()
	d.lastRead = time.Time{}
	d.lastPPM = 0
	d.status = 0
	d.lastErr = nil
}

// Version reads the firmware version of the sensor. A failed read returns
// 0xff, which the sensor could in principle also report as a real version,
// so check the error rather than the value. A checksum failure is reported
// as ErrCRC with the version as received.
func (d *Dev) Version() (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.readRegister(RegVersion); err != nil {
		return 0xff, err
	}
	version := d.buf[3]
	if common.CRC8(d.buf[:]) != 0 {
		d.lastErr = ErrCRC
		return version, ErrCRC
	}
	return version, nil
}

// ReadPPM reads the current CH4 concentration. On success the value is
// cached together with its timestamp. On any failure, a transport error, a
// short frame, a not ready status or a checksum mismatch, the previously
// cached value is returned alongside the error and the cache is left
// alone.
func (d *Dev) ReadPPM() (PPM, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	value, err := d.readSensor()
	if err != nil {
		return d.lastPPM, err
	}
	d.lastPPM = value
	d.lastRead = time.Now()
	return value, nil
}

// ReadResistance reads the resistance of the gas sensing element. The
// register holds the value in units of 10Ω; the result is scaled to Ohm. A
// checksum failure is reported as ErrCRC with the resistance as received.
func (d *Dev) ReadResistance() (physic.ElectricResistance, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.readRegister(RegResistance); err != nil {
		return 0, err
	}
	// buf[3] is undocumented, only the first three bytes carry data.
	raw := uint32(d.buf[0])<<16 | uint32(d.buf[1])<<8 | uint32(d.buf[2])
	value := physic.ElectricResistance(raw) * 10 * physic.Ohm
	if common.CRC8(d.buf[:]) != 0 {
		d.lastErr = ErrCRC
		return value, ErrCRC
	}
	return value, nil
}

// ZeroCalibrationData reads the zero calibration register. Unlike the
// measurement reads this is strict: a frame failing its checksum is
// discarded and only the error is returned.
func (d *Dev) ZeroCalibrationData() (CalibrationData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.readRegister(RegCalibration); err != nil {
		return CalibrationData{}, err
	}
	if common.CRC8(d.buf[:]) != 0 {
		d.lastErr = ErrCRC
		return CalibrationData{}, ErrCRC
	}
	return CalibrationData{
		Status: uint16(d.buf[0])<<8 | uint16(d.buf[1]),
		Value:  uint16(d.buf[2])<<8 | uint16(d.buf[3]),
	}, nil
}

// ReadRegister reads an arbitrary register and returns the raw frame. Like
// ZeroCalibrationData it is strict about the checksum.
func (d *Dev) ReadRegister(reg byte) (RegisterData, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.readRegister(reg); err != nil {
		return RegisterData{}, err
	}
	if common.CRC8(d.buf[:]) != 0 {
		d.lastErr = ErrCRC
		return RegisterData{}, ErrCRC
	}
	data := RegisterData{CRC: d.buf[4], CRCValid: true}
	copy(data.Data[:], d.buf[:4])
	return data, nil
}

// ManualZeroCalibration writes a new zero point to the calibration
// register. The payload is the value in big endian, left padded with two
// zero bytes and sealed with its CRC8.
//
// Run this only after the sensor has fully preheated in clean air.
func (d *Dev) ManualZeroCalibration(value uint16) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.buf[0] = 0x00
	d.buf[1] = 0x00
	d.buf[2] = byte(value >> 8)
	d.buf[3] = byte(value)
	d.buf[4] = common.CRC8(d.buf[:4])
	return d.writeRegister(RegCalibration)
}

// LastError returns the outcome of the most recent bus operation and
// clears the slot, so every recorded error is observed at most once. A nil
// return means the last operation succeeded or its error was already
// consumed.
func (d *Dev) LastError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.lastErr
	d.lastErr = nil
	return err
}

// LastPPM returns the most recent successfully decoded concentration
// without touching the bus.
func (d *Dev) LastPPM() PPM {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastPPM
}

// LastRead returns the time of the most recent successful concentration
// read, or the zero time if none succeeded yet.
func (d *Dev) LastRead() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastRead
}

// Status returns the status byte of the most recent concentration frame.
func (d *Dev) Status() byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// IsHeated reports whether PreheatTime has elapsed since construction or
// the last Reset.
func (d *Dev) IsHeated() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return time.Since(d.started) >= PreheatTime
}

// Sense reads the CH4 concentration and the sensing element resistance
// from the device. The fallback policy of ReadPPM applies, but a degraded
// read reports its error instead of filling env.
func (d *Dev) Sense(env *Env) error {
	env.CH4 = 0
	env.Resistance = 0
	ppm, err := d.ReadPPM()
	if err != nil {
		return err
	}
	resistance, err := d.ReadResistance()
	if err != nil {
		return err
	}
	env.CH4 = ppm
	env.Resistance = resistance
	return nil
}

// SenseContinuous continuously reads from the device and sends each good
// reading to the returned channel. Readings that fail are skipped. To
// terminate, call Halt().
func (d *Dev) SenseContinuous(interval time.Duration) (<-chan Env, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		return nil, errors.New("ags3870: SenseContinuous already running")
	}
	if interval < minReadInterval {
		return nil, errors.New("ags3870: sample interval is < device refresh rate")
	}
	channelSize := 16
	d.shutdown = make(chan struct{})
	channel := make(chan Env, channelSize)
	go func(channel chan Env, shutdown <-chan struct{}) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-shutdown:
				close(channel)
				return
			case <-ticker.C:
				e := Env{}
				if err := d.Sense(&e); err == nil && len(channel) < channelSize {
					channel <- e
				}
			}
		}
	}(channel, d.shutdown)
	return channel, nil
}

// Precision returns the sensor's resolution: 1 PPM for the concentration
// and 10Ω for the resistance.
func (d *Dev) Precision(env *Env) {
	env.CH4 = 1
	env.Resistance = 10 * physic.Ohm
}

// Halt stops a SenseContinuous operation if one is running. The sensor
// itself has no power down command. Implements conn.Resource.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.shutdown != nil {
		close(d.shutdown)
		d.shutdown = nil
	}
	return nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("ags3870: %s", d.d.String())
}

// readSensor performs one concentration register read. The decoded value
// is returned even when the status byte or the checksum flags a problem;
// the caller decides whether to use it.
func (d *Dev) readSensor() (PPM, error) {
	if err := d.readRegister(RegPPM); err != nil {
		return 0, err
	}
	var err error
	d.status = d.buf[0]
	if d.status&StatusNotReady != 0 {
		err = ErrNotReady
	}
	value := PPM(uint32(d.buf[1])<<16 | uint32(d.buf[2])<<8 | uint32(d.buf[3]))
	if common.CRC8(d.buf[:]) != 0 {
		// A checksum failure outranks the not ready flag.
		err = ErrCRC
	}
	d.lastErr = err
	return value, err
}

// readRegister selects reg and reads one frame into the scratch buffer.
// The select and the read are separate transactions, matching the sensor's
// addressed read cycle. The error slot is updated either way.
func (d *Dev) readRegister(reg byte) error {
	if err := d.d.Tx([]byte{reg}, nil); err != nil {
		err = fmt.Errorf("ags3870 reg 0x%x: %w", reg, err)
		d.lastErr = err
		return err
	}
	if err := d.d.Tx(nil, d.buf[:]); err != nil {
		d.lastErr = ErrRead
		return ErrRead
	}
	d.lastErr = nil
	return nil
}

// writeRegister sends the scratch buffer to reg as a single transaction.
func (d *Dev) writeRegister(reg byte) error {
	w := [frameLen + 1]byte{reg}
	copy(w[1:], d.buf[:])
	if err := d.d.Tx(w[:], nil); err != nil {
		err = fmt.Errorf("ags3870 reg 0x%x write: %w", reg, err)
		d.lastErr = err
		return err
	}
	d.lastErr = nil
	return nil
}

var _ conn.Resource = &Dev{}
