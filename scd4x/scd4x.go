// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package scd4x

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/GermanBionicSystems/airmon/common"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// PPM=Parts Per Million. Units of measure for CO2 concentration.
type PPM int

func (p PPM) String() string {
	return fmt.Sprintf("%d PPM", int(p))
}

// SensorAddress is the only address these devices answer on.
const SensorAddress uint16 = 0x62

// ErrNotReady is returned by Sense when no measurement became available
// within Opts.ReadyTimeout.
var ErrNotReady = errors.New("scd4x: timeout waiting for data ready status")

type command struct {
	word uint16
	// Expected number of bytes returned: 0, 3 or 9.
	responseSize int
	// True if the command is accepted during periodic measurement.
	whileSensing bool
	// Execution time before the next command can be sent.
	delay time.Duration
}

var (
	cmdStartMeasurement   = command{word: 0x21b1}
	cmdReadMeasurement    = command{word: 0xec05, responseSize: 9, whileSensing: true, delay: time.Millisecond}
	cmdStopMeasurement    = command{word: 0x3f86, whileSensing: true, delay: 500 * time.Millisecond}
	cmdGetDataReady       = command{word: 0xe4b8, responseSize: 3, whileSensing: true, delay: time.Millisecond}
	cmdSetAmbientPressure = command{word: 0xe000, whileSensing: true, delay: time.Millisecond}
	cmdSetTempOffset      = command{word: 0x241d, delay: time.Millisecond}
	cmdGetSerialNumber    = command{word: 0x3682, responseSize: 9, delay: time.Millisecond}
	cmdReinit             = command{word: 0x3646, delay: 30 * time.Millisecond}
	cmdWakeUp             = command{word: 0x36f6, delay: 30 * time.Millisecond}
)

// pollInterval is the wait between two data ready queries.
const pollInterval = 500 * time.Millisecond

// sleep is replaced in unit tests.
var sleep = time.Sleep

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr:         SensorAddress,
	ReadyTimeout: 6 * time.Second,
}

// Opts holds the configuration applied when the sensor is opened.
type Opts struct {
	Addr uint16
	// ReadyTimeout bounds how long Sense waits for a new measurement. The
	// sensor produces one every 5 seconds.
	ReadyTimeout time.Duration
	// TemperatureOffset is a difference, e.g. 4 * physic.Celsius, subtracted
	// by the sensor from its temperature readings to compensate self heating
	// in an enclosure. Zero keeps the value stored in the sensor.
	TemperatureOffset physic.Temperature
	// AmbientPressure improves CO2 accuracy. Zero keeps the sensor default.
	AmbientPressure physic.Pressure
}

// Env is a sensor reading: CO2 concentration, temperature and humidity.
type Env struct {
	physic.Env
	CO2 PPM
}

// WarmingUp reports whether the sensor has not delivered a valid CO2
// measurement yet.
func (e *Env) WarmingUp() bool {
	return e.CO2 == 0
}

func (e *Env) String() string {
	return fmt.Sprintf("Temperature: %s Humidity: %s CO2: %s", e.Temperature, e.Humidity, e.CO2)
}

// Dev is a handle to an SCD4x sensor.
type Dev struct {
	d    *i2c.Dev
	opts Opts

	mu      sync.Mutex
	sensing bool
}

// NewI2C opens the sensor on bus b, applies opts and starts periodic
// measurement.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	o := *opts
	if o.Addr == 0 {
		o.Addr = SensorAddress
	}
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = DefaultOpts.ReadyTimeout
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: o.Addr}, opts: o}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.start(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("scd4x{%s}", d.d)
}

// Sense blocks until a measurement is ready and returns it.
//
// A zero CO2 value is not an error: the sensor is still warming up.
func (d *Dev) Sense(env *Env) error {
	*env = Env{}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.sensing {
		if err := d.start(); err != nil {
			return err
		}
	}
	if err := d.waitReady(); err != nil {
		return err
	}
	words, err := d.sendCommand(cmdReadMeasurement, nil)
	if err != nil {
		return err
	}
	env.CO2 = PPM(words[0])
	env.Temperature = countToTemp(words[1])
	env.Humidity = countToHumidity(words[2])
	return nil
}

// SerialNumber returns the 48 bit serial number of the sensor. It stops
// periodic measurement; the next Sense restarts it.
func (d *Dev) SerialNumber() (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	words, err := d.sendCommand(cmdGetSerialNumber, nil)
	if err != nil {
		return 0, err
	}
	return uint64(words[0])<<32 | uint64(words[1])<<16 | uint64(words[2]), nil
}

// SetAmbientPressure updates the pressure compensation. It can be called
// while measuring.
func (d *Dev) SetAmbientPressure(p physic.Pressure) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.setAmbientPressure(p)
}

// Reset reloads the settings stored in the sensor EEPROM.
func (d *Dev) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.sendCommand(cmdReinit, nil)
	return err
}

// Halt stops periodic measurement.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stop()
}

// Precision returns the sensor's resolution: 1 PPM for CO2 and 1/65535 of
// the range for temperature and humidity.
func (d *Dev) Precision(env *Env) {
	inc := 1.0 / float64(math.MaxUint16)
	env.Temperature = physic.Temperature(175 * inc * float64(physic.Celsius))
	env.Pressure = 0
	env.Humidity = physic.RelativeHumidity(100 * inc * float64(physic.PercentRH))
	env.CO2 = 1
}

func (d *Dev) start() error {
	if _, err := d.sendCommand(cmdWakeUp, nil); err != nil {
		// A sensor left in periodic mode rejects wake up; stop it and go on.
		if _, err := d.sendCommand(cmdStopMeasurement, nil); err != nil {
			return err
		}
	}
	if d.opts.TemperatureOffset != 0 {
		c := float64(d.opts.TemperatureOffset) / float64(physic.Celsius)
		w := uint16(c * math.MaxUint16 / 175)
		if _, err := d.sendCommand(cmdSetTempOffset, []uint16{w}); err != nil {
			return err
		}
	}
	if d.opts.AmbientPressure != 0 {
		if err := d.setAmbientPressure(d.opts.AmbientPressure); err != nil {
			return err
		}
	}
	if _, err := d.sendCommand(cmdStartMeasurement, nil); err != nil {
		return err
	}
	d.sensing = true
	return nil
}

func (d *Dev) stop() error {
	if !d.sensing {
		return nil
	}
	d.sensing = false
	_, err := d.sendCommand(cmdStopMeasurement, nil)
	return err
}

func (d *Dev) setAmbientPressure(p physic.Pressure) error {
	_, err := d.sendCommand(cmdSetAmbientPressure, []uint16{uint16(p / (100 * physic.Pascal))})
	return err
}

func (d *Dev) waitReady() error {
	const mask = 1<<11 - 1
	tries := int(d.opts.ReadyTimeout/pollInterval) + 1
	for i := 0; i < tries; i++ {
		words, err := d.sendCommand(cmdGetDataReady, nil)
		if err != nil {
			return err
		}
		if words[0]&mask != 0 {
			return nil
		}
		sleep(pollInterval)
	}
	return ErrNotReady
}

// sendCommand writes cmd with its CRC protected arguments and decodes the
// response words. Commands rejected during periodic measurement stop it
// first.
func (d *Dev) sendCommand(cmd command, args []uint16) ([]uint16, error) {
	if d.sensing && !cmd.whileSensing {
		if err := d.stop(); err != nil {
			return nil, err
		}
	}
	w := []byte{byte(cmd.word >> 8), byte(cmd.word)}
	for _, a := range args {
		w = common.AppendWord(w, a)
	}
	var r []byte
	if cmd.responseSize > 0 {
		r = make([]byte, cmd.responseSize)
	}
	if err := d.d.Tx(w, r); err != nil {
		return nil, fmt.Errorf("scd4x: cmd 0x%04x: %w", cmd.word, err)
	}
	if cmd.delay > 0 {
		sleep(cmd.delay)
	}
	if r == nil {
		return nil, nil
	}
	words, err := common.Words(r)
	if err != nil {
		return nil, fmt.Errorf("scd4x: cmd 0x%04x: %w", cmd.word, err)
	}
	return words, nil
}

func countToTemp(count uint16) physic.Temperature {
	c := -45 + 175*float64(count)/math.MaxUint16
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Celsius))
}

func countToHumidity(count uint16) physic.RelativeHumidity {
	return physic.RelativeHumidity(100 * float64(count) / math.MaxUint16 * float64(physic.PercentRH))
}
