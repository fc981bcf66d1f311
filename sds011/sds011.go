// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sds011

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/GermanBionicSystems/airmon/common"
	"go.bug.st/serial"
)

// FrameSize is the length of a measurement frame.
const FrameSize = 10

const (
	head     = 0xAA
	tail     = 0xAB
	cmdData  = 0xC0
	cmdReply = 0xC5
	cmdSet   = 0xB4

	// Longest run of bytes Sense scans looking for a measurement frame.
	maxScan = 4 * FrameSize
)

var (
	// ErrChecksum is returned when a frame checksum does not match.
	ErrChecksum = errors.New("sds011: checksum mismatch")
	// ErrFrame is returned for a malformed frame, or when no measurement
	// frame is found in the stream.
	ErrFrame = errors.New("sds011: invalid frame")
	// ErrTimeout is returned when the port stays silent past ReadTimeout.
	ErrTimeout = errors.New("sds011: read timeout")
)

// Reading is one measurement, in µg/m³.
type Reading struct {
	PM25 float64
	PM10 float64
	// ID is the device identifier carried by every frame.
	ID uint16
}

func (r *Reading) String() string {
	return fmt.Sprintf("PM2.5: %.1f µg/m³ PM10: %.1f µg/m³", r.PM25, r.PM10)
}

// Decode parses a measurement frame.
func Decode(f []byte, r *Reading) error {
	if len(f) != FrameSize || f[0] != head || f[1] != cmdData || f[9] != tail {
		return ErrFrame
	}
	if common.Sum8(f[2:8]) != f[8] {
		return ErrChecksum
	}
	r.PM25 = float64(uint16(f[3])<<8|uint16(f[2])) / 10
	r.PM10 = float64(uint16(f[5])<<8|uint16(f[4])) / 10
	r.ID = uint16(f[6])<<8 | uint16(f[7])
	return nil
}

// DefaultOpts is the sensor's fixed line configuration.
var DefaultOpts = Opts{
	BaudRate:    9600,
	ReadTimeout: 2 * time.Second,
}

// Opts configures the serial port.
type Opts struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// Dev is a handle to an SDS011 sensor.
type Dev struct {
	name string
	mu   sync.Mutex
	w    io.Writer
	r    *bufio.Reader
	c    io.Closer
}

// Open opens the serial port name at 8N1.
func Open(name string, opts *Opts) (*Dev, error) {
	o := *opts
	if o.BaudRate == 0 {
		o.BaudRate = DefaultOpts.BaudRate
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultOpts.ReadTimeout
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("sds011: open %s: %w", name, err)
	}
	if err := port.SetReadTimeout(o.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("sds011: set timeout: %w", err)
	}
	d := New(port)
	d.name = name
	return d, nil
}

// New returns a Dev talking over rw. rw is closed by Close when it
// implements io.Closer.
//
// A Read returning no data and no error is a timeout, as serial ports do.
func New(rw io.ReadWriter) *Dev {
	d := &Dev{name: "sds011", w: rw, r: bufio.NewReaderSize(timeoutReader{rw}, 64)}
	if c, ok := rw.(io.Closer); ok {
		d.c = c
	}
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("sds011{%s}", d.name)
}

// Sense returns the next measurement frame. Command replies and noise
// before it are skipped.
//
// A head byte is only consumed with its frame once the frame is recognized,
// so a 0xAA inside a payload never hides the next real frame.
func (d *Dev) Sense(r *Reading) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for scanned := 0; scanned < maxScan; {
		b, err := d.r.ReadByte()
		if err != nil {
			return fmt.Errorf("sds011: read: %w", err)
		}
		scanned++
		if b != head {
			continue
		}
		rest, err := d.r.Peek(FrameSize - 1)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("sds011: read: %w", err)
		}
		if rest[FrameSize-2] != tail || (rest[0] != cmdData && rest[0] != cmdReply) {
			continue
		}
		var f [FrameSize]byte
		f[0] = head
		copy(f[1:], rest)
		_, _ = d.r.Discard(FrameSize - 1)
		scanned += FrameSize - 1
		if f[1] == cmdReply {
			continue
		}
		return Decode(f[:], r)
	}
	return ErrFrame
}

// SetWorking wakes the sensor up, or puts it to sleep with the fan and the
// laser off.
func (d *Dev) SetWorking(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var mode byte
	if on {
		mode = 1
	}
	if _, err := d.w.Write(commandFrame(0x06, 0x01, mode)); err != nil {
		return fmt.Errorf("sds011: set working: %w", err)
	}
	return nil
}

// Halt puts the sensor to sleep.
func (d *Dev) Halt() error {
	return d.SetWorking(false)
}

// Close closes the underlying port.
func (d *Dev) Close() error {
	if d.c == nil {
		return nil
	}
	return d.c.Close()
}

// commandFrame builds a 19 byte host command addressed to every device.
func commandFrame(data ...byte) []byte {
	f := make([]byte, 19)
	f[0] = head
	f[1] = cmdSet
	copy(f[2:15], data)
	f[15], f[16] = 0xFF, 0xFF
	f[17] = common.Sum8(f[2:17])
	f[18] = tail
	return f
}

type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n == 0 && err == nil {
		return 0, ErrTimeout
	}
	return n, err
}
