// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ssd1306

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	_CHARGEPUMP          = 0x8D
	_COMSCANDEC          = 0xC8
	_DEACTIVATE_SCROLL   = 0x2E
	_DISPLAYALLON_RESUME = 0xA4
	_DISPLAYOFF          = 0xAE
	_DISPLAYON           = 0xAF
	_INVERTDISPLAY       = 0xA7
	_MEMORYMODE          = 0x20
	_NORMALDISPLAY       = 0xA6
	_PAGESTARTADDRESS    = 0xB0
	_SETCOMPINS          = 0xDA
	_SETCONTRAST         = 0x81
	_SETDISPLAYCLOCKDIV  = 0xD5
	_SETDISPLAYOFFSET    = 0xD3
	_SETHIGHCOLUMN       = 0x10
	_SETLOWCOLUMN        = 0x00
	_SETMULTIPLEX        = 0xA8
	_SETPRECHARGE        = 0xD9
	_SETSEGMENTREMAP     = 0xA1
	_SETSTARTLINE        = 0x40
	_SETVCOMDETECT       = 0xDB
)

const (
	i2cCmd  = 0x00 // I²C transaction has stream of command bytes
	i2cData = 0x40 // I²C transaction has stream of data bytes

	// ChunkSize is the maximum number of data bytes per transaction.
	ChunkSize = 16
)

// ErrOutOfRange is returned when a page, column or size does not fit the
// display. Nothing is sent on the bus in that case.
var ErrOutOfRange = errors.New("ssd1306: out of range")

// TransportError is a bus failure.
type TransportError struct {
	// Op is the phase that failed: "init", "command", "address" or "data".
	Op string
	// Page is the page being written, or -1.
	Page int
	Err  error
}

func (e *TransportError) Error() string {
	if e.Page < 0 {
		return fmt.Sprintf("ssd1306: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ssd1306: %s page %d: %v", e.Op, e.Page, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	W:        128,
	H:        64,
	Addr:     0x3C,
	Contrast: 0xCF,
}

// Opts defines the options for the device.
type Opts struct {
	W int
	H int
	// The I²C address of the display. 0 means 0x3C.
	Addr uint16
	// Contrast level. 0 means 0xCF.
	Contrast byte
	// Sequential corresponds to the Sequential/Alternative COM pin configuration
	// in the OLED panel hardware. Try toggling this if half the rows appear to be
	// missing on your display. Particularly on 32 pixel height displays.
	Sequential bool
}

// Dev is an open handle to the display controller.
type Dev struct {
	c    conn.Conn
	rect image.Rectangle
	// next is lazy initialized on first Draw().
	next   *image1bit.VerticalLSB
	halted bool
	// tx is reused for every data transaction.
	tx [1 + ChunkSize]byte
}

// NewI2C returns a Dev object that communicates over I²C to a SSD1306 display
// controller, after sending the initialization sequence.
//
// Maximum clock speed is 400kHz.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	o := *opts
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	if o.Contrast == 0 {
		o.Contrast = DefaultOpts.Contrast
	}
	return newDev(&i2c.Dev{Bus: b, Addr: o.Addr}, &o)
}

func newDev(c conn.Conn, opts *Opts) (*Dev, error) {
	if opts.W < 8 || opts.W > 128 || opts.W&7 != 0 {
		return nil, fmt.Errorf("ssd1306: invalid width %d", opts.W)
	}
	if opts.H < 8 || opts.H > 64 || opts.H&7 != 0 {
		return nil, fmt.Errorf("ssd1306: invalid height %d", opts.H)
	}
	d := &Dev{c: c, rect: image.Rect(0, 0, opts.W, opts.H)}
	if err := d.c.Tx(append([]byte{i2cCmd}, initCmd(opts)...), nil); err != nil {
		return nil, &TransportError{Op: "init", Page: -1, Err: err}
	}
	return d, nil
}

// initCmd returns the initialization sequence, display on being last.
func initCmd(opts *Opts) []byte {
	// See page 40.
	hwLayout := byte(0x02)
	if !opts.Sequential {
		hwLayout |= 0x10
	}
	return []byte{
		_DISPLAYOFF,               // Display off
		_SETDISPLAYCLOCKDIV, 0x80, // Set osc frequency and divide ratio; power on reset value
		_SETMULTIPLEX, byte(opts.H - 1), // Set multiplex ratio (number of lines to display)
		_SETDISPLAYOFFSET, 0x00, // Set display offset; 0
		_SETSTARTLINE,     // Start display start line; 0
		_CHARGEPUMP, 0x14, // Enable charge pump regulator; page 62
		_MEMORYMODE, 0x00, // Set memory addressing mode to horizontal
		_SETSEGMENTREMAP,      // Column 127 is mapped to SEG0
		_COMSCANDEC,           // Scan from COM[N-1] to COM0
		_SETCOMPINS, hwLayout, // Set COM pins hardware configuration; see page 40
		_SETCONTRAST, opts.Contrast,
		_SETPRECHARGE, 0xF1, // Set pre-charge period; from adafruit driver
		_SETVCOMDETECT, 0x20, // Set Vcomh deselect level to 0.77xVcc; page 32
		_DISPLAYALLON_RESUME, // Set display to use GDDRAM content
		_NORMALDISPLAY,       // Set normal display (_INVERTDISPLAY for inverted 0=lit, 1=dark)
		_DEACTIVATE_SCROLL,   // Deactivate scroll
		_DISPLAYON,           // Display on
	}
}

func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%s, %s}", d.c, d.rect.Max)
}

// Pages returns the number of pages of the display.
func (d *Dev) Pages() int {
	return d.rect.Dy() / 8
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// WritePage sends a full page. len(data) must be the display width.
func (d *Dev) WritePage(page int, data []byte) error {
	if len(data) != d.rect.Dx() {
		return fmt.Errorf("%w: page of %d bytes; expected %d", ErrOutOfRange, len(data), d.rect.Dx())
	}
	return d.WriteColumns(page, 0, data)
}

// WriteColumns sends data to page starting at column col.
func (d *Dev) WriteColumns(page, col int, data []byte) error {
	if page < 0 || page >= d.Pages() {
		return fmt.Errorf("%w: page %d", ErrOutOfRange, page)
	}
	if col < 0 || len(data) == 0 || col+len(data) > d.rect.Dx() {
		return fmt.Errorf("%w: %d bytes at column %d", ErrOutOfRange, len(data), col)
	}
	err := d.sendCommand([]byte{
		_PAGESTARTADDRESS | byte(page),
		_SETLOWCOLUMN | byte(col)&0x0F,
		_SETHIGHCOLUMN | byte(col)>>4,
	})
	if err != nil {
		return &TransportError{Op: "address", Page: page, Err: err}
	}
	for i := 0; i < len(data); i += ChunkSize {
		end := min(i+ChunkSize, len(data))
		w := append(d.tx[:0], i2cData)
		w = append(w, data[i:end]...)
		if err := d.c.Tx(w, nil); err != nil {
			return &TransportError{Op: "data", Page: page, Err: err}
		}
	}
	return nil
}

// Clear blanks the whole display.
func (d *Dev) Clear() error {
	zero := make([]byte, d.rect.Dx())
	for page := 0; page < d.Pages(); page++ {
		if err := d.WritePage(page, zero); err != nil {
			return err
		}
	}
	return nil
}

// Write writes a full frame of pixels to the display.
//
// The format is unsual as each byte represent 8 vertical pixels at a time. The
// format is horizontal bands of 8 pixels high, the content of
// image1bit.VerticalLSB.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	w := d.rect.Dx()
	if len(pixels) != w*d.Pages() {
		return 0, fmt.Errorf("%w: invalid pixel stream length; expected %d bytes, got %d bytes", ErrOutOfRange, w*d.Pages(), len(pixels))
	}
	for page := 0; page < d.Pages(); page++ {
		if err := d.WritePage(page, pixels[page*w:(page+1)*w]); err != nil {
			return page * w, err
		}
	}
	return len(pixels), nil
}

// Draw implements display.Drawer.
//
// It draws synchronously, once this function returns, the display is updated.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	var next []byte
	if img, ok := src.(*image1bit.VerticalLSB); ok && r == d.rect && img.Rect == d.rect && sp.X == 0 && sp.Y == 0 {
		// Exact size, full frame, image1bit encoding: fast path!
		next = img.Pix
	} else {
		if d.next == nil {
			d.next = image1bit.NewVerticalLSB(d.rect)
		}
		next = d.next.Pix
		draw.Src.Draw(d.next, r, src, sp)
	}
	_, err := d.Write(next)
	return err
}

// SetContrast changes the screen contrast.
func (d *Dev) SetContrast(level byte) error {
	return d.command([]byte{_SETCONTRAST, level})
}

// Invert the display (black on white vs white on black).
func (d *Dev) Invert(blackOnWhite bool) error {
	b := []byte{_NORMALDISPLAY}
	if blackOnWhite {
		b[0] = _INVERTDISPLAY
	}
	return d.command(b)
}

// Halt turns off the display.
//
// Sending any other command afterward reenables the display.
func (d *Dev) Halt() error {
	d.halted = false
	err := d.command([]byte{_DISPLAYOFF})
	if err == nil {
		d.halted = true
	}
	return err
}

func (d *Dev) command(c []byte) error {
	if err := d.sendCommand(c); err != nil {
		return &TransportError{Op: "command", Page: -1, Err: err}
	}
	return nil
}

func (d *Dev) sendCommand(c []byte) error {
	w := []byte{i2cCmd}
	if d.halted {
		// Transparently enable the display.
		w = append(w, _DISPLAYON)
	}
	if err := d.c.Tx(append(w, c...), nil); err != nil {
		return err
	}
	d.halted = false
	return nil
}

var _ display.Drawer = &Dev{}
