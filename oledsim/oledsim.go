// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oledsim

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	ctrlCommand = 0x00
	ctrlData    = 0x40
)

// Addressing modes set by command 0x20.
const (
	modeHorizontal = 0
	modeVertical   = 1
	modePage       = 2
)

// argCount is the number of argument bytes of the commands taking any.
var argCount = map[byte]int{
	0x20: 1, // memory addressing mode
	0x21: 2, // column address range
	0x22: 2, // page address range
	0x81: 1, // contrast
	0x8D: 1, // charge pump
	0xA8: 1, // multiplex ratio
	0xD3: 1, // display offset
	0xD5: 1, // clock divide ratio
	0xD9: 1, // pre-charge period
	0xDA: 1, // COM pins
	0xDB: 1, // VCOMH deselect
}

// ErrTxTooLong is returned for a transaction longer than Opts.MaxTx.
var ErrTxTooLong = errors.New("oledsim: transaction too long")

// DefaultOpts emulates a 128x64 module at 0x3C behind an adapter limited to
// 32 bytes per transaction, like the Arduino Wire buffer.
var DefaultOpts = Opts{
	W:     128,
	H:     64,
	Addr:  0x3C,
	MaxTx: 32,
}

// Opts represents the options available for this display.
type Opts struct {
	W, H int
	Addr uint16
	// MaxTx is the longest transaction accepted, control byte included. 0
	// means no limit.
	MaxTx int
	// Out receives Render output. Defaults to a color capable stdout.
	Out     io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// Tx is one recorded transaction.
type Tx struct {
	Addr uint16
	W    []byte
}

// Panel is an emulated display controller.
type Panel struct {
	opts    Opts
	w       io.Writer
	palette *ansi256.Palette

	ram      []byte
	page     int
	col      int
	mode     int
	on       bool
	inverted bool
	contrast byte
	log      []Tx

	buf bytes.Buffer
}

// New returns a blank, switched off Panel.
func New(opts *Opts) *Panel {
	o := *opts
	if o.W == 0 {
		o.W = DefaultOpts.W
	}
	if o.H == 0 {
		o.H = DefaultOpts.H
	}
	if o.Addr == 0 {
		o.Addr = DefaultOpts.Addr
	}
	p := &Panel{
		opts:     o,
		w:        o.Out,
		palette:  o.Palette,
		ram:      make([]byte, o.W*o.H/8),
		mode:     modePage,
		contrast: 0x7F,
	}
	if p.w == nil {
		p.w = colorable.NewColorableStdout()
	}
	if p.palette == nil {
		p.palette = ansi256.Default
	}
	return p
}

func (p *Panel) String() string {
	return fmt.Sprintf("oledsim{%dx%d@0x%02x}", p.opts.W, p.opts.H, p.opts.Addr)
}

// Close implements i2c.BusCloser.
func (p *Panel) Close() error {
	return nil
}

// SetSpeed implements i2c.Bus.
func (p *Panel) SetSpeed(f physic.Frequency) error {
	if f > 1*physic.MegaHertz {
		return fmt.Errorf("oledsim: invalid speed %s; maximum supported clock is 1MHz", f)
	}
	return nil
}

// Tx implements i2c.Bus.
//
// A read returns the status byte: 0x06 for a 128x64 module, bit 6 set while
// the display is off.
func (p *Panel) Tx(addr uint16, w, r []byte) error {
	if addr != p.opts.Addr {
		return fmt.Errorf("oledsim: no device at 0x%02x", addr)
	}
	if p.opts.MaxTx > 0 && len(w) > p.opts.MaxTx {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrTxTooLong, len(w), p.opts.MaxTx)
	}
	if len(r) > 0 {
		r[0] = 0x06
		if !p.on {
			r[0] |= 0x40
		}
	}
	if len(w) == 0 {
		return nil
	}
	p.log = append(p.log, Tx{Addr: addr, W: append([]byte(nil), w...)})
	switch w[0] {
	case ctrlCommand:
		return p.commands(w[1:])
	case ctrlData:
		p.data(w[1:])
		return nil
	default:
		return fmt.Errorf("oledsim: invalid control byte 0x%02x", w[0])
	}
}

func (p *Panel) commands(c []byte) error {
	for i := 0; i < len(c); i++ {
		op := c[i]
		n := argCount[op]
		if n > 0 && i+n >= len(c) {
			return fmt.Errorf("oledsim: command 0x%02x is missing %d argument(s)", op, n)
		}
		args := c[i+1 : i+1+n]
		i += n
		switch {
		case op <= 0x0F:
			p.col = p.col&0xF0 | int(op)
		case op >= 0x10 && op <= 0x17:
			p.col = int(op&0x0F)<<4 | p.col&0x0F
		case op >= 0xB0 && op <= 0xB7:
			p.page = int(op & 0x07)
		case op >= 0x40 && op <= 0x7F:
			// Start line.
		case op == 0x20:
			p.mode = int(args[0] & 0x03)
		case op == 0x81:
			p.contrast = args[0]
		case op == 0xAE:
			p.on = false
		case op == 0xAF:
			p.on = true
		case op == 0xA6:
			p.inverted = false
		case op == 0xA7:
			p.inverted = true
		case n > 0:
		case op == 0xA0, op == 0xA1, op == 0xA4, op == 0xA5, op == 0xC0, op == 0xC8, op == 0x2E, op == 0x2F, op == 0xE3:
		default:
			return fmt.Errorf("oledsim: unknown command 0x%02x", op)
		}
	}
	return nil
}

func (p *Panel) data(d []byte) {
	pages := p.opts.H / 8
	for _, b := range d {
		if p.col < p.opts.W && p.page < pages {
			p.ram[p.page*p.opts.W+p.col] = b
		}
		switch p.mode {
		case modeVertical:
			p.page++
			if p.page >= pages {
				p.page = 0
				p.col = (p.col + 1) % p.opts.W
			}
		case modeHorizontal:
			p.col++
			if p.col >= p.opts.W {
				p.col = 0
				p.page = (p.page + 1) % pages
			}
		default:
			if p.col < p.opts.W-1 {
				p.col++
			}
		}
	}
}

// On reports whether the display is switched on.
func (p *Panel) On() bool {
	return p.on
}

// Inverted reports whether the display shows black on white.
func (p *Panel) Inverted() bool {
	return p.inverted
}

// Contrast returns the last contrast level set.
func (p *Panel) Contrast() byte {
	return p.contrast
}

// Pixels returns a copy of the display RAM, page after page.
func (p *Panel) Pixels() []byte {
	return append([]byte(nil), p.ram...)
}

// Page returns a copy of one page of the display RAM.
func (p *Panel) Page(page int) []byte {
	if page < 0 || page >= p.opts.H/8 {
		return nil
	}
	return append([]byte(nil), p.ram[page*p.opts.W:(page+1)*p.opts.W]...)
}

// Image returns the display RAM as an image.
func (p *Panel) Image() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, p.opts.W, p.opts.H))
	copy(img.Pix, p.ram)
	return img
}

// Transactions returns the transactions received since the last Reset.
func (p *Panel) Transactions() []Tx {
	return append([]Tx(nil), p.log...)
}

// Reset forgets the recorded transactions.
func (p *Panel) Reset() {
	p.log = nil
}

// Render draws the panel to Opts.Out, one colored block per pixel.
func (p *Panel) Render() error {
	lit := color.NRGBA{0x80, 0xD0, 0xFF, 0xFF}
	dark := color.NRGBA{0x00, 0x00, 0x00, 0xFF}
	if p.inverted {
		lit, dark = dark, lit
	}
	// This code is designed to minimize the amount of memory allocated per call.
	p.buf.Reset()
	_, _ = p.buf.WriteString("\033[H\033[0m")
	for y := 0; y < p.opts.H; y++ {
		row := y / 8 * p.opts.W
		mask := byte(1) << (y % 8)
		for x := 0; x < p.opts.W; x++ {
			c := dark
			if p.on && p.ram[row+x]&mask != 0 {
				c = lit
			}
			_, _ = io.WriteString(&p.buf, p.palette.Block(c))
		}
		_, _ = p.buf.WriteString("\033[0m\n")
	}
	_, err := p.buf.WriteTo(p.w)
	return err
}

var _ i2c.BusCloser = &Panel{}
var _ fmt.Stringer = &Panel{}
