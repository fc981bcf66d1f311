// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package snapshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultOpts renders pixels as 4x4 squares with the usual blue on black
// OLED look.
var DefaultOpts = Opts{
	Scale:  4,
	Border: 8,
	Lit:    color.NRGBA{0x80, 0xD0, 0xFF, 0xFF},
	Dark:   color.NRGBA{0x08, 0x08, 0x10, 0xFF},
	Bezel:  color.NRGBA{0x30, 0x30, 0x30, 0xFF},
}

// Opts controls the rendering.
type Opts struct {
	// Scale is the size in picture pixels of one display pixel.
	Scale int
	// Border is the width of the bezel around the screen.
	Border int
	// Caption is drawn under the screen when not empty.
	Caption string

	// Nil colors take the DefaultOpts ones.
	Lit, Dark, Bezel color.Color
}

const captionSize = 14

var (
	faceOnce sync.Once
	face     font.Face
	faceErr  error
)

func captionFace() (font.Face, error) {
	faceOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			faceErr = fmt.Errorf("snapshot: %w", err)
			return
		}
		face = truetype.NewFace(f, &truetype.Options{Size: captionSize})
	})
	return face, faceErr
}

// Render returns the enlarged picture of img. A pixel is lit when its
// luminance is above half.
func Render(img image.Image, opts *Opts) (image.Image, error) {
	if opts.Scale <= 0 {
		return nil, errors.New("snapshot: scale must be positive")
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New("snapshot: empty image")
	}
	o := *opts
	if o.Lit == nil {
		o.Lit = DefaultOpts.Lit
	}
	if o.Dark == nil {
		o.Dark = DefaultOpts.Dark
	}
	if o.Bezel == nil {
		o.Bezel = DefaultOpts.Bezel
	}
	opts = &o
	s := opts.Scale
	captionH := 0
	if opts.Caption != "" {
		captionH = captionSize * 2
	}
	w := b.Dx()*s + 2*opts.Border
	h := b.Dy()*s + 2*opts.Border + captionH

	dc := gg.NewContext(w, h)
	dc.SetColor(opts.Bezel)
	dc.Clear()
	x0, y0 := float64(opts.Border), float64(opts.Border)
	dc.SetColor(opts.Dark)
	dc.DrawRectangle(x0, y0, float64(b.Dx()*s), float64(b.Dy()*s))
	dc.Fill()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 0x80 {
				continue
			}
			dc.DrawRectangle(x0+float64((x-b.Min.X)*s), y0+float64((y-b.Min.Y)*s), float64(s), float64(s))
		}
	}
	dc.SetColor(opts.Lit)
	dc.Fill()

	if opts.Caption != "" {
		f, err := captionFace()
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(f)
		dc.SetColor(opts.Lit)
		dc.DrawStringAnchored(opts.Caption, float64(w)/2, float64(h-opts.Border-captionH/2), 0.5, 0.5)
	}
	return dc.Image(), nil
}

// PNG writes the rendered picture of img to w.
func PNG(w io.Writer, img image.Image, opts *Opts) error {
	pic, err := Render(img, opts)
	if err != nil {
		return err
	}
	return gg.NewContextForImage(pic).EncodePNG(w)
}

// Save writes the rendered picture of img to a PNG file.
func Save(path string, img image.Image, opts *Opts) error {
	pic, err := Render(img, opts)
	if err != nil {
		return err
	}
	if err := gg.SavePNG(path, pic); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}
