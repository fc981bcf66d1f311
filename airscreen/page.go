// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package airscreen

import (
	"errors"
	"fmt"
)

// Display geometry.
const (
	Width  = 128
	Height = 64
	Pages  = Height / 8
)

// ErrOutOfRange is returned when a draw would land outside the display.
var ErrOutOfRange = errors.New("airscreen: out of range")

// Page is one 8 pixel high band of the display. Index i holds the column at
// x = i, bit 0 being the top row of the band.
type Page [Width]byte

// Set sets column col to b.
func (p *Page) Set(col int, b byte) error {
	if col < 0 || col >= Width {
		return fmt.Errorf("%w: column %d", ErrOutOfRange, col)
	}
	p[col] = b
	return nil
}

// Fill sets the columns [col, col+n) to b.
func (p *Page) Fill(col, n int, b byte) error {
	if col < 0 || n < 0 || col+n > Width {
		return fmt.Errorf("%w: columns [%d, %d)", ErrOutOfRange, col, col+n)
	}
	for i := col; i < col+n; i++ {
		p[i] = b
	}
	return nil
}

// Clear zero fills the page.
func (p *Page) Clear() {
	*p = Page{}
}

// IsZero reports whether no pixel is lit.
func (p *Page) IsZero() bool {
	return *p == Page{}
}

// Lit returns the number of columns with at least one pixel on in
// [col, col+n).
func (p *Page) Lit(col, n int) int {
	c := 0
	for i := col; i < col+n && i < Width; i++ {
		if i >= 0 && p[i] != 0 {
			c++
		}
	}
	return c
}
