// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package airscreen

import (
	"fmt"
	"image"

	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/GermanBionicSystems/airmon/airquality"
	"github.com/GermanBionicSystems/airmon/font5x7"
)

const (
	// LeftMargin is the minimum x of a glyph.
	LeftMargin = 2
	// Advance is the horizontal distance between two glyphs: 5 columns of
	// glyph, 2 blank.
	Advance = font5x7.Width + 2
	// textLimit is the x at which text stops.
	textLimit = Width - 8
	// BarWidth is the number of columns of the progress bar body.
	BarWidth = 48
	// dotPage and dotCol locate the status dot.
	dotPage = 0
	dotCol  = Width - len(dot)
)

// Pages used by ComposeFrame.
const (
	pageCO2   = 0
	pageClime = 2
	pagePM25  = 4
	pageBar   = 6
)

var (
	barOpen  = [2]byte{0xFF, 0x80}
	barClose = [2]byte{0x80, 0xFF}
	dot      = [5]byte{0x38, 0x7C, 0x7C, 0x7C, 0x38}
)

// PageWriter transmits one page to a display.
//
// WritePage must not retain data after returning.
type PageWriter interface {
	WritePage(page int, data []byte) error
}

// Renderer draws into the page buffers of one display.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	font  font5x7.Font
	pages [Pages]Page
	// sent is the content of each page at the last successful Flush, valid
	// for the pages set in synced.
	sent   [Pages]Page
	synced uint16
}

// New returns a Renderer using f for text. A nil f uses font5x7.Default.
//
// All pages start blank and pending, so the first Flush clears the display.
func New(f font5x7.Font) *Renderer {
	if f == nil {
		f = font5x7.Default
	}
	return &Renderer{font: f}
}

func (r *Renderer) String() string {
	return fmt.Sprintf("airscreen.Renderer{%dx%d}", Width, Height)
}

// Clear zero fills every page.
func (r *Renderer) Clear() {
	for i := range r.pages {
		r.pages[i].Clear()
	}
}

// ClearPage zero fills one page.
func (r *Renderer) ClearPage(page int) error {
	p, err := r.page(page)
	if err != nil {
		return err
	}
	p.Clear()
	return nil
}

// Page returns a copy of a page buffer.
func (r *Renderer) Page(page int) (Page, error) {
	p, err := r.page(page)
	if err != nil {
		return Page{}, err
	}
	return *p, nil
}

// Image returns a copy of the whole frame.
func (r *Renderer) Image() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	for i := range r.pages {
		copy(img.Pix[i*Width:], r.pages[i][:])
	}
	return img
}

// Pending reports whether page differs from what the last Flush sent.
func (r *Renderer) Pending(page int) bool {
	if page < 0 || page >= Pages {
		return false
	}
	return r.synced&(1<<page) == 0 || r.pages[page] != r.sent[page]
}

// Invalidate marks every page as pending, e.g. after the display was reset.
func (r *Renderer) Invalidate() {
	r.synced = 0
}

// DrawText draws text on page starting at x plus the left margin.
//
// Lowercase letters are drawn as uppercase. Characters without a glyph leave
// their cell untouched. Drawing stops before the glyph that would start past
// Width-8, so text never overruns the page. Depending on x, a long line can
// reach the status dot columns; the dashboard lines are short enough not to.
func (r *Renderer) DrawText(text string, x, page int) error {
	p, err := r.page(page)
	if err != nil {
		return err
	}
	if x < 0 {
		x = 0
	}
	pos := x + LeftMargin
	for _, c := range text {
		if pos >= textLimit {
			break
		}
		if err := r.drawGlyph(p, c, pos); err != nil {
			return err
		}
		pos += Advance
	}
	return nil
}

// DrawProgressBar draws a 48 column gauge of percent followed by the value,
// e.g. "[#####    ] 42%", on page starting at x plus the left margin.
//
// percent is clamped to [0, 100]. Nothing is drawn when the bar and its label
// do not fit in the page.
func (r *Renderer) DrawProgressBar(x, page, percent int) error {
	p, err := r.page(page)
	if err != nil {
		return err
	}
	if x < 0 {
		x = 0
	}
	percent = clampPercent(percent)
	label := fmt.Sprintf(" %d%%", percent)

	pos := x + LeftMargin
	labelPos := pos + len(barOpen) + BarWidth + len(barClose) + 1
	if end := labelPos + (len(label)-1)*Advance + font5x7.Width + 1; end > Width {
		return fmt.Errorf("%w: progress bar at x=%d needs %d columns", ErrOutOfRange, x, end)
	}

	copy(p[pos:], barOpen[:])
	pos += len(barOpen)
	filled := FilledColumns(percent)
	_ = p.Fill(pos, filled, 0xFF)
	_ = p.Fill(pos+filled, BarWidth-filled, 0x00)
	pos += BarWidth
	copy(p[pos:], barClose[:])

	pos = labelPos
	for _, c := range label {
		if err := r.drawGlyph(p, c, pos); err != nil {
			return err
		}
		pos += Advance
	}
	return nil
}

// FilledColumns returns the number of lit bar columns for percent, i.e.
// floor(percent*48/100) after clamping percent to [0, 100].
func FilledColumns(percent int) int {
	return clampPercent(percent) * BarWidth / 100
}

// DrawStatusDot draws or erases the 5x5 dot in the top right corner.
func (r *Renderer) DrawStatusDot(on bool) error {
	p, err := r.page(dotPage)
	if err != nil {
		return err
	}
	if !on {
		return p.Fill(dotCol, len(dot), 0)
	}
	copy(p[dotCol:], dot[:])
	return nil
}

// ComposeFrame draws the whole dashboard for one reading.
//
// score is the composite score shown in the progress bar. heating lights the
// status dot. Pages not used by the dashboard are left as they are.
func (r *Renderer) ComposeFrame(rd airquality.Reading, score int, heating bool) error {
	lines := []struct {
		page int
		text string
	}{
		{pageCO2, fmt.Sprintf("CO2: %d PPM", rd.CO2)},
		{pageClime, fmt.Sprintf("T:%dC  H:%d%%", int(rd.Temperature), int(rd.Humidity))},
		{pagePM25, fmt.Sprintf("PM2.5: %d ug/m3", int(rd.PM25))},
	}
	for _, l := range lines {
		r.pages[l.page].Clear()
		if err := r.DrawText(l.text, 0, l.page); err != nil {
			return err
		}
	}
	r.pages[pageBar].Clear()
	if err := r.DrawProgressBar(0, pageBar, score); err != nil {
		return err
	}
	return r.DrawStatusDot(heating)
}

// Flush writes every pending page to w, in ascending page order.
//
// On error, the pages not yet written stay pending.
func (r *Renderer) Flush(w PageWriter) error {
	for i := range r.pages {
		if !r.Pending(i) {
			continue
		}
		if err := w.WritePage(i, r.pages[i][:]); err != nil {
			return fmt.Errorf("airscreen: flush page %d: %w", i, err)
		}
		r.sent[i] = r.pages[i]
		r.synced |= 1 << i
	}
	return nil
}

func (r *Renderer) page(page int) (*Page, error) {
	if page < 0 || page >= Pages {
		return nil, fmt.Errorf("%w: page %d", ErrOutOfRange, page)
	}
	return &r.pages[page], nil
}

// drawGlyph draws c with its left column at x, followed by one blank column.
func (r *Renderer) drawGlyph(p *Page, c rune, x int) error {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 0 || c > 0xFF {
		return nil
	}
	g, ok := r.font.Glyph(byte(c))
	if !ok {
		return nil
	}
	if x < 0 || x+len(g) >= Width {
		return fmt.Errorf("%w: glyph %q at x=%d", ErrOutOfRange, c, x)
	}
	copy(p[x:], g[:])
	p[x+len(g)] = 0
	return nil
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
