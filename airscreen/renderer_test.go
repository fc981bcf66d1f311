// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package airscreen

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/GermanBionicSystems/airmon/airquality"
	"github.com/GermanBionicSystems/airmon/font5x7"
)

// testFont only knows 'A', 'B' and 'C'. Each glyph is its character code
// repeated, so positions are easy to check.
type testFont struct{}

func (testFont) Glyph(c byte) (font5x7.Glyph, bool) {
	if c < 'A' || c > 'C' {
		return font5x7.Glyph{}, false
	}
	return font5x7.Glyph{c, c, c, c, c}, true
}

// pageWith returns a page with glyph c of testFont at x, and its spacer.
func pageWith(p Page, c byte, x int) Page {
	for i := 0; i < 5; i++ {
		p[x+i] = c
	}
	p[x+5] = 0
	return p
}

func mustPage(t *testing.T, r *Renderer, page int) Page {
	t.Helper()
	p, err := r.Page(page)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewIsBlank(t *testing.T) {
	r := New(testFont{})
	r.Clear()
	for i := 0; i < Pages; i++ {
		if p := mustPage(t, r, i); !p.IsZero() {
			t.Errorf("page %d is not blank", i)
		}
		if !r.Pending(i) {
			t.Errorf("page %d must be pending before the first Flush", i)
		}
	}
	if r.String() == "" {
		t.Error("String()")
	}
}

func TestDrawText(t *testing.T) {
	r := New(testFont{})
	if err := r.DrawText("ab", 0, 1); err != nil {
		t.Fatal(err)
	}
	want := pageWith(pageWith(Page{}, 'A', 2), 'B', 9)
	if diff := cmp.Diff(mustPage(t, r, 1), want); diff != "" {
		t.Errorf("DrawText() difference (-got +want):\n%s", diff)
	}
	if p := mustPage(t, r, 0); !p.IsZero() {
		t.Error("DrawText() touched another page")
	}
}

func TestDrawTextOffset(t *testing.T) {
	r := New(testFont{})
	if err := r.DrawText("C", 10, 3); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mustPage(t, r, 3), pageWith(Page{}, 'C', 12)); diff != "" {
		t.Errorf("DrawText() difference (-got +want):\n%s", diff)
	}
	// Negative x is pinned to the margin.
	r.Clear()
	if err := r.DrawText("C", -30, 3); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(mustPage(t, r, 3), pageWith(Page{}, 'C', LeftMargin)); diff != "" {
		t.Errorf("DrawText() difference (-got +want):\n%s", diff)
	}
}

func TestDrawTextSkipsUnsupported(t *testing.T) {
	r := New(testFont{})
	if err := r.DrawText("A?µ\nB", 0, 0); err != nil {
		t.Fatal(err)
	}
	// '?', 'µ' and '\n' keep their cells blank.
	want := pageWith(pageWith(Page{}, 'A', 2), 'B', 2+4*Advance)
	if diff := cmp.Diff(mustPage(t, r, 0), want); diff != "" {
		t.Errorf("DrawText() difference (-got +want):\n%s", diff)
	}
}

func TestDrawTextNeverOverruns(t *testing.T) {
	long := strings.Repeat("ABC", 100)
	for x := -5; x < Width+20; x++ {
		r := New(testFont{})
		if err := r.DrawText(long, x, 0); err != nil {
			t.Fatalf("DrawText(x=%d): %v", x, err)
		}
		p := mustPage(t, r, 0)
		if n := p.Lit(textLimit+font5x7.Width, Width); n != 0 {
			t.Fatalf("DrawText(x=%d) lit %d columns past %d", x, n, textLimit+font5x7.Width-1)
		}
	}
	// 17 glyphs fit from the margin: 2, 9, ..., 114.
	r := New(testFont{})
	_ = r.DrawText(long, 0, 0)
	p := mustPage(t, r, 0)
	if n := p.Lit(0, Width); n != 17*font5x7.Width {
		t.Errorf("lit columns = %d, want %d", n, 17*font5x7.Width)
	}
}

func TestDrawTextLastGlyphReachesDot(t *testing.T) {
	long := strings.Repeat("A", 30)
	r := New(testFont{})
	if err := r.DrawText(long, 3, 0); err != nil {
		t.Fatal(err)
	}
	if p := mustPage(t, r, 0); p.Lit(dotCol, len(dot)) != 0 {
		t.Error("x=3 must stop before the dot columns")
	}
	r.Clear()
	// Glyphs start at 7, 14, ..., 119 and the last one covers 119-123.
	if err := r.DrawText(long, 5, 0); err != nil {
		t.Fatal(err)
	}
	if p := mustPage(t, r, 0); p.Lit(dotCol, 1) != 1 || p.Lit(dotCol+1, len(dot)-1) != 0 {
		t.Errorf("x=5 dot columns lit: %d", p.Lit(dotCol, len(dot)))
	}
}

func TestDrawTextPageRange(t *testing.T) {
	r := New(testFont{})
	for _, page := range []int{-1, Pages, 100} {
		if err := r.DrawText("A", 0, page); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("DrawText(page=%d) = %v, want ErrOutOfRange", page, err)
		}
	}
	if _, err := r.Page(Pages); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Page(%d) = %v, want ErrOutOfRange", Pages, err)
	}
}

func TestFilledColumns(t *testing.T) {
	prev := 0
	for p := -10; p <= 110; p++ {
		n := FilledColumns(p)
		if n < prev {
			t.Fatalf("FilledColumns(%d) = %d < %d", p, n, prev)
		}
		prev = n
		if p >= 0 && p <= 100 && n != p*48/100 {
			t.Fatalf("FilledColumns(%d) = %d, want %d", p, n, p*48/100)
		}
	}
	if n := FilledColumns(0); n != 0 {
		t.Errorf("FilledColumns(0) = %d", n)
	}
	if n := FilledColumns(100); n != BarWidth {
		t.Errorf("FilledColumns(100) = %d", n)
	}
	if n := FilledColumns(-3); n != 0 {
		t.Errorf("FilledColumns(-3) = %d", n)
	}
	if n := FilledColumns(300); n != BarWidth {
		t.Errorf("FilledColumns(300) = %d", n)
	}
}

func TestDrawProgressBar(t *testing.T) {
	for _, percent := range []int{-20, 0, 1, 50, 84, 99, 100, 150} {
		r := New(testFont{})
		if err := r.DrawProgressBar(0, 6, percent); err != nil {
			t.Fatal(err)
		}
		p := mustPage(t, r, 6)
		if p[2] != 0xFF || p[3] != 0x80 {
			t.Errorf("percent %d: open bracket = %#x %#x", percent, p[2], p[3])
		}
		filled := 0
		for _, b := range p[4 : 4+BarWidth] {
			switch b {
			case 0xFF:
				filled++
			case 0x00:
			default:
				t.Fatalf("percent %d: unexpected bar byte %#x", percent, b)
			}
		}
		if want := FilledColumns(percent); filled != want {
			t.Errorf("percent %d: %d filled columns, want %d", percent, filled, want)
		}
		if p[52] != 0x80 || p[53] != 0xFF {
			t.Errorf("percent %d: close bracket = %#x %#x", percent, p[52], p[53])
		}
		// testFont has no digits, so the label leaves the rest blank.
		if n := p.Lit(54, Width); n != 0 {
			t.Errorf("percent %d: %d columns lit after the bar", percent, n)
		}
	}
}

func TestDrawProgressBarLabel(t *testing.T) {
	r := New(nil)
	if err := r.DrawProgressBar(0, 6, 84); err != nil {
		t.Fatal(err)
	}
	got := mustPage(t, r, 6)
	want := Page{}
	pos := 55
	for _, c := range []byte(" 84%") {
		g, _ := font5x7.Default.Glyph(c)
		copy(want[pos:], g[:])
		pos += Advance
	}
	if diff := cmp.Diff(got[54:], want[54:]); diff != "" {
		t.Errorf("label difference (-got +want):\n%s", diff)
	}
}

func TestDrawProgressBarOutOfRange(t *testing.T) {
	r := New(nil)
	if err := r.DrawProgressBar(Width-20, 6, 100); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("DrawProgressBar() = %v, want ErrOutOfRange", err)
	}
	if p := mustPage(t, r, 6); !p.IsZero() {
		t.Error("a rejected progress bar must not draw")
	}
	// The widest label still fits when starting at the last valid x.
	if err := r.DrawProgressBar(Width-89, 6, 100); err != nil {
		t.Fatal(err)
	}
}

func TestDrawStatusDot(t *testing.T) {
	r := New(testFont{})
	if err := r.DrawStatusDot(true); err != nil {
		t.Fatal(err)
	}
	p := mustPage(t, r, 0)
	want := Page{}
	copy(want[Width-5:], []byte{0x38, 0x7C, 0x7C, 0x7C, 0x38})
	if diff := cmp.Diff(p, want); diff != "" {
		t.Errorf("DrawStatusDot(true) difference (-got +want):\n%s", diff)
	}
	if err := r.DrawStatusDot(false); err != nil {
		t.Fatal(err)
	}
	if p := mustPage(t, r, 0); !p.IsZero() {
		t.Error("DrawStatusDot(false) must erase the dot")
	}
}

func TestComposeFrame(t *testing.T) {
	rd := airquality.Reading{CO2: 640, PM25: 8.7, Humidity: 45.5, Temperature: 21.9}
	r := New(nil)
	if err := r.ComposeFrame(rd, 84, true); err != nil {
		t.Fatal(err)
	}

	ref := New(nil)
	_ = ref.DrawText("CO2: 640 PPM", 0, 0)
	_ = ref.DrawStatusDot(true)
	_ = ref.DrawText("T:21C  H:45%", 0, 2)
	_ = ref.DrawText("PM2.5: 8 UG/M3", 0, 4)
	_ = ref.DrawProgressBar(0, 6, 84)
	for i := 0; i < Pages; i++ {
		if diff := cmp.Diff(mustPage(t, r, i), mustPage(t, ref, i)); diff != "" {
			t.Errorf("page %d difference (-got +want):\n%s", i, diff)
		}
	}

	// A second frame fully replaces the first one.
	if err := r.ComposeFrame(airquality.Reading{CO2: 5}, 0, false); err != nil {
		t.Fatal(err)
	}
	ref = New(nil)
	_ = ref.DrawText("CO2: 5 PPM", 0, 0)
	_ = ref.DrawText("T:0C  H:0%", 0, 2)
	_ = ref.DrawText("PM2.5: 0 UG/M3", 0, 4)
	_ = ref.DrawProgressBar(0, 6, 0)
	for i := 0; i < Pages; i++ {
		if diff := cmp.Diff(mustPage(t, r, i), mustPage(t, ref, i)); diff != "" {
			t.Errorf("page %d difference (-got +want):\n%s", i, diff)
		}
	}
}

type write struct {
	Page int
	Data []byte
}

// recorder is a PageWriter that fails on page failAt when err is set.
type recorder struct {
	writes []write
	failAt int
	err    error
}

func (w *recorder) WritePage(page int, data []byte) error {
	if w.err != nil && page == w.failAt {
		return w.err
	}
	w.writes = append(w.writes, write{page, append([]byte(nil), data...)})
	return nil
}

func (w *recorder) pages() []int {
	var out []int
	for _, wr := range w.writes {
		out = append(out, wr.Page)
	}
	return out
}

func TestFlush(t *testing.T) {
	r := New(nil)
	rd := airquality.Reading{CO2: 640, PM25: 8.7, Humidity: 45.5, Temperature: 21.9}
	if err := r.ComposeFrame(rd, 84, false); err != nil {
		t.Fatal(err)
	}
	w := &recorder{}
	if err := r.Flush(w); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(w.pages(), []int{0, 1, 2, 3, 4, 5, 6, 7}); diff != "" {
		t.Errorf("first Flush() difference (-got +want):\n%s", diff)
	}
	p0 := mustPage(t, r, 0)
	if diff := cmp.Diff(w.writes[0].Data, p0[:]); diff != "" {
		t.Errorf("page 0 data difference (-got +want):\n%s", diff)
	}

	// Same frame: nothing to send.
	w = &recorder{}
	_ = r.ComposeFrame(rd, 84, false)
	if err := r.Flush(w); err != nil {
		t.Fatal(err)
	}
	if len(w.writes) != 0 {
		t.Errorf("unchanged frame sent pages %v", w.pages())
	}

	// Only the CO2 line and the bar change.
	rd.CO2 = 1900
	_ = r.ComposeFrame(rd, airquality.CompositeScore(rd), false)
	if err := r.Flush(w); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(w.pages(), []int{0, 6}); diff != "" {
		t.Errorf("Flush() difference (-got +want):\n%s", diff)
	}

	w = &recorder{}
	r.Invalidate()
	if err := r.Flush(w); err != nil {
		t.Fatal(err)
	}
	if len(w.writes) != Pages {
		t.Errorf("Invalidate() then Flush() sent %d pages", len(w.writes))
	}
}

func TestFlushResumesAfterError(t *testing.T) {
	r := New(nil)
	_ = r.ComposeFrame(airquality.Reading{CO2: 700}, 90, true)
	errBus := errors.New("bus is stuck")
	w := &recorder{failAt: 2, err: errBus}
	if err := r.Flush(w); !errors.Is(err, errBus) {
		t.Fatalf("Flush() = %v, want %v", err, errBus)
	}
	if diff := cmp.Diff(w.pages(), []int{0, 1}); diff != "" {
		t.Errorf("Flush() difference (-got +want):\n%s", diff)
	}
	for i := 0; i < Pages; i++ {
		if want := i >= 2; r.Pending(i) != want {
			t.Errorf("Pending(%d) = %t, want %t", i, r.Pending(i), want)
		}
	}
	w.err = nil
	w.writes = nil
	if err := r.Flush(w); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(w.pages(), []int{2, 3, 4, 5, 6, 7}); diff != "" {
		t.Errorf("retry Flush() difference (-got +want):\n%s", diff)
	}
}

func TestPage(t *testing.T) {
	var p Page
	if err := p.Set(Width, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Set(%d) = %v", Width, err)
	}
	if err := p.Set(-1, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Set(-1) = %v", err)
	}
	if err := p.Fill(120, 9, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Fill(120, 9) = %v", err)
	}
	if err := p.Fill(120, 8, 1); err != nil {
		t.Fatal(err)
	}
	if n := p.Lit(0, Width); n != 8 {
		t.Errorf("Lit() = %d", n)
	}
	p.Clear()
	if !p.IsZero() {
		t.Error("Clear()")
	}
}

func TestImage(t *testing.T) {
	r := New(testFont{})
	if err := r.DrawStatusDot(true); err != nil {
		t.Fatal(err)
	}
	img := r.Image()
	if got := img.Bounds(); got.Dx() != Width || got.Dy() != Height {
		t.Fatalf("Bounds() = %v", got)
	}
	// Middle row of the dot is fully lit, its corners are not.
	for x := Width - 5; x < Width; x++ {
		if !img.BitAt(x, 3) {
			t.Errorf("pixel (%d, 3) off", x)
		}
	}
	if img.BitAt(Width-5, 2) || img.BitAt(Width-1, 6) {
		t.Error("dot corners lit")
	}
	if img.BitAt(0, 0) {
		t.Error("pixel (0, 0) lit")
	}
}
