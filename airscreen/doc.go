// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package airscreen renders the air quality dashboard into page buffers for a
// 128x64 monochrome display.
//
// The display memory is split in 8 pages, each an horizontal band 8 pixels
// high. A page is 128 bytes, one per column, bit 0 being the top pixel. The
// Renderer owns one Page per band and never shares them; Page() returns
// copies.
//
// Rendering and transmission are two steps. Draw calls only touch the
// buffers. Flush then pushes the pages that changed since the last successful
// Flush to a PageWriter, usually an *ssd1306.Dev. A failed Flush leaves the
// remaining pages pending so calling Flush again resumes where it stopped.
//
// # Layout
//
// ComposeFrame draws one dashboard:
//
//	page 0  CO2: 640 PPM                  (dot)
//	page 2  T:21C  H:45%
//	page 4  PM2.5: 8 UG/M3
//	page 6  [#######################     ]  84%
//
// The dot in the top right corner is lit while the CO2 sensor warms up.
package airscreen
