// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package font5x7 provides a 5 by 7 pixel bitmap font for page addressed
// monochrome displays.
//
// Each glyph is 5 column bytes. Bit 0 of a column is the top pixel, matching
// the memory layout of SSD1306 pages, so a glyph can be copied into a page
// buffer without conversion.
//
// Renderers take the Font interface rather than the table itself so tests
// can inject a synthetic font.
package font5x7
