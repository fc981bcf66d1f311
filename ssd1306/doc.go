// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ssd1306 drives a 128x64 monochrome OLED display with a SSD1306
// controller over I²C, one page at a time.
//
// The display RAM is split in pages, each an horizontal band of 8 pixels
// high. Writing a page is two phases that are never merged in one bus
// transaction:
//
// 1. Addressing: one command transaction selecting the page and resetting the
// column to 0: 00 B0|page 00 10.
//
// 2. Data: the page bytes in transactions of at most 16 bytes, each prefixed
// by the data control byte: 40 <16 bytes>.
//
// Many I²C adapters limit the length of a transaction, hence the chunking.
// A page is always fully sent before the next one starts.
//
// Every bus failure is reported as a *TransportError so the caller can
// decide to retry or skip a frame.
//
// # Datasheets
//
// https://cdn-shop.adafruit.com/datasheets/SSD1306.pdf
//
// Page 28 lists all the commands, page 64 has the recommended init flow.
package ssd1306
