// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oledsim emulates a SSD1306 display controller behind an I²C bus and
// outputs its content to a terminal using ANSI color codes.
//
// Panel implements i2c.Bus, so the real driver can be pointed at it. It
// decodes the command and data control streams, keeps the display RAM and
// records every transaction. Transactions longer than Opts.MaxTx bytes are
// rejected, like many I²C adapters do.
//
// Useful while you are waiting for your OLED module to come by mail, and in
// tests to check what the driver actually put on screen.
package oledsim
