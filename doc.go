// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package airmon is an indoor air quality station built on periph.io.
//
// airquality scores and classifies CO2, PM2.5 and humidity readings.
// airscreen renders the dashboard into 8 SSD1306 pages with the font5x7
// glyphs, and ssd1306 pushes those pages over I²C. scd4x and sds011 read the
// sensors, monitor ties everything together and telemetry publishes samples
// over MQTT. oledsim and snapshot emulate and capture the display.
//
// The cmd/airmon program runs the station.
package airmon
