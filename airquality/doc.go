// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package airquality converts indoor air readings into scores and quality
// categories.
//
// Three metrics are scored: CO2 concentration in ppm, PM2.5 concentration in
// µg/m³ and relative humidity. CO2 and PM2.5 use five-segment piecewise linear
// maps with integer interpolation, humidity uses a three level step function.
// The composite score weighs CO2 and PM2.5 at 40% each and humidity at 20%.
//
// Categories use the same cut points as the scores, so a reading in the
// Excellent category always scores 80 or more, Good scores 60 to 79 and so on.
//
// Every function is total: out of range inputs are clamped, never rejected.
//
// # References
//
// CO2 bands follow common ventilation guidance (800/1000/1500/2000 ppm).
//
// PM2.5 bands follow the US EPA AQI breakpoints (12.0/35.4/55.4/150.4 µg/m³).
package airquality
