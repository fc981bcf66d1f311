// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor runs the air quality station: it samples the sensors,
// scores the reading, redraws the dashboard and pushes the changed pages to
// the display, then publishes the sample.
package monitor
