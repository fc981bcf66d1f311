// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package snapshot saves the content of a monochrome display as an enlarged
// PNG picture, optionally with a caption under the screen.
//
// It is meant for documentation and bug reports: pair it with oledsim to
// capture exactly what the driver sent to the panel.
package snapshot
