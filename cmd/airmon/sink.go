// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/GermanBionicSystems/airmon/airscreen"
	"github.com/GermanBionicSystems/airmon/monitor"
	"github.com/GermanBionicSystems/airmon/oledsim"
	"github.com/GermanBionicSystems/airmon/snapshot"
)

// screenSink shows the display after every sample: in the terminal when it
// is emulated, and as a PNG file when a path is set.
type screenSink struct {
	panel  *oledsim.Panel
	screen *airscreen.Renderer
	path   string
}

func (s *screenSink) Publish(smp monitor.Sample) error {
	if s.panel != nil {
		if err := s.panel.Render(); err != nil {
			return err
		}
	}
	if s.path == "" || s.screen == nil {
		return nil
	}
	o := snapshot.DefaultOpts
	o.Caption = fmt.Sprintf("%s  %d%%  %s", smp.Time.Format("15:04:05"), smp.Scores.Composite, smp.Categories.Overall)
	return snapshot.Save(s.path, s.screen.Image(), &o)
}
