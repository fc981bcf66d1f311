// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package airquality

import "fmt"

// Reading is one consistent snapshot of the sensors.
//
// Temperature is only displayed, it does not contribute to any score.
type Reading struct {
	// CO2 concentration in ppm.
	CO2 int
	// PM25 is the PM2.5 concentration in µg/m³.
	PM25 float64
	// Humidity is the relative humidity in percent.
	Humidity float64
	// Temperature in °C.
	Temperature float64
}

func (r Reading) String() string {
	return fmt.Sprintf("CO2: %d ppm PM2.5: %.1f µg/m³ Humidity: %.1f%% Temperature: %.1f°C", r.CO2, r.PM25, r.Humidity, r.Temperature)
}

// Scores holds the per metric scores and the weighted composite, all in
// [0, 100].
type Scores struct {
	CO2       int
	PM25      int
	Humidity  int
	Composite int
}

// Score computes all the scores of r.
func Score(r Reading) Scores {
	s := Scores{
		CO2:      ScoreCO2(r.CO2),
		PM25:     ScorePM25(r.PM25),
		Humidity: ScoreHumidity(r.Humidity),
	}
	s.Composite = composite(s.CO2, s.PM25, s.Humidity)
	return s
}

// Categories holds the per metric categories. Overall is the worst of the
// three.
type Categories struct {
	CO2      Category
	PM25     Category
	Humidity Category
	Overall  Category
}

// Classify computes all the categories of r.
func Classify(r Reading) Categories {
	c := Categories{
		CO2:      ClassifyCO2(r.CO2),
		PM25:     ClassifyPM25(r.PM25),
		Humidity: ClassifyHumidity(r.Humidity),
	}
	c.Overall = c.CO2
	if c.PM25 > c.Overall {
		c.Overall = c.PM25
	}
	if c.Humidity > c.Overall {
		c.Overall = c.Humidity
	}
	return c
}
