// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package airquality

import "math"

// Category is an ordinal quality rating. Lower values are better.
type Category int

// Possible categories, from best to worst.
const (
	Excellent Category = iota
	Good
	Moderate
	Poor
	VeryPoor
)

var categoryLabels = [...]string{
	Excellent: "Excellent",
	Good:      "Good",
	Moderate:  "Moderate",
	Poor:      "Poor",
	VeryPoor:  "Very poor",
}

// CategoryLabel returns the display label of c, or "Unknown" for a value
// outside the five categories.
func CategoryLabel(c Category) string {
	if c < 0 || int(c) >= len(categoryLabels) {
		return "Unknown"
	}
	return categoryLabels[c]
}

func (c Category) String() string {
	return CategoryLabel(c)
}

// ClassifyCO2 returns the category of a CO2 concentration in ppm.
func ClassifyCO2(ppm int) Category {
	for i := range co2Segments[:len(co2Segments)-1] {
		if ppm <= co2Segments[i].hi {
			return Category(i)
		}
	}
	return VeryPoor
}

// ClassifyPM25 returns the category of a PM2.5 concentration in µg/m³.
func ClassifyPM25(ugm3 float64) Category {
	if math.IsNaN(ugm3) {
		ugm3 = 0
	}
	for i, limit := range pm25Limits {
		if ugm3 <= limit {
			return Category(i)
		}
	}
	return VeryPoor
}

// ClassifyHumidity returns the category of a relative humidity in percent.
//
// Only Excellent, Good and Poor are reachable.
func ClassifyHumidity(rh float64) Category {
	switch {
	case rh >= 40 && rh <= 60:
		return Excellent
	case rh >= 30 && rh <= 70:
		return Good
	default:
		return Poor
	}
}
