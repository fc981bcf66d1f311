// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package airquality

import (
	"math"
	"strconv"
	"strings"
)

// Metric weights of the composite score, in percent.
const (
	weightCO2      = 40
	weightPM25     = 40
	weightHumidity = 20
)

// segment maps the input range [lo, hi] onto the scores [top, bottom].
type segment struct {
	lo, hi      int
	top, bottom int
}

// co2Segments are in ppm.
var co2Segments = [...]segment{
	{0, 800, 100, 80},
	{801, 1000, 79, 60},
	{1001, 1500, 59, 40},
	{1501, 2000, 39, 20},
	{2001, 3000, 19, 0},
}

// pm25Segments are in tenths of µg/m³. pm25Limits holds the matching upper
// bounds in µg/m³, used to select the segment before the value is truncated.
var pm25Segments = [...]segment{
	{0, 120, 100, 80},
	{121, 354, 79, 60},
	{355, 554, 59, 40},
	{555, 1504, 39, 20},
	{1505, 2000, 19, 0},
}

var pm25Limits = [...]float64{12.0, 35.4, 55.4, 150.4}

// interpolate is the integer linear map of x from [s.lo, s.hi] onto
// [s.top, s.bottom]. The division truncates toward zero.
func (s *segment) interpolate(x int) int {
	return (x-s.lo)*(s.bottom-s.top)/(s.hi-s.lo) + s.top
}

// ScoreCO2 returns the score of a CO2 concentration in ppm.
//
// Values above 3000 ppm score 0, negative values are treated as 0 ppm.
func ScoreCO2(ppm int) int {
	if ppm < 0 {
		ppm = 0
	}
	for i := range co2Segments {
		if s := &co2Segments[i]; ppm <= s.hi {
			return s.interpolate(ppm)
		}
	}
	last := &co2Segments[len(co2Segments)-1]
	return last.interpolate(last.hi)
}

// ScorePM25 returns the score of a PM2.5 concentration in µg/m³.
//
// The value is converted to tenths of µg/m³ and truncated before
// interpolation. Values above 200 µg/m³ score 0, negative and NaN values are
// treated as 0.
func ScorePM25(ugm3 float64) int {
	if ugm3 < 0 || math.IsNaN(ugm3) {
		ugm3 = 0
	}
	last := &pm25Segments[len(pm25Segments)-1]
	tenths := last.hi
	if ugm3 < float64(last.hi)/10 {
		tenths = int(ugm3 * 10)
	}
	for i, limit := range pm25Limits {
		if ugm3 <= limit {
			return pm25Segments[i].interpolate(tenths)
		}
	}
	return last.interpolate(tenths)
}

// ScoreHumidity returns the score of a relative humidity in percent.
//
// It is a step function: 100 between 40% and 60%, 75 between 30% and 70%, 50
// otherwise.
func ScoreHumidity(rh float64) int {
	switch {
	case rh >= 40 && rh <= 60:
		return 100
	case rh >= 30 && rh <= 70:
		return 75
	default:
		return 50
	}
}

// CompositeScore returns the weighted score of r.
func CompositeScore(r Reading) int {
	return Score(r).Composite
}

func composite(co2, pm25, humidity int) int {
	return (co2*weightCO2 + pm25*weightPM25 + humidity*weightHumidity) / 100
}

// ProgressText renders score as a ten cell text gauge, e.g. "[########  ] 84%".
func ProgressText(score int) string {
	score = clampPercent(score)
	blocks := score * 10 / 100
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strings.Repeat("#", blocks))
	b.WriteString(strings.Repeat(" ", 10-blocks))
	b.WriteString("] ")
	b.WriteString(strconv.Itoa(score))
	b.WriteByte('%')
	return b.String()
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
