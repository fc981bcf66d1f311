// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"math"
	"math/rand"

	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/airmon/scd4x"
	"github.com/GermanBionicSystems/airmon/sds011"
)

// simWarmUp is the number of samples the simulated CO2 sensor reports 0.
const simWarmUp = 2

// simCO2 is a random walk around indoor conditions.
type simCO2 struct {
	rnd         *rand.Rand
	n           int
	co2, tc, rh float64
}

func newSimCO2(seed int64) *simCO2 {
	return &simCO2{rnd: rand.New(rand.NewSource(seed)), co2: 650, tc: 21, rh: 45}
}

func (s *simCO2) Sense(env *scd4x.Env) error {
	*env = scd4x.Env{}
	s.n++
	s.co2 = clamp(s.co2+s.rnd.NormFloat64()*40, 400, 2500)
	s.tc = clamp(s.tc+s.rnd.NormFloat64()*0.2, 15, 30)
	s.rh = clamp(s.rh+s.rnd.NormFloat64(), 20, 80)
	env.Temperature = physic.ZeroCelsius + physic.Temperature(s.tc*float64(physic.Celsius))
	env.Humidity = physic.RelativeHumidity(s.rh * float64(physic.PercentRH))
	if s.n > simWarmUp {
		env.CO2 = scd4x.PPM(s.co2)
	}
	return nil
}

// simPM is a random walk of fine particles.
type simPM struct {
	rnd  *rand.Rand
	pm25 float64
}

func newSimPM(seed int64) *simPM {
	return &simPM{rnd: rand.New(rand.NewSource(seed + 1)), pm25: 8}
}

func (s *simPM) Sense(r *sds011.Reading) error {
	s.pm25 = clamp(s.pm25+s.rnd.NormFloat64()*2, 0, 200)
	r.PM25 = math.Round(s.pm25*10) / 10
	r.PM10 = math.Round(s.pm25*15) / 10
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
