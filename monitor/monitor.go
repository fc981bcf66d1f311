// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/GermanBionicSystems/airmon/airquality"
	"github.com/GermanBionicSystems/airmon/airscreen"
	"github.com/GermanBionicSystems/airmon/font5x7"
	"github.com/GermanBionicSystems/airmon/scd4x"
	"github.com/GermanBionicSystems/airmon/sds011"
)

// CO2Sensor provides CO2, temperature and humidity.
type CO2Sensor interface {
	Sense(env *scd4x.Env) error
}

// PMSensor provides the particulate matter concentration.
type PMSensor interface {
	Sense(r *sds011.Reading) error
}

// Publisher receives every sample that made it to the display.
type Publisher interface {
	Publish(s Sample) error
}

// Publishers fans a sample out to every publisher in order. All are called
// even when one fails; the failures are joined.
type Publishers []Publisher

// Publish implements Publisher.
func (p Publishers) Publish(s Sample) error {
	var errs []error
	for _, pub := range p {
		if err := pub.Publish(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sample is the outcome of one Step.
type Sample struct {
	Time       time.Time
	Reading    airquality.Reading
	Scores     airquality.Scores
	Categories airquality.Categories
	// Heating is set while the CO2 sensor warms up.
	Heating bool
	// PMMissing is set when no PM2.5 measurement was available; Reading.PM25
	// is then 0.
	PMMissing bool
}

// Opts wires a Monitor.
type Opts struct {
	// CO2 and Display are required.
	CO2     CO2Sensor
	Display airscreen.PageWriter

	PM        PMSensor
	Publisher Publisher
	// Font defaults to font5x7.Default.
	Font font5x7.Font
	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Monitor drives one display from one set of sensors. It is not safe for
// concurrent use.
type Monitor struct {
	co2     CO2Sensor
	pm      PMSensor
	display airscreen.PageWriter
	pub     Publisher
	screen  *airscreen.Renderer
	log     zerolog.Logger
	now     func() time.Time
}

// New returns a Monitor. Nothing is sent to the display until the first
// Step.
func New(opts *Opts) (*Monitor, error) {
	if opts.CO2 == nil {
		return nil, errors.New("monitor: a CO2 sensor is required")
	}
	if opts.Display == nil {
		return nil, errors.New("monitor: a display is required")
	}
	m := &Monitor{
		co2:     opts.CO2,
		pm:      opts.PM,
		display: opts.Display,
		pub:     opts.Publisher,
		screen:  airscreen.New(opts.Font),
		log:     zerolog.Nop(),
		now:     opts.Now,
	}
	if opts.Logger != nil {
		m.log = *opts.Logger
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.pm == nil {
		m.log.Warn().Msg("no pm2.5 sensor, pm2.5 reported as 0")
	}
	return m, nil
}

// Screen returns the dashboard buffers.
func (m *Monitor) Screen() *airscreen.Renderer {
	return m.screen
}

// Step samples the sensors once, updates the display and publishes the
// sample.
//
// A display failure is returned along with the sample; the pages that were
// not written are sent again by the next Step.
func (m *Monitor) Step() (Sample, error) {
	s, err := m.sample()
	if err != nil {
		return s, err
	}
	if err := m.screen.ComposeFrame(s.Reading, s.Scores.Composite, s.Heating); err != nil {
		return s, fmt.Errorf("monitor: compose: %w", err)
	}
	if err := m.screen.Flush(m.display); err != nil {
		return s, fmt.Errorf("monitor: %w", err)
	}
	if m.pub != nil {
		if err := m.pub.Publish(s); err != nil {
			return s, fmt.Errorf("monitor: publish: %w", err)
		}
	}
	return s, nil
}

// Run calls Step immediately and then on every tick of interval until ctx is
// done. Step failures are logged and do not stop the loop.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("monitor: invalid interval %s", interval)
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		m.step()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (m *Monitor) step() {
	s, err := m.Step()
	if err != nil {
		m.log.Error().Err(err).Msg("step failed")
		return
	}
	m.log.Info().
		Int("co2", s.Reading.CO2).
		Float64("pm25", s.Reading.PM25).
		Float64("humidity", s.Reading.Humidity).
		Float64("temperature", s.Reading.Temperature).
		Int("score", s.Scores.Composite).
		Stringer("category", s.Categories.Overall).
		Bool("heating", s.Heating).
		Msg("sample")
}

func (m *Monitor) sample() (Sample, error) {
	s := Sample{Time: m.now()}
	env := scd4x.Env{}
	if err := m.co2.Sense(&env); err != nil {
		return s, fmt.Errorf("monitor: co2 sensor: %w", err)
	}
	s.Heating = env.WarmingUp()
	s.Reading = airquality.Reading{
		CO2:         int(env.CO2),
		Humidity:    float64(env.Humidity) / float64(physic.PercentRH),
		Temperature: env.Temperature.Celsius(),
	}
	if s.Heating {
		m.log.Debug().Msg("co2 sensor warming up")
	}

	if m.pm == nil {
		s.PMMissing = true
	} else {
		pm := sds011.Reading{}
		if err := m.pm.Sense(&pm); err != nil {
			m.log.Warn().Err(err).Msg("pm2.5 unavailable, reporting 0")
			s.PMMissing = true
		} else {
			s.Reading.PM25 = pm.PM25
		}
	}

	s.Scores = airquality.Score(s.Reading)
	s.Categories = airquality.Classify(s.Reading)
	return s, nil
}
