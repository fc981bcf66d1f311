// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// airmon runs the air quality station: an SCD4x CO2 sensor, an optional
// SDS011 PM2.5 sensor and an SSD1306 OLED on the same I²C bus, with optional
// MQTT telemetry.
//
// With -sim, the display is emulated in the terminal and the sensors are
// simulated, so it runs on any host.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/airmon/monitor"
	"github.com/GermanBionicSystems/airmon/oledsim"
	"github.com/GermanBionicSystems/airmon/scd4x"
	"github.com/GermanBionicSystems/airmon/sds011"
	"github.com/GermanBionicSystems/airmon/ssd1306"
	"github.com/GermanBionicSystems/airmon/telemetry"
)

func mainImpl() error {
	busName := flag.String("bus", "", "I²C bus to use")
	oledAddr := flag.Uint("oled", uint(ssd1306.DefaultOpts.Addr), "SSD1306 I²C address")
	contrast := flag.Uint("contrast", uint(ssd1306.DefaultOpts.Contrast), "display contrast, 0-255")
	co2Addr := flag.Uint("co2", uint(scd4x.SensorAddress), "SCD4x I²C address")
	pmPort := flag.String("pm", "", "SDS011 serial port; PM2.5 is reported as 0 without it")
	broker := flag.String("mqtt", "", "MQTT broker, e.g. tcp://localhost:1883")
	topic := flag.String("topic", telemetry.DefaultOpts.Topic, "MQTT topic")
	interval := flag.Duration("interval", 5*time.Second, "sampling interval")
	sim := flag.Bool("sim", false, "emulate the display in the terminal and simulate the sensors")
	snap := flag.String("snapshot", "", "PNG file rewritten with the display content after every sample")
	once := flag.Bool("once", false, "take a single sample and exit")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}
	if *contrast > 255 {
		return fmt.Errorf("invalid contrast %d", *contrast)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: colorable.NewColorableStderr(), TimeFormat: time.TimeOnly}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
	if *verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}

	opts := monitor.Opts{Logger: &logger}
	var pubs monitor.Publishers
	var bus i2c.Bus
	var panel *oledsim.Panel
	if *sim {
		panel = oledsim.New(&oledsim.DefaultOpts)
		bus = panel
		opts.CO2 = newSimCO2(time.Now().UnixNano())
		if *pmPort == "" {
			opts.PM = newSimPM(time.Now().UnixNano())
		}
	} else {
		if _, err := host.Init(); err != nil {
			return err
		}
		b, err := i2creg.Open(*busName)
		if err != nil {
			return err
		}
		defer b.Close()
		bus = b
		co2, err := scd4x.NewI2C(bus, &scd4x.Opts{Addr: uint16(*co2Addr)})
		if err != nil {
			return err
		}
		defer co2.Halt()
		opts.CO2 = co2
	}
	logger.Info().Stringer("bus", bus).Msg("bus ready")

	do := ssd1306.DefaultOpts
	do.Addr = uint16(*oledAddr)
	do.Contrast = byte(*contrast)
	dev, err := ssd1306.NewI2C(bus, &do)
	if err != nil {
		return err
	}
	defer dev.Halt()
	opts.Display = dev

	if *pmPort != "" {
		pm, err := sds011.Open(*pmPort, &sds011.DefaultOpts)
		if err != nil {
			return err
		}
		defer pm.Close()
		if err := pm.SetWorking(true); err != nil {
			return err
		}
		defer pm.Halt()
		opts.PM = pm
	}

	if *broker != "" {
		to := telemetry.DefaultOpts
		to.Broker = *broker
		to.Topic = *topic
		t, err := telemetry.NewMQTT(&to)
		if err != nil {
			return err
		}
		defer t.Close()
		logger.Info().Str("broker", *broker).Str("topic", *topic).Msg("telemetry enabled")
		pubs = append(pubs, t)
	}

	var sink *screenSink
	if panel != nil || *snap != "" {
		sink = &screenSink{panel: panel, path: *snap}
		pubs = append(pubs, sink)
	}
	if len(pubs) != 0 {
		opts.Publisher = pubs
	}

	m, err := monitor.New(&opts)
	if err != nil {
		return err
	}
	if sink != nil {
		sink.screen = m.Screen()
	}

	if *once {
		_, err := m.Step()
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info().Dur("interval", *interval).Msg("monitoring")
	if err := m.Run(ctx, *interval); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "airmon: %s.\n", err)
		os.Exit(1)
	}
}
