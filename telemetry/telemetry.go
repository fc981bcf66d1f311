// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/GermanBionicSystems/airmon/monitor"
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("telemetry: broker timeout")

// DefaultOpts targets a broker on the local host.
var DefaultOpts = Opts{
	Broker:   "tcp://localhost:1883",
	ClientID: "airmon",
	Topic:    "airmon/sample",
	Timeout:  5 * time.Second,
}

// Opts configures the MQTT client.
type Opts struct {
	Broker   string
	ClientID string
	Topic    string
	// Timeout bounds connection and every publish.
	Timeout time.Duration
}

// MQTT publishes samples to a single topic at QoS 0.
type MQTT struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

// NewMQTT connects to the broker.
func NewMQTT(opts *Opts) (*MQTT, error) {
	o := *opts
	if o.Broker == "" || o.Topic == "" {
		return nil, errors.New("telemetry: broker and topic are required")
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultOpts.Timeout
	}
	co := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetConnectTimeout(o.Timeout).
		SetAutoReconnect(true)
	c := mqtt.NewClient(co)
	if err := wait(c.Connect(), o.Timeout); err != nil {
		return nil, fmt.Errorf("telemetry: connect %s: %w", o.Broker, err)
	}
	return New(c, o.Topic, o.Timeout), nil
}

// New publishes through an already configured client.
func New(c mqtt.Client, topic string, timeout time.Duration) *MQTT {
	return &MQTT{client: c, topic: topic, timeout: timeout}
}

func (m *MQTT) String() string {
	return fmt.Sprintf("mqtt{%s}", m.topic)
}

// Publish sends s and waits for the client to hand it over.
func (m *MQTT) Publish(s monitor.Sample) error {
	payload, err := Marshal(s)
	if err != nil {
		return err
	}
	if err := wait(m.client.Publish(m.topic, 0, false, payload), m.timeout); err != nil {
		return fmt.Errorf("telemetry: publish %s: %w", m.topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}

type scores struct {
	CO2       int `json:"co2"`
	PM25      int `json:"pm25"`
	Humidity  int `json:"humidity"`
	Composite int `json:"composite"`
}

type categories struct {
	CO2      string `json:"co2"`
	PM25     string `json:"pm25"`
	Humidity string `json:"humidity"`
}

type payload struct {
	CO2         int        `json:"co2"`
	PM25        float64    `json:"pm25"`
	Humidity    float64    `json:"humidity"`
	Temperature float64    `json:"temperature"`
	Scores      scores     `json:"scores"`
	Category    string     `json:"category"`
	Categories  categories `json:"categories"`
	Heating     bool       `json:"heating"`
	PMMissing   bool       `json:"pm25_missing,omitempty"`
	Time        time.Time  `json:"time"`
}

// Marshal returns the JSON document published for s.
func Marshal(s monitor.Sample) ([]byte, error) {
	r := s.Reading
	p := payload{
		CO2:         r.CO2,
		PM25:        r.PM25,
		Humidity:    r.Humidity,
		Temperature: r.Temperature,
		Scores: scores{
			CO2:       s.Scores.CO2,
			PM25:      s.Scores.PM25,
			Humidity:  s.Scores.Humidity,
			Composite: s.Scores.Composite,
		},
		Category: s.Categories.Overall.String(),
		Categories: categories{
			CO2:      s.Categories.CO2.String(),
			PM25:     s.Categories.PM25.String(),
			Humidity: s.Categories.Humidity.String(),
		},
		Heating:   s.Heating,
		PMMissing: s.PMMissing,
		Time:      s.Time.UTC(),
	}
	b, err := json.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	return b, nil
}

func wait(t mqtt.Token, timeout time.Duration) error {
	if !t.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return t.Error()
}
