// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/go-cmp/cmp"

	"github.com/GermanBionicSystems/airmon/airquality"
	"github.com/GermanBionicSystems/airmon/monitor"
)

type token struct {
	done bool
	err  error
}

func (t *token) Wait() bool                     { return t.done }
func (t *token) WaitTimeout(time.Duration) bool { return t.done }
func (t *token) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
func (t *token) Error() error { return t.err }

type publication struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// client records publications; other mqtt.Client methods are not used.
type client struct {
	mqtt.Client
	tok  *token
	sent []publication
	disc bool
}

func (c *client) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.sent = append(c.sent, publication{topic, qos, retained, payload.([]byte)})
	return c.tok
}

func (c *client) Disconnect(uint) { c.disc = true }

var sample = monitor.Sample{
	Time:    time.Date(2026, 10, 19, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
	Reading: airquality.Reading{CO2: 800, PM25: 8, Humidity: 45, Temperature: 21.5},
	Scores:  airquality.Scores{CO2: 81, PM25: 93, Humidity: 100, Composite: 89},
	Categories: airquality.Categories{
		CO2:      airquality.Good,
		PM25:     airquality.Excellent,
		Humidity: airquality.Excellent,
		Overall:  airquality.Good,
	},
}

func TestMarshal(t *testing.T) {
	b, err := Marshal(sample)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]interface{}{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]interface{}{
		"co2":         800.0,
		"pm25":        8.0,
		"humidity":    45.0,
		"temperature": 21.5,
		"scores": map[string]interface{}{
			"co2": 81.0, "pm25": 93.0, "humidity": 100.0, "composite": 89.0,
		},
		"category": "Good",
		"categories": map[string]interface{}{
			"co2": "Good", "pm25": "Excellent", "humidity": "Excellent",
		},
		"heating": false,
		"time":    "2026-10-19T08:00:00Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Marshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestPublish(t *testing.T) {
	c := &client{tok: &token{done: true}}
	m := New(c, "home/air", time.Second)
	if err := m.Publish(sample); err != nil {
		t.Fatal(err)
	}
	if len(c.sent) != 1 {
		t.Fatalf("%d publications", len(c.sent))
	}
	p := c.sent[0]
	if p.topic != "home/air" || p.qos != 0 || p.retained {
		t.Errorf("publication = %+v", p)
	}
	want, _ := Marshal(sample)
	if diff := cmp.Diff(want, p.payload); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if err := m.Close(); err != nil || !c.disc {
		t.Errorf("Close() = %v, disconnected %t", err, c.disc)
	}
}

func TestPublishErrors(t *testing.T) {
	m := New(&client{tok: &token{}}, "t", time.Millisecond)
	if err := m.Publish(sample); !errors.Is(err, ErrTimeout) {
		t.Errorf("Publish() = %v", err)
	}
	broken := errors.New("not connected")
	m = New(&client{tok: &token{done: true, err: broken}}, "t", time.Millisecond)
	if err := m.Publish(sample); !errors.Is(err, broken) {
		t.Errorf("Publish() = %v", err)
	}
}

func TestNewMQTTInvalid(t *testing.T) {
	if _, err := NewMQTT(&Opts{Topic: "t"}); err == nil {
		t.Error("missing broker must fail")
	}
}
