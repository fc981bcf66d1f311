// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sds011 reads the Nova Fitness SDS011 particulate matter sensor over
// its UART.
//
// In its default active mode the sensor sends one 10 byte frame per second:
//
//	AA C0 pm25L pm25H pm10L pm10H id1 id2 sum AB
//
// where the concentrations are in tenths of µg/m³ and sum is the low byte of
// the sum of bytes 2 to 7.
//
// Datasheet
//
// https://nova-fitness.com/media/pdf/Laser_Dust_Sensor_Control_Protocol_V1.3.pdf
package sds011
