// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package scd4x drives the Sensirion SCD40/SCD41 CO2 sensors in periodic
// measurement mode. Each reading carries the CO2 concentration along with the
// temperature and relative humidity measured by the same module.
//
// Right after power up the sensor reports a CO2 value of 0 until its first
// valid measurement; Env.WarmingUp reports that state.
//
// Refer to the datasheet for more information.
//
// https://sensirion.com/media/documents/48C4B7FB/66E05452/CD_DS_SCD4x_Datasheet_D1.pdf
package scd4x
