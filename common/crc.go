// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package common contains the checksums shared by the sensor drivers: the
// Sensirion CRC8 over 16 bit words and the 8 bit byte sum of the Nova Fitness
// serial frames.
package common

import (
	"errors"
	"fmt"
)

// ErrCRC is returned when a word read from a sensor does not match its CRC.
var ErrCRC = errors.New("crc mismatch")

// CRC8 calculates the 8-bit CRC of the byte slice parameter and returns the
// calculated value. CRC bytes are used in sensors from TI and Sensirion.
func CRC8(bytes []byte) byte {
	var crc byte = 0xff
	for _, val := range bytes {
		crc ^= val
		for i := 0; i < 8; i++ {
			if (crc & 0x80) == 0 {
				crc <<= 1
			} else {
				crc = (byte)((crc << 1) ^ 0x31)
			}
		}
	}
	return crc
}

// AppendWord appends w big endian followed by its CRC8.
func AppendWord(b []byte, w uint16) []byte {
	hi, lo := byte(w>>8), byte(w)
	return append(b, hi, lo, CRC8([]byte{hi, lo}))
}

// Words decodes a sequence of 3 byte groups, each a big endian word followed
// by its CRC8.
func Words(b []byte) ([]uint16, error) {
	if len(b)%3 != 0 {
		return nil, fmt.Errorf("length %d is not a multiple of 3", len(b))
	}
	out := make([]uint16, len(b)/3)
	for i := range out {
		g := b[i*3 : i*3+3]
		if CRC8(g[:2]) != g[2] {
			return nil, fmt.Errorf("word %d: %w", i, ErrCRC)
		}
		out[i] = uint16(g[0])<<8 | uint16(g[1])
	}
	return out, nil
}

// Sum8 returns the low byte of the sum of b.
func Sum8(b []byte) byte {
	var s byte
	for _, v := range b {
		s += v
	}
	return s
}
