// Copyright (C) 2025 SAGE-X Project
//
// This file is part of sage-http-certification.
//
// sage-http-certification is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sage-http-certification is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sage-http-certification.  If not, see <https://www.gnu.org/licenses/>.

// Package leb128 encodes and decodes unsigned LEB128 integers, the format used
// for certificate timestamps and for numbers in representation-independent
// hashes.
package leb128

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when the input ends in the middle of a value.
	ErrTruncated = errors.New("leb128: truncated input")

	// ErrOverflow is returned when the value does not fit in 64 bits.
	ErrOverflow = errors.New("leb128: value overflows uint64")
)

// Encode returns the unsigned LEB128 encoding of v.
func Encode(v uint64) []byte {
	return binary.AppendUvarint(nil, v)
}

// Decode reads a single unsigned LEB128 value that spans all of b.
func Decode(b []byte) (uint64, error) {
	v, n := binary.Uvarint(b)
	switch {
	case n == 0:
		return 0, ErrTruncated
	case n < 0:
		return 0, ErrOverflow
	case n != len(b):
		return 0, fmt.Errorf("leb128: %d trailing bytes", len(b)-n)
	}
	return v, nil
}
