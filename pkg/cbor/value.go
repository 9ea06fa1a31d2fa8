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

package cbor

// Value is a decoded CBOR data item. The set of implementations is closed:
// Uint, Bytes, Text, Array, Map, Bool and Null.
type Value interface {
	cborValue()
}

// Uint is an unsigned integer (major type 0).
type Uint uint64

// Bytes is a byte string (major type 2).
type Bytes []byte

// Text is a UTF-8 text string (major type 3).
type Text string

// Array is an array of data items (major type 4).
type Array []Value

// Map is a map (major type 5). Entry order is not significant.
type Map []MapEntry

// MapEntry is a single key/value pair of a Map.
type MapEntry struct {
	Key   Value
	Value Value
}

// Bool is a true or false simple value.
type Bool bool

// Null is the null or undefined simple value.
type Null struct{}

func (Uint) cborValue()  {}
func (Bytes) cborValue() {}
func (Text) cborValue()  {}
func (Array) cborValue() {}
func (Map) cborValue()   {}
func (Bool) cborValue()  {}
func (Null) cborValue()  {}

// Get returns the value stored under a text or byte-string key equal to key.
func (m Map) Get(key string) (Value, bool) {
	for _, e := range m {
		switch k := e.Key.(type) {
		case Text:
			if string(k) == key {
				return e.Value, true
			}
		case Bytes:
			if string(k) == key {
				return e.Value, true
			}
		}
	}
	return nil, false
}
