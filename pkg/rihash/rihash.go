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

package rihash

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"github.com/sage-x-project/sage-http-certification/pkg/leb128"
)

// Value is a structured value that can be hashed independently of its
// serialization.
type Value interface {
	hash() [sha256.Size]byte
}

// String hashes as its UTF-8 bytes.
type String string

// Bytes hashes as-is.
type Bytes []byte

// Number hashes as its unsigned LEB128 encoding.
type Number uint64

// Array hashes as the concatenation of its element hashes.
type Array []Value

// Map is an ordered list of key/value pairs. Its hash does not depend on
// the order of the pairs.
type Map []Pair

// Pair is one entry of a Map.
type Pair struct {
	Key   string
	Value Value
}

func (s String) hash() [sha256.Size]byte { return sha256.Sum256([]byte(s)) }
func (b Bytes) hash() [sha256.Size]byte  { return sha256.Sum256(b) }
func (n Number) hash() [sha256.Size]byte { return sha256.Sum256(leb128.Encode(uint64(n))) }

func (a Array) hash() [sha256.Size]byte {
	h := sha256.New()
	for _, v := range a {
		d := v.hash()
		h.Write(d[:])
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (m Map) hash() [sha256.Size]byte {
	return HashMap(m)
}

// Hash computes the representation-independent hash of v.
func Hash(v Value) [sha256.Size]byte {
	return v.hash()
}

// HashMap hashes a list of pairs: every pair contributes
// sha256(key) || hash(value), the pair encodings are sorted bytewise and
// concatenated, and the result is hashed.
func HashMap(pairs []Pair) [sha256.Size]byte {
	encoded := make([][]byte, len(pairs))
	for i, p := range pairs {
		k := sha256.Sum256([]byte(p.Key))
		v := p.Value.hash()
		buf := make([]byte, 0, 2*sha256.Size)
		buf = append(buf, k[:]...)
		buf = append(buf, v[:]...)
		encoded[i] = buf
	}
	sort.Slice(encoded, func(i, j int) bool {
		return bytes.Compare(encoded[i], encoded[j]) < 0
	})
	return sha256.Sum256(bytes.Join(encoded, nil))
}
