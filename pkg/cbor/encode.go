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

import (
	"fmt"

	fxcbor "github.com/fxamacker/cbor/v2"
)

var encMode fxcbor.EncMode

func init() {
	em, err := fxcbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: invalid encode options: %v", err))
	}
	encMode = em
}

// Encode encodes v as a self-describing CBOR document (prefixed with tag
// 55799). Map keys are written in canonical order.
func Encode(v Value) ([]byte, error) {
	item, err := toNative(v)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(fxcbor.Tag{Number: SelfDescribeTag, Content: item})
}

// EncodeStrings encodes a list of text strings, the wire form of an
// expression path.
func EncodeStrings(values []string) ([]byte, error) {
	arr := make(Array, len(values))
	for i, s := range values {
		arr[i] = Text(s)
	}
	return Encode(arr)
}

func toNative(v Value) (any, error) {
	switch val := v.(type) {
	case Uint:
		return uint64(val), nil
	case Bytes:
		if val == nil {
			return []byte{}, nil
		}
		return []byte(val), nil
	case Text:
		return string(val), nil
	case Bool:
		return bool(val), nil
	case Null:
		return nil, nil
	case Array:
		items := make([]any, len(val))
		for i, item := range val {
			n, err := toNative(item)
			if err != nil {
				return nil, err
			}
			items[i] = n
		}
		return items, nil
	case Map:
		m := make(map[any]any, len(val))
		for _, e := range val {
			var key any
			switch k := e.Key.(type) {
			case Text:
				key = string(k)
			case Uint:
				key = uint64(k)
			case Bytes:
				key = fxcbor.ByteString(k)
			default:
				return nil, fmt.Errorf("cbor: unsupported map key type %T", e.Key)
			}
			n, err := toNative(e.Value)
			if err != nil {
				return nil, err
			}
			m[key] = n
		}
		return m, nil
	}
	return nil, fmt.Errorf("cbor: unsupported value type %T", v)
}
