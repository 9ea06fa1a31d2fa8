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
	"errors"
	"fmt"
	"sort"

	fxcbor "github.com/fxamacker/cbor/v2"
)

// SelfDescribeTag is the CBOR tag (0xd9d9f7 on the wire) that marks a
// self-describing CBOR document.
const SelfDescribeTag = 55799

// ErrMalformedCbor is returned for truncated input, invalid initial bytes and
// unsupported major types.
var ErrMalformedCbor = errors.New("malformed CBOR")

const (
	majorUint   = 0
	majorNegint = 1
	majorBytes  = 2
	majorText   = 3
	majorArray  = 4
	majorMap    = 5
	majorTag    = 6
	majorSimple = 7
)

var decMode fxcbor.DecMode

func init() {
	dm, err := fxcbor.DecOptions{
		MaxNestedLevels:  512,
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      1 << 20,
		MapKeyByteString: fxcbor.MapKeyByteStringAllowed,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("cbor: invalid decode options: %v", err))
	}
	decMode = dm
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedCbor, fmt.Sprintf(format, args...))
}

// Decode decodes a single CBOR data item that spans all of data. Self-describe
// tags are accepted anywhere and skipped.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, malformed("empty input")
	}

	var raw fxcbor.RawMessage
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, malformed("%v", err)
	}

	return decodeRaw(raw)
}

func decodeRaw(raw fxcbor.RawMessage) (Value, error) {
	if len(raw) == 0 {
		return nil, malformed("empty data item")
	}

	switch raw[0] >> 5 {
	case majorUint:
		var v uint64
		if err := decMode.Unmarshal(raw, &v); err != nil {
			return nil, malformed("unsigned integer: %v", err)
		}
		return Uint(v), nil

	case majorBytes:
		var v []byte
		if err := decMode.Unmarshal(raw, &v); err != nil {
			return nil, malformed("byte string: %v", err)
		}
		if v == nil {
			v = []byte{}
		}
		return Bytes(v), nil

	case majorText:
		var v string
		if err := decMode.Unmarshal(raw, &v); err != nil {
			return nil, malformed("text string: %v", err)
		}
		return Text(v), nil

	case majorArray:
		var items []fxcbor.RawMessage
		if err := decMode.Unmarshal(raw, &items); err != nil {
			return nil, malformed("array: %v", err)
		}
		arr := make(Array, 0, len(items))
		for i, item := range items {
			v, err := decodeRaw(item)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			arr = append(arr, v)
		}
		return arr, nil

	case majorMap:
		var entries map[any]fxcbor.RawMessage
		if err := decMode.Unmarshal(raw, &entries); err != nil {
			return nil, malformed("map: %v", err)
		}
		m := make(Map, 0, len(entries))
		for k, item := range entries {
			key, err := decodeKey(k)
			if err != nil {
				return nil, err
			}
			v, err := decodeRaw(item)
			if err != nil {
				return nil, fmt.Errorf("map value: %w", err)
			}
			m = append(m, MapEntry{Key: key, Value: v})
		}
		sort.Slice(m, func(i, j int) bool { return keyString(m[i].Key) < keyString(m[j].Key) })
		return m, nil

	case majorTag:
		var tag fxcbor.RawTag
		if err := decMode.Unmarshal(raw, &tag); err != nil {
			return nil, malformed("tag: %v", err)
		}
		if tag.Number != SelfDescribeTag {
			return nil, malformed("unsupported tag %d", tag.Number)
		}
		return decodeRaw(tag.Content)

	case majorSimple:
		switch raw[0] {
		case 0xf4:
			return Bool(false), nil
		case 0xf5:
			return Bool(true), nil
		case 0xf6, 0xf7:
			return Null{}, nil
		}
		return nil, malformed("unsupported simple value 0x%02x", raw[0])
	}

	return nil, malformed("unsupported major type %d", raw[0]>>5)
}

func decodeKey(k any) (Value, error) {
	switch key := k.(type) {
	case string:
		return Text(key), nil
	case uint64:
		return Uint(key), nil
	case fxcbor.ByteString:
		return Bytes(key), nil
	}
	return nil, malformed("unsupported map key type %T", k)
}

// keyString gives map entries a stable order after decoding.
func keyString(v Value) string {
	switch k := v.(type) {
	case Text:
		return "t" + string(k)
	case Bytes:
		return "b" + string(k)
	case Uint:
		return fmt.Sprintf("u%020d", uint64(k))
	}
	return ""
}
