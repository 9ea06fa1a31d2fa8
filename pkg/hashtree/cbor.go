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

package hashtree

import (
	"fmt"

	"github.com/sage-x-project/sage-http-certification/pkg/cbor"
)

const (
	tagEmpty uint64 = iota
	tagFork
	tagLabeled
	tagLeaf
	tagPruned
)

// Decode parses a CBOR encoded hash tree.
func Decode(data []byte) (Node, error) {
	v, err := cbor.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHashTree, err)
	}
	return FromValue(v)
}

// FromValue converts a decoded CBOR item into a hash tree.
func FromValue(v cbor.Value) (Node, error) {
	arr, ok := v.(cbor.Array)
	if !ok || len(arr) == 0 {
		return nil, fmt.Errorf("%w: node is not a tagged array", ErrMalformedHashTree)
	}
	tag, ok := arr[0].(cbor.Uint)
	if !ok {
		return nil, fmt.Errorf("%w: node tag is not an integer", ErrMalformedHashTree)
	}

	switch uint64(tag) {
	case tagEmpty:
		if len(arr) != 1 {
			return nil, malformed("empty", len(arr))
		}
		return Empty{}, nil

	case tagFork:
		if len(arr) != 3 {
			return nil, malformed("fork", len(arr))
		}
		left, err := FromValue(arr[1])
		if err != nil {
			return nil, err
		}
		right, err := FromValue(arr[2])
		if err != nil {
			return nil, err
		}
		return Fork{Left: left, Right: right}, nil

	case tagLabeled:
		if len(arr) != 3 {
			return nil, malformed("labeled", len(arr))
		}
		label, ok := arr[1].(cbor.Bytes)
		if !ok {
			return nil, fmt.Errorf("%w: label is not a byte string", ErrMalformedHashTree)
		}
		child, err := FromValue(arr[2])
		if err != nil {
			return nil, err
		}
		return Labeled{Label: []byte(label), Child: child}, nil

	case tagLeaf:
		if len(arr) != 2 {
			return nil, malformed("leaf", len(arr))
		}
		value, ok := arr[1].(cbor.Bytes)
		if !ok {
			return nil, fmt.Errorf("%w: leaf value is not a byte string", ErrMalformedHashTree)
		}
		return Leaf(value), nil

	case tagPruned:
		if len(arr) != 2 {
			return nil, malformed("pruned", len(arr))
		}
		digest, ok := arr[1].(cbor.Bytes)
		if !ok || len(digest) != 32 {
			return nil, fmt.Errorf("%w: pruned digest must be 32 bytes", ErrMalformedHashTree)
		}
		var p Pruned
		copy(p[:], digest)
		return p, nil
	}

	return nil, fmt.Errorf("%w: unknown node tag %d", ErrMalformedHashTree, tag)
}

func malformed(kind string, n int) error {
	return fmt.Errorf("%w: %s node with %d elements", ErrMalformedHashTree, kind, n)
}

// ToValue converts a hash tree into its CBOR data model.
func ToValue(n Node) cbor.Value {
	switch t := n.(type) {
	case Fork:
		return cbor.Array{cbor.Uint(tagFork), ToValue(t.Left), ToValue(t.Right)}
	case Labeled:
		return cbor.Array{cbor.Uint(tagLabeled), cbor.Bytes(t.Label), ToValue(t.Child)}
	case Leaf:
		return cbor.Array{cbor.Uint(tagLeaf), cbor.Bytes(t)}
	case Pruned:
		return cbor.Array{cbor.Uint(tagPruned), cbor.Bytes(t[:])}
	default:
		return cbor.Array{cbor.Uint(tagEmpty)}
	}
}

// Encode serializes n as self-describing CBOR.
func Encode(n Node) ([]byte, error) {
	return cbor.Encode(ToValue(n))
}
