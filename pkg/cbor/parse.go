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

import "fmt"

// CanisterRange is an inclusive range of canister ids, compared as raw bytes.
type CanisterRange struct {
	Low  []byte
	High []byte
}

// ParseStringArray decodes a CBOR array of text strings, such as the
// expr_path field of a certificate header.
func ParseStringArray(data []byte) ([]string, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(Array)
	if !ok {
		return nil, malformed("expected array of strings, got %T", v)
	}
	out := make([]string, 0, len(arr))
	for i, item := range arr {
		s, ok := item.(Text)
		if !ok {
			return nil, malformed("element %d: expected text string, got %T", i, item)
		}
		out = append(out, string(s))
	}
	return out, nil
}

// ParseCanisterRanges decodes the canister_ranges leaf of a subnet: an array
// of [low, high] byte-string pairs.
func ParseCanisterRanges(data []byte) ([]CanisterRange, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(Array)
	if !ok {
		return nil, malformed("expected array of canister ranges, got %T", v)
	}
	ranges := make([]CanisterRange, 0, len(arr))
	for i, item := range arr {
		pair, ok := item.(Array)
		if !ok || len(pair) != 2 {
			return nil, malformed("range %d: expected [low, high]", i)
		}
		low, okLow := pair[0].(Bytes)
		high, okHigh := pair[1].(Bytes)
		if !okLow || !okHigh {
			return nil, malformed("range %d: bounds must be byte strings", i)
		}
		ranges = append(ranges, CanisterRange{Low: low, High: high})
	}
	return ranges, nil
}

// EncodeCanisterRanges is the inverse of ParseCanisterRanges.
func EncodeCanisterRanges(ranges []CanisterRange) ([]byte, error) {
	arr := make(Array, len(ranges))
	for i, r := range ranges {
		arr[i] = Array{Bytes(r.Low), Bytes(r.High)}
	}
	b, err := Encode(arr)
	if err != nil {
		return nil, fmt.Errorf("encode canister ranges: %w", err)
	}
	return b, nil
}
