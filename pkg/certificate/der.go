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

package certificate

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/sage-x-project/sage-http-certification/pkg/bls"
)

// derPrefix is the fixed SubjectPublicKeyInfo header for a BLS12-381 G2 key.
var derPrefix = []byte{
	0x30, 0x81, 0x82, 0x30, 0x1d, 0x06, 0x0d, 0x2b, 0x06, 0x01, 0x04, 0x01, 0x82, 0xdc, 0x7c, 0x05,
	0x03, 0x01, 0x02, 0x01, 0x06, 0x0c, 0x2b, 0x06, 0x01, 0x04, 0x01, 0x82, 0xdc, 0x7c, 0x05, 0x03,
	0x02, 0x01, 0x03, 0x61, 0x00,
}

// DERPublicKeySize is the length of a DER encoded BLS public key.
var DERPublicKeySize = len(derPrefix) + bls.PublicKeySize

var (
	// ErrDERKeyLengthMismatch is returned for a DER key of the wrong length.
	ErrDERKeyLengthMismatch = errors.New("der key length mismatch")

	// ErrDERPrefixMismatch is returned when the DER header is not the BLS one.
	ErrDERPrefixMismatch = errors.New("der key prefix mismatch")
)

// ParseDERPublicKey strips the DER header from a BLS public key.
func ParseDERPublicKey(der []byte) ([]byte, error) {
	if len(der) != DERPublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrDERKeyLengthMismatch, DERPublicKeySize, len(der))
	}
	if !bytes.HasPrefix(der, derPrefix) {
		return nil, ErrDERPrefixMismatch
	}
	return append([]byte(nil), der[len(derPrefix):]...), nil
}

// EncodeDERPublicKey wraps a raw 96-byte BLS public key in its DER header.
func EncodeDERPublicKey(raw []byte) []byte {
	out := make([]byte, 0, len(derPrefix)+len(raw))
	out = append(out, derPrefix...)
	return append(out, raw...)
}

// NormalizePublicKey accepts a key in either DER or raw form and returns the
// raw form.
func NormalizePublicKey(key []byte) ([]byte, error) {
	if len(key) == bls.PublicKeySize {
		return append([]byte(nil), key...), nil
	}
	return ParseDERPublicKey(key)
}
