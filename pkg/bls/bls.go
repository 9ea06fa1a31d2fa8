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

// Package bls verifies BLS12-381 signatures in the minimal-signature-size
// variant: signatures are compressed G1 points (48 bytes) and public keys are
// compressed G2 points (96 bytes).
package bls

import (
	"errors"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

const (
	// SignatureSize is the length of a compressed G1 signature.
	SignatureSize = bls12381.SizeOfG1AffineCompressed

	// PublicKeySize is the length of a compressed G2 public key.
	PublicKeySize = bls12381.SizeOfG2AffineCompressed
)

// DST is the hash-to-curve domain separation tag for G1 signatures.
var DST = []byte("BLS_SIG_BLS12381G1_XMD:SHA-256_SSWU_RO_NUL_")

var (
	// ErrInvalidPublicKey is returned when a key is not a valid G2 point.
	ErrInvalidPublicKey = errors.New("bls: invalid public key")

	// ErrInvalidSignature is returned when a signature is not a valid G1 point.
	ErrInvalidSignature = errors.New("bls: invalid signature")

	// ErrVerificationFailed is returned when the pairing check fails.
	ErrVerificationFailed = errors.New("bls: signature verification failed")
)

var negG2 bls12381.G2Affine

func init() {
	_, _, _, g2 := bls12381.Generators()
	negG2.Neg(&g2)
}

// ParsePublicKey decodes a compressed G2 point.
func ParsePublicKey(b []byte) (*bls12381.G2Affine, error) {
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, PublicKeySize, len(b))
	}
	var pk bls12381.G2Affine
	if _, err := pk.SetBytes(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if pk.IsInfinity() {
		return nil, fmt.Errorf("%w: point at infinity", ErrInvalidPublicKey)
	}
	return &pk, nil
}

// ParseSignature decodes a compressed G1 point.
func ParseSignature(b []byte) (*bls12381.G1Affine, error) {
	if len(b) != SignatureSize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SignatureSize, len(b))
	}
	var sig bls12381.G1Affine
	if _, err := sig.SetBytes(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if sig.IsInfinity() {
		return nil, fmt.Errorf("%w: point at infinity", ErrInvalidSignature)
	}
	return &sig, nil
}

// HashToG1 maps msg to a G1 point with the RFC 9380 SSWU random-oracle
// suite, domain separated by dst.
func HashToG1(msg, dst []byte) (bls12381.G1Affine, error) {
	h, err := bls12381.HashToG1(msg, dst)
	if err != nil {
		return bls12381.G1Affine{}, fmt.Errorf("bls: hash to curve: %w", err)
	}
	return h, nil
}

// Verify checks that sig is a signature of msg under publicKey.
func Verify(publicKey, sig, msg []byte) error {
	pk, err := ParsePublicKey(publicKey)
	if err != nil {
		return err
	}
	s, err := ParseSignature(sig)
	if err != nil {
		return err
	}

	h, err := HashToG1(msg, DST)
	if err != nil {
		return err
	}

	// e(sig, -g2) * e(H(msg), pk) == 1
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{*s, h},
		[]bls12381.G2Affine{negG2, *pk},
	)
	if err != nil {
		return fmt.Errorf("bls: pairing: %w", err)
	}
	if !ok {
		return ErrVerificationFailed
	}
	return nil
}
