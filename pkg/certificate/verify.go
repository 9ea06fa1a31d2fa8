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
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/sage-x-project/sage-http-certification/pkg/bls"
	"github.com/sage-x-project/sage-http-certification/pkg/cbor"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/leb128"
)

// Verifier checks certificates against a root public key.
type Verifier struct {
	rootKey []byte
	cache   SignatureCache
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithSignatureCache memoizes successful signature checks in cache.
func WithSignatureCache(cache SignatureCache) Option {
	return func(v *Verifier) {
		v.cache = cache
	}
}

// NewVerifier creates a verifier for rootKey, given in DER or raw form.
func NewVerifier(rootKey []byte, opts ...Option) (*Verifier, error) {
	raw, err := NormalizePublicKey(rootKey)
	if err != nil {
		return nil, fmt.Errorf("invalid root key: %w", err)
	}
	if _, err := bls.ParsePublicKey(raw); err != nil {
		return nil, fmt.Errorf("invalid root key: %w", err)
	}

	v := &Verifier{rootKey: raw}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// RootKey returns the raw root public key.
func (v *Verifier) RootKey() []byte {
	return v.rootKey
}

// Verify decodes data and checks that it is a valid certificate for
// canisterID: the time leaf is within maxOffset of now, the delegation (if
// any) covers the canister, and the signature verifies.
func (v *Verifier) Verify(data, canisterID []byte, now time.Time, maxOffset time.Duration) (*Certificate, error) {
	cert, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := v.VerifyCertificate(cert, canisterID, now, maxOffset); err != nil {
		return nil, err
	}
	return cert, nil
}

// VerifyCertificate runs the checks of Verify on an already decoded
// certificate.
func (v *Verifier) VerifyCertificate(cert *Certificate, canisterID []byte, now time.Time, maxOffset time.Duration) error {
	if err := CheckTime(cert, now, maxOffset); err != nil {
		return err
	}

	key, err := v.signingKey(cert, canisterID)
	if err != nil {
		return err
	}
	return v.checkSignature(key, cert)
}

// signingKey returns the key that must have signed cert, following its
// delegation.
func (v *Verifier) signingKey(cert *Certificate, canisterID []byte) ([]byte, error) {
	if cert.Delegation == nil {
		return v.rootKey, nil
	}

	inner, err := Decode(cert.Delegation.Certificate)
	if err != nil {
		return nil, fmt.Errorf("delegation: %w", err)
	}
	if inner.Delegation != nil {
		return nil, ErrNestedDelegation
	}
	if err := v.checkSignature(v.rootKey, inner); err != nil {
		return nil, fmt.Errorf("delegation: %w", err)
	}

	subnet := cert.Delegation.SubnetID
	if err := checkCanisterRanges(inner, subnet, canisterID); err != nil {
		return nil, err
	}

	res := inner.Lookup([]byte("subnet"), subnet, []byte("public_key"))
	if res.Status != hashtree.Found {
		return nil, ErrPublicKeyNotFound
	}
	return ParseDERPublicKey(res.Value)
}

func checkCanisterRanges(inner *Certificate, subnet, canisterID []byte) error {
	res := inner.Lookup([]byte("subnet"), subnet, []byte("canister_ranges"))
	if res.Status != hashtree.Found {
		return ErrCanisterRangesNotFound
	}
	ranges, err := cbor.ParseCanisterRanges(res.Value)
	if err != nil {
		return fmt.Errorf("%w: canister ranges: %w", ErrMalformedCertificate, err)
	}
	for _, r := range ranges {
		if bytes.Compare(r.Low, canisterID) <= 0 && bytes.Compare(canisterID, r.High) <= 0 {
			return nil
		}
	}
	return ErrCanisterIDOutOfRange
}

func (v *Verifier) checkSignature(key []byte, cert *Certificate) error {
	msg := cert.SignedMessage()

	var cacheKey [sha256.Size]byte
	if v.cache != nil {
		h := sha256.New()
		h.Write(key)
		h.Write(cert.Signature)
		h.Write(msg)
		copy(cacheKey[:], h.Sum(nil))
		if v.cache.Contains(cacheKey) {
			return nil
		}
	}

	if err := bls.Verify(key, cert.Signature, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	if v.cache != nil {
		v.cache.Add(cacheKey)
	}
	return nil
}

// Time returns the certificate's time leaf.
func Time(cert *Certificate) (time.Time, error) {
	nanos, err := timeNanos(cert)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, int64(nanos)), nil
}

func timeNanos(cert *Certificate) (uint64, error) {
	res := cert.Lookup([]byte("time"))
	if res.Status != hashtree.Found {
		return 0, ErrMissingTime
	}
	nanos, err := leb128.Decode(res.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: time: %w", ErrMalformedCertificate, err)
	}
	return nanos, nil
}

// CheckTime fails unless the certificate time lies in
// [now - maxOffset, now + maxOffset].
func CheckTime(cert *Certificate, now time.Time, maxOffset time.Duration) error {
	certNanos, err := timeNanos(cert)
	if err != nil {
		return err
	}

	nowNanos := uint64(0)
	if n := now.UnixNano(); n > 0 {
		nowNanos = uint64(n)
	}
	offset := uint64(0)
	if maxOffset > 0 {
		offset = uint64(maxOffset)
	}

	upper := nowNanos + offset
	if upper < nowNanos {
		upper = ^uint64(0)
	}
	if certNanos > upper {
		return fmt.Errorf("%w: certificate time %d, now %d", ErrTimeTooFarInFuture, certNanos, nowNanos)
	}
	if nowNanos > offset && certNanos < nowNanos-offset {
		return fmt.Errorf("%w: certificate time %d, now %d", ErrTimeTooFarInPast, certNanos, nowNanos)
	}
	return nil
}
