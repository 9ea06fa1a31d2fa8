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

package verifier

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/sage-x-project/sage-http-certification/pkg/certificate"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

// DefaultMaxCertificateTimeOffset is how far the certificate time may drift
// from the verifier's clock.
const DefaultMaxCertificateTimeOffset = 5 * time.Minute

// ErrNilMessage is returned when the request or the response is nil.
var ErrNilMessage = errors.New("request and response are required")

// Verifier verifies responses served by one canister.
// It is safe for concurrent use.
type Verifier struct {
	canisterID []byte
	certs      *certificate.Verifier
	certOpts   []certificate.Option
	maxOffset  time.Duration
	minVersion uint8
	now        func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithMaxCertificateTimeOffset sets the allowed drift between certificate
// time and the clock.
func WithMaxCertificateTimeOffset(d time.Duration) Option {
	return func(v *Verifier) {
		v.maxOffset = d
	}
}

// WithMinRequestedVersion rejects responses certified under an older
// verification version.
func WithMinRequestedVersion(version uint8) Option {
	return func(v *Verifier) {
		v.minVersion = version
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// WithSignatureCache memoizes successful certificate signature checks.
func WithSignatureCache(cache certificate.SignatureCache) Option {
	return func(v *Verifier) {
		v.certOpts = append(v.certOpts, certificate.WithSignatureCache(cache))
	}
}

// NewVerifier creates a verifier for responses of canisterID. rootKey is the
// network root public key in DER or raw form.
func NewVerifier(canisterID, rootKey []byte, opts ...Option) (*Verifier, error) {
	v := &Verifier{
		canisterID: append([]byte(nil), canisterID...),
		maxOffset:  DefaultMaxCertificateTimeOffset,
		minVersion: protocol.MinVerificationVersion,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}

	certs, err := certificate.NewVerifier(rootKey, v.certOpts...)
	if err != nil {
		return nil, err
	}
	v.certs = certs
	return v, nil
}

// VerifyRequestResponsePair implements ResponseVerifier.
func (v *Verifier) VerifyRequestResponsePair(ctx context.Context, req *httpcert.Request, resp *httpcert.Response) (*VerificationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil || resp == nil {
		return nil, ErrNilMessage
	}

	header := &protocol.CertificateHeader{Version: protocol.DefaultVerificationVersion}
	value, found := httpcert.Header(resp.Headers, protocol.CertificateHeaderName)
	if found {
		parsed, err := protocol.ParseCertificateHeader(value)
		if err != nil {
			return failed(protocol.DefaultVerificationVersion), classify(err)
		}
		header = parsed
	}

	if header.Version < v.minVersion {
		return failed(header.Version), errorf(CodeVerificationVersionMismatch,
			"response version %d, minimum requested %d", header.Version, v.minVersion)
	}
	if !header.IsSupportedVersion() {
		return failed(header.Version), errorf(CodeUnsupportedVerificationVersion,
			"version %d, supported %d to %d", header.Version, protocol.MinVerificationVersion, protocol.MaxVerificationVersion)
	}
	if !found {
		return failed(header.Version), newError(CodeMissingCertification, nil)
	}

	var (
		verified *VerifiedResponse
		err      error
	)
	switch header.Version {
	case 1:
		verified, err = v.verifyV1(header, req, resp)
	default:
		verified, err = v.verifyV2(header, req, resp)
	}
	if err != nil {
		return failed(header.Version), classify(err)
	}
	return &VerificationResult{Version: header.Version, Passed: true, Response: verified}, nil
}

func failed(version uint8) *VerificationResult {
	return &VerificationResult{Version: version}
}

// checkCertificate decodes the certificate and witness, verifies the
// certificate and checks that it certifies the witness.
func (v *Verifier) checkCertificate(h *protocol.CertificateHeader) (hashtree.Node, error) {
	cert, err := certificate.Decode(h.Certificate)
	if err != nil {
		return nil, err
	}
	tree, err := hashtree.Decode(h.Tree)
	if err != nil {
		return nil, err
	}

	if err := v.certs.VerifyCertificate(cert, v.canisterID, v.now(), v.maxOffset); err != nil {
		return nil, err
	}

	if !validateTree(cert, v.canisterID, tree) {
		return nil, newError(CodeInvalidTree, nil)
	}
	return tree, nil
}

// validateTree reports whether the certificate's certified data for the
// canister is the digest of tree.
func validateTree(cert *certificate.Certificate, canisterID []byte, tree hashtree.Node) bool {
	res := cert.Lookup([]byte("canister"), canisterID, []byte("certified_data"))
	if res.Status != hashtree.Found || len(res.Value) != sha256.Size {
		return false
	}
	digest := hashtree.Digest(tree)
	return bytes.Equal(res.Value, digest[:])
}

// VerifyRequestResponsePair verifies a single response without keeping a
// Verifier around.
func VerifyRequestResponsePair(
	req *httpcert.Request,
	resp *httpcert.Response,
	canisterID []byte,
	rootKey []byte,
	now time.Time,
	maxOffset time.Duration,
	minVersion uint8,
) (*VerificationResult, error) {
	v, err := NewVerifier(canisterID, rootKey,
		WithClock(func() time.Time { return now }),
		WithMaxCertificateTimeOffset(maxOffset),
		WithMinRequestedVersion(minVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("create verifier: %w", err)
	}
	return v.VerifyRequestResponsePair(context.Background(), req, resp)
}

var _ ResponseVerifier = (*Verifier)(nil)
