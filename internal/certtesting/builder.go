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

package certtesting

import (
	"time"

	"github.com/sage-x-project/sage-http-certification/pkg/cbor"
	"github.com/sage-x-project/sage-http-certification/pkg/certificate"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/leb128"
)

// DefaultTime is the certificate time used when none is set.
var DefaultTime = time.Unix(1_700_000_000, 0)

// CanisterID is a canister id used throughout the tests.
var CanisterID = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x01}

// SubnetID is a subnet id used for delegated certificates.
var SubnetID = []byte("test-subnet")

// CertificateBuilder assembles signed certificates, optionally with a
// delegation and with deliberate faults.
type CertificateBuilder struct {
	root          *KeyPair
	canisterID    []byte
	certifiedData []byte
	time          time.Time
	omitTime      bool
	corrupt       bool

	delegation *delegationParams
}

type delegationParams struct {
	subnetID   []byte
	key        *KeyPair
	ranges     []cbor.CanisterRange
	nested     bool
	omitRanges bool
	omitKey    bool
}

// NewCertificateBuilder starts a certificate for canisterID carrying
// certifiedData, signed by root.
func NewCertificateBuilder(root *KeyPair, canisterID, certifiedData []byte) *CertificateBuilder {
	return &CertificateBuilder{
		root:          root,
		canisterID:    canisterID,
		certifiedData: certifiedData,
		time:          DefaultTime,
	}
}

// WithTime sets the certificate time.
func (b *CertificateBuilder) WithTime(t time.Time) *CertificateBuilder {
	b.time = t
	return b
}

// WithoutTime leaves the time leaf out of the tree.
func (b *CertificateBuilder) WithoutTime() *CertificateBuilder {
	b.omitTime = true
	return b
}

// WithCorruptSignature flips a bit of the final signature.
func (b *CertificateBuilder) WithCorruptSignature() *CertificateBuilder {
	b.corrupt = true
	return b
}

// WithDelegation signs the certificate with subnetKey and attaches a
// delegation from the root key for the given canister ranges.
func (b *CertificateBuilder) WithDelegation(subnetID []byte, subnetKey *KeyPair, ranges []cbor.CanisterRange) *CertificateBuilder {
	b.delegation = &delegationParams{subnetID: subnetID, key: subnetKey, ranges: ranges}
	return b
}

// WithNestedDelegation gives the delegation certificate a delegation of its
// own. It requires WithDelegation.
func (b *CertificateBuilder) WithNestedDelegation() *CertificateBuilder {
	if b.delegation != nil {
		b.delegation.nested = true
	}
	return b
}

// WithoutCanisterRanges drops the canister ranges from the delegation.
func (b *CertificateBuilder) WithoutCanisterRanges() *CertificateBuilder {
	if b.delegation != nil {
		b.delegation.omitRanges = true
	}
	return b
}

// WithoutSubnetPublicKey drops the subnet key from the delegation.
func (b *CertificateBuilder) WithoutSubnetPublicKey() *CertificateBuilder {
	if b.delegation != nil {
		b.delegation.omitKey = true
	}
	return b
}

// Tree returns the unsigned certificate tree.
func (b *CertificateBuilder) Tree() hashtree.Node {
	tree := hashtree.NewNestedTree()
	tree.Insert(hashtree.Path("canister", string(b.canisterID), "certified_data"), b.certifiedData)
	if !b.omitTime {
		tree.Insert(hashtree.Path("time"), leb128.Encode(uint64(b.time.UnixNano())))
	}
	return tree.AsHashTree()
}

// Build returns the CBOR encoded certificate.
func (b *CertificateBuilder) Build() ([]byte, error) {
	cert, err := b.BuildCertificate()
	if err != nil {
		return nil, err
	}
	return certificate.Encode(cert)
}

// BuildCertificate returns the decoded certificate.
func (b *CertificateBuilder) BuildCertificate() (*certificate.Certificate, error) {
	tree := b.Tree()
	signer := b.root

	cert := &certificate.Certificate{Tree: tree}
	if b.delegation != nil {
		inner, err := b.delegationCertificate()
		if err != nil {
			return nil, err
		}
		cert.Delegation = &certificate.Delegation{SubnetID: b.delegation.subnetID, Certificate: inner}
		signer = b.delegation.key
	}

	cert.Signature = signer.Sign(certificate.SignedMessage(tree))
	if b.corrupt {
		cert.Signature[len(cert.Signature)-1] ^= 0x01
	}
	return cert, nil
}

func (b *CertificateBuilder) delegationCertificate() ([]byte, error) {
	d := b.delegation
	subnet := string(d.subnetID)

	tree := hashtree.NewNestedTree()
	if !d.omitRanges {
		ranges, err := cbor.EncodeCanisterRanges(d.ranges)
		if err != nil {
			return nil, err
		}
		tree.Insert(hashtree.Path("subnet", subnet, "canister_ranges"), ranges)
	}
	if !d.omitKey {
		tree.Insert(hashtree.Path("subnet", subnet, "public_key"), d.key.DERPublicKey())
	}
	tree.Insert(hashtree.Path("time"), leb128.Encode(uint64(b.time.UnixNano())))

	root := tree.AsHashTree()
	inner := &certificate.Certificate{
		Tree:      root,
		Signature: b.root.Sign(certificate.SignedMessage(root)),
	}
	if d.nested {
		inner.Delegation = &certificate.Delegation{SubnetID: d.subnetID, Certificate: []byte{0xa0}}
	}
	return certificate.Encode(inner)
}

// RangeAround returns a canister range that contains exactly id.
func RangeAround(id []byte) []cbor.CanisterRange {
	return []cbor.CanisterRange{{Low: id, High: id}}
}

// Source issues fresh certificates over arbitrary certified data. It is the
// stand-in for the replicated state a real server would read its
// certificate from.
type Source struct {
	Root       *KeyPair
	CanisterID []byte
	Now        func() time.Time
}

// Certificate returns a certificate for certifiedData at the current time.
func (s *Source) Certificate(certifiedData []byte) ([]byte, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return NewCertificateBuilder(s.Root, s.CanisterID, certifiedData).WithTime(now()).Build()
}
