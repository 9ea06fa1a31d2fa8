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
	"errors"
	"fmt"

	"github.com/sage-x-project/sage-http-certification/pkg/cbor"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
)

var (
	// ErrMalformedCertificate is returned when a certificate cannot be decoded.
	ErrMalformedCertificate = errors.New("malformed certificate")

	// ErrVerificationFailed is returned when a certificate signature does not
	// verify.
	ErrVerificationFailed = errors.New("certificate verification failed")

	// ErrNestedDelegation is returned when a delegation certificate carries a
	// delegation of its own.
	ErrNestedDelegation = errors.New("nested delegation not allowed")

	// ErrCanisterRangesNotFound is returned when a delegation certificate has
	// no canister ranges for the subnet.
	ErrCanisterRangesNotFound = errors.New("canister ranges not found")

	// ErrCanisterIDOutOfRange is returned when the canister is not in any of the
	// subnet's ranges.
	ErrCanisterIDOutOfRange = errors.New("canister id out of range")

	// ErrPublicKeyNotFound is returned when a delegation certificate has no
	// public key for the subnet.
	ErrPublicKeyNotFound = errors.New("subnet public key not found")

	// ErrMissingTime is returned when the certificate tree has no time leaf.
	ErrMissingTime = errors.New("certificate time not found")

	// ErrTimeTooFarInPast is returned for a certificate older than the
	// allowed offset.
	ErrTimeTooFarInPast = errors.New("certificate time too far in the past")

	// ErrTimeTooFarInFuture is returned for a certificate newer than the
	// allowed offset.
	ErrTimeTooFarInFuture = errors.New("certificate time too far in the future")
)

// Certificate is a signed hash tree.
type Certificate struct {
	Tree       hashtree.Node
	Signature  []byte
	Delegation *Delegation
}

// Delegation authorizes a subnet key to sign on behalf of the root key.
// Certificate holds the CBOR encoded delegating certificate.
type Delegation struct {
	SubnetID    []byte
	Certificate []byte
}

// Decode parses a CBOR encoded certificate.
func Decode(data []byte) (*Certificate, error) {
	v, err := cbor.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}
	m, ok := v.(cbor.Map)
	if !ok {
		return nil, fmt.Errorf("%w: expected a map", ErrMalformedCertificate)
	}

	treeValue, ok := m.Get("tree")
	if !ok {
		return nil, fmt.Errorf("%w: missing tree", ErrMalformedCertificate)
	}
	tree, err := hashtree.FromValue(treeValue)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCertificate, err)
	}

	sigValue, ok := m.Get("signature")
	if !ok {
		return nil, fmt.Errorf("%w: missing signature", ErrMalformedCertificate)
	}
	sig, ok := sigValue.(cbor.Bytes)
	if !ok {
		return nil, fmt.Errorf("%w: signature is not a byte string", ErrMalformedCertificate)
	}

	cert := &Certificate{Tree: tree, Signature: []byte(sig)}

	delegationValue, ok := m.Get("delegation")
	if !ok {
		return cert, nil
	}
	dm, ok := delegationValue.(cbor.Map)
	if !ok {
		return nil, fmt.Errorf("%w: delegation is not a map", ErrMalformedCertificate)
	}
	subnet, ok := getBytes(dm, "subnet_id")
	if !ok {
		return nil, fmt.Errorf("%w: delegation subnet_id", ErrMalformedCertificate)
	}
	inner, ok := getBytes(dm, "certificate")
	if !ok {
		return nil, fmt.Errorf("%w: delegation certificate", ErrMalformedCertificate)
	}
	cert.Delegation = &Delegation{SubnetID: subnet, Certificate: inner}
	return cert, nil
}

func getBytes(m cbor.Map, key string) ([]byte, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.(cbor.Bytes)
	return []byte(b), ok
}

// Encode serializes the certificate.
func Encode(c *Certificate) ([]byte, error) {
	m := cbor.Map{
		{Key: cbor.Text("tree"), Value: hashtree.ToValue(c.Tree)},
		{Key: cbor.Text("signature"), Value: cbor.Bytes(c.Signature)},
	}
	if c.Delegation != nil {
		m = append(m, cbor.MapEntry{Key: cbor.Text("delegation"), Value: cbor.Map{
			{Key: cbor.Text("subnet_id"), Value: cbor.Bytes(c.Delegation.SubnetID)},
			{Key: cbor.Text("certificate"), Value: cbor.Bytes(c.Delegation.Certificate)},
		}})
	}
	return cbor.Encode(m)
}

// Lookup reads a leaf from the certificate tree.
func (c *Certificate) Lookup(labels ...[]byte) hashtree.LookupResult {
	return hashtree.LookupPath(c.Tree, labels)
}

// SignedMessage returns the bytes covered by the certificate signature.
func (c *Certificate) SignedMessage() []byte {
	return SignedMessage(c.Tree)
}

// SignedMessage is the domain-separated root hash of tree.
func SignedMessage(tree hashtree.Node) []byte {
	root := hashtree.Digest(tree)
	msg := make([]byte, 0, len(stateRootDomain)+len(root))
	msg = append(msg, stateRootDomain...)
	return append(msg, root[:]...)
}

var stateRootDomain = []byte("\x0dic-state-root")
