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

package transport

import (
	"net/http"

	"github.com/sage-x-project/sage-http-certification/pkg/verifier"
)

// NewCertifiedHTTPTransportForCanister creates a verifying transport for the
// responses of one canister.
//
// Parameters:
//   - canisterID: The raw principal bytes of the canister serving responses
//   - rootKey: The network root public key (DER or raw)
//   - opts: Verifier options (clock, time offset, minimum version, signature cache)
//
// Example:
//
//	t, err := transport.NewCertifiedHTTPTransportForCanister(
//	    canisterID,
//	    rootKey,
//	    verifier.WithMinRequestedVersion(2),
//	)
//	if err != nil {
//	    return err
//	}
//	client := &http.Client{Transport: t}
func NewCertifiedHTTPTransportForCanister(canisterID, rootKey []byte, opts ...verifier.Option) (*CertifiedHTTPTransport, error) {
	v, err := verifier.NewVerifier(canisterID, rootKey, opts...)
	if err != nil {
		return nil, err
	}
	return NewCertifiedHTTPTransport(v, nil), nil
}

// WrapClient returns a copy of c whose transport verifies every response.
// A nil c wraps a default client.
//
// The wrapped client's own transport should not decompress responses
// transparently, see NewCertifiedHTTPTransport.
func WrapClient(c *http.Client, v verifier.ResponseVerifier) *http.Client {
	wrapped := &http.Client{}
	if c != nil {
		*wrapped = *c
	}
	wrapped.Transport = NewCertifiedHTTPTransport(v, wrapped.Transport)
	return wrapped
}
