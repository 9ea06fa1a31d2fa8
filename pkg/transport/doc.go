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

// Package transport provides an http.RoundTripper that verifies certified
// HTTP responses.
//
// # Key Features
//
//   - Verification of IC-Certificate versions 1 and 2 on every response
//   - Request bodies are buffered so full request certification can be checked
//   - Works with any http.Client, including clients with custom transports
//
// # Usage
//
//	t, err := transport.NewCertifiedHTTPTransportForCanister(canisterID, rootKey)
//	if err != nil {
//	    return err
//	}
//	client := &http.Client{Transport: t}
//
//	resp, err := client.Get("https://example.icp0.io/index.html")
//	if err != nil {
//	    // verification errors unwrap to *verifier.VerificationError
//	    log.Printf("rejected: %s", verifier.CodeOf(err))
//	    return err
//	}
//
// An existing client can be wrapped instead:
//
//	client = transport.WrapClient(client, v)
//
// # Architecture
//
//	http.Client
//	    └─→ CertifiedHTTPTransport
//	        └─→ base http.RoundTripper
//	            └─→ Network
//
// # Compression
//
// Transparent gzip in net/http removes the Content-Encoding and
// Content-Length headers and decodes the body, which breaks certification.
// The default base transport disables it. A custom base transport should
// set DisableCompression as well.
package transport
