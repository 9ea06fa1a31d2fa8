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

// Package client provides an HTTP client that verifies certified responses.
//
// # Basic Usage
//
//	client, err := client.NewCertifiedClientForCanister(canisterID, rootKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	resp, err := client.Get(ctx, "https://example.icp0.io/api/status")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer resp.Body.Close()
//
// # Custom HTTP Client
//
//	httpClient := &http.Client{
//	    Timeout: 30 * time.Second,
//	}
//	client := client.NewCertifiedClient(v, httpClient)
//
// # POST Requests
//
//	body := []byte(`{"query": "balance"}`)
//	resp, err := client.Post(ctx, "https://example.icp0.io/api/query", "application/json", body)
//
// # Custom Requests
//
//	req, _ := http.NewRequest("PUT", "https://example.icp0.io/api/data", body)
//	req.Header.Set("Content-Type", "application/json")
//	resp, err := client.Do(ctx, req)
//
// # How It Works
//
// The CertifiedClient wraps a standard http.Client with a
// transport.CertifiedHTTPTransport. Every response is checked before it is
// returned:
//
//   - The certificate is verified against the root key and the clock
//   - The witness tree must match the canister's certified data
//   - The request and response hashes must be in the tree
//
// A response that fails verification is never returned; the error unwraps
// to a *verifier.VerificationError.
//
// # Uncertified Responses
//
//	client.SetOptional(true)
//
// With optional verification, responses without an IC-Certificate header
// are returned unverified. Invalid certifications are still rejected.
package client
