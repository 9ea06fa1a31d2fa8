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

package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/sage-x-project/sage-http-certification/pkg/transport"
	"github.com/sage-x-project/sage-http-certification/pkg/verifier"
)

// CertifiedClient is an HTTP client that verifies the certification of every response
type CertifiedClient struct {
	verifier   verifier.ResponseVerifier
	transport  *transport.CertifiedHTTPTransport
	httpClient *http.Client
}

// NewCertifiedClient creates a new verifying client
// If httpClient is nil, a client with a default transport is used. The
// given client is not modified.
func NewCertifiedClient(v verifier.ResponseVerifier, httpClient *http.Client) *CertifiedClient {
	wrapped := transport.WrapClient(httpClient, v)

	return &CertifiedClient{
		verifier:   v,
		transport:  wrapped.Transport.(*transport.CertifiedHTTPTransport),
		httpClient: wrapped,
	}
}

// NewCertifiedClientForCanister creates a client verifying responses of one canister
func NewCertifiedClientForCanister(canisterID, rootKey []byte, opts ...verifier.Option) (*CertifiedClient, error) {
	v, err := verifier.NewVerifier(canisterID, rootKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create verifier: %w", err)
	}
	return NewCertifiedClient(v, nil), nil
}

// SetOptional sets whether uncertified responses are accepted
func (c *CertifiedClient) SetOptional(optional bool) {
	c.transport.SetOptional(optional)
}

// Do executes an HTTP request and verifies the response
func (c *CertifiedClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	// Check context first
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	return resp, nil
}

// Post sends a POST request and verifies the response
func (c *CertifiedClient) Post(ctx context.Context, url, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.Do(ctx, req)
}

// Get sends a GET request and verifies the response
func (c *CertifiedClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	return c.Do(ctx, req)
}

// GetVerifier returns the response verifier
func (c *CertifiedClient) GetVerifier() verifier.ResponseVerifier {
	return c.verifier
}
