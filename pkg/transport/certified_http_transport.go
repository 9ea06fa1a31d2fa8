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
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/verifier"
	"github.com/sage-x-project/sage-http-certification/pkg/version"
)

// UserAgent is sent when the caller sets no User-Agent, so that the header
// that is hashed is the one that goes out.
var UserAgent = "sage-http-certification/" + version.Version

// CertifiedHTTPTransport implements http.RoundTripper and verifies the
// certification of every response before handing it to the caller.
//
// A verified response is rebuilt from what was certified:
//   - version 2 responses carry only the certified status and headers
//   - version 1 responses keep their status and headers, only the body is
//     certified
//   - responses certified with no_certification are returned unchanged
type CertifiedHTTPTransport struct {
	verifier verifier.ResponseVerifier
	base     http.RoundTripper
	optional bool
}

// NewCertifiedHTTPTransport creates a new verifying transport.
//
// Parameters:
//   - v: The verifier checking each request/response pair
//   - base: Optional underlying transport (nil for a clone of
//     http.DefaultTransport without transparent compression)
func NewCertifiedHTTPTransport(v verifier.ResponseVerifier, base http.RoundTripper) *CertifiedHTTPTransport {
	if base == nil {
		base = newBaseTransport()
	}
	return &CertifiedHTTPTransport{
		verifier: v,
		base:     base,
	}
}

// newBaseTransport disables transparent gzip, which would otherwise strip
// certified headers and change the body.
func newBaseTransport() http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.DisableCompression = true
	return t
}

// SetOptional sets whether certification is optional.
// If true, responses without an IC-Certificate header are returned
// unverified. Responses with an invalid certification are always rejected.
func (t *CertifiedHTTPTransport) SetOptional(optional bool) {
	t.optional = optional
}

// RoundTrip implements http.RoundTripper
func (t *CertifiedHTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var reqBody []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		reqBody, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	req = req.Clone(req.Context())
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if _, ok := req.Header["User-Agent"]; !ok {
		req.Header.Set("User-Agent", UserAgent)
	}
	req.ContentLength = int64(len(reqBody))
	req.TransferEncoding = nil
	if len(reqBody) == 0 {
		req.Body = http.NoBody
		req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
	} else {
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(reqBody)), nil
		}
	}
	sent := sentRequest(req, reqBody)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	result, err := t.verifier.VerifyRequestResponsePair(req.Context(),
		sent,
		httpcert.FromHTTPResponse(resp.StatusCode, resp.Header, respBody),
	)
	if err != nil {
		if t.optional && verifier.CodeOf(err) == verifier.CodeMissingCertification {
			return resp, nil
		}
		return nil, fmt.Errorf("response verification failed for %s %s: %w", req.Method, req.URL.Redacted(), err)
	}

	if result.Response != nil && result.Version >= 2 {
		resp.StatusCode = result.Response.StatusCode
		resp.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		resp.Header = make(http.Header)
		httpcert.SetHTTPHeaders(resp.Header, result.Response.Headers)
	}
	return resp, nil
}

// sentRequest describes req with the headers net/http writes on the wire
// rather than those in req.Header. Content-Length, Transfer-Encoding and
// Trailer entries in the map are never sent; an empty User-Agent suppresses
// the header.
func sentRequest(req *http.Request, body []byte) *httpcert.Request {
	r := httpcert.FromHTTPRequest(req, body)
	if r.Method == "" {
		r.Method = http.MethodGet
	}

	headers := r.Headers[:0:0]
	for _, h := range r.Headers {
		switch {
		case strings.EqualFold(h.Name, "Content-Length"),
			strings.EqualFold(h.Name, "Transfer-Encoding"),
			strings.EqualFold(h.Name, "Trailer"):
			continue
		case strings.EqualFold(h.Name, "User-Agent") && h.Value == "":
			continue
		}
		headers = append(headers, h)
	}
	if n, ok := sentContentLength(req); ok {
		headers = append(headers, httpcert.HeaderField{Name: "Content-Length", Value: strconv.FormatInt(n, 10)})
	}
	r.Headers = headers
	return r
}

// sentContentLength reports the Content-Length net/http sends for a request
// with a known length.
func sentContentLength(req *http.Request) (int64, bool) {
	if req.ContentLength > 0 {
		return req.ContentLength, true
	}
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return 0, true
	}
	return 0, false
}

var _ http.RoundTripper = (*CertifiedHTTPTransport)(nil)
