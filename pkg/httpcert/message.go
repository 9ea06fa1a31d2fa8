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

package httpcert

import (
	"fmt"
	"net/url"
	"strings"
)

// HeaderField is a single header line. Header names compare
// case-insensitively; order and duplicates are preserved.
type HeaderField struct {
	Name  string
	Value string
}

// Request is the part of an HTTP request that can be certified.
type Request struct {
	Method  string
	URL     string
	Headers []HeaderField
	Body    []byte
}

// Response is the part of an HTTP response that can be certified.
type Response struct {
	StatusCode int
	Headers    []HeaderField
	Body       []byte
}

// Path returns the decoded URL path of the request.
func (r *Request) Path() (string, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	return u.Path, nil
}

// Query returns the raw query string and whether the URL has one.
func (r *Request) Query() (string, bool, error) {
	u, err := url.Parse(r.URL)
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	return u.RawQuery, u.ForceQuery || u.RawQuery != "", nil
}

// Header returns the first value of the named header.
func Header(headers []HeaderField, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// HeaderValues returns every value of the named header in order.
func HeaderValues(headers []HeaderField, name string) []string {
	var out []string
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			out = append(out, h.Value)
		}
	}
	return out
}

func containsFold(list []string, name string) bool {
	for _, l := range list {
		if strings.EqualFold(l, name) {
			return true
		}
	}
	return false
}
