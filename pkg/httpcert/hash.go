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
	"crypto/sha256"
	"strings"

	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
	"github.com/sage-x-project/sage-http-certification/pkg/rihash"
)

const (
	methodPseudoHeader = ":ic-cert-method"
	queryPseudoHeader  = ":ic-cert-query"
	statusPseudoHeader = ":ic-cert-status"
)

// RequestHash hashes the parts of req selected by policy: the listed
// headers, the method, the listed query parameters and the body.
func RequestHash(req *Request, policy *cel.RequestCertification) ([sha256.Size]byte, error) {
	var headers, params []string
	if policy != nil {
		headers = policy.Headers
		params = policy.QueryParameters
	}

	var pairs []rihash.Pair
	for _, h := range req.Headers {
		if containsFold(headers, h.Name) {
			pairs = append(pairs, rihash.Pair{Key: strings.ToLower(h.Name), Value: rihash.String(h.Value)})
		}
	}
	pairs = append(pairs, rihash.Pair{Key: methodPseudoHeader, Value: rihash.String(req.Method)})

	query, hasQuery, err := req.Query()
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	if hasQuery {
		pairs = append(pairs, rihash.Pair{Key: queryPseudoHeader, Value: rihash.String(filterQuery(query, params))})
	}

	return combine(rihash.HashMap(pairs), sha256.Sum256(req.Body)), nil
}

// filterQuery keeps the parameters whose name is listed, in their original
// order and encoding.
func filterQuery(query string, params []string) string {
	var kept []string
	for _, part := range strings.Split(query, "&") {
		name, _, _ := strings.Cut(part, "=")
		if containsFold(params, name) {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, "&")
}

// FilterResponseHeaders returns the headers of resp that are certified under
// policy, with lowercased names. The IC-CertificateExpression header is
// always certified and the IC-Certificate header never is.
func FilterResponseHeaders(resp *Response, policy *cel.ResponseCertification) []HeaderField {
	var mode cel.HeaderMode
	var list []string
	if policy != nil {
		mode = policy.Mode
		list = policy.Headers
	}

	var out []HeaderField
	for _, h := range resp.Headers {
		switch {
		case strings.EqualFold(h.Name, protocol.CertificateHeaderName):
			continue
		case strings.EqualFold(h.Name, protocol.CertificateExpressionHeaderName):
		case mode == cel.HeaderExclusions && containsFold(list, h.Name):
			continue
		case mode == cel.CertifiedHeaders && !containsFold(list, h.Name):
			continue
		}
		out = append(out, HeaderField{Name: strings.ToLower(h.Name), Value: h.Value})
	}
	return out
}

// ResponseHeadersHash hashes already filtered headers together with the
// status code.
func ResponseHeadersHash(headers []HeaderField, statusCode int) [sha256.Size]byte {
	pairs := make([]rihash.Pair, 0, len(headers)+1)
	for _, h := range headers {
		pairs = append(pairs, rihash.Pair{Key: h.Name, Value: rihash.String(h.Value)})
	}
	pairs = append(pairs, rihash.Pair{Key: statusPseudoHeader, Value: rihash.Number(uint64(statusCode))})
	return rihash.HashMap(pairs)
}

// ResponseHash hashes the certified headers, the status code and the body of
// resp.
func ResponseHash(resp *Response, policy *cel.ResponseCertification) [sha256.Size]byte {
	headers := ResponseHeadersHash(FilterResponseHeaders(resp, policy), resp.StatusCode)
	return combine(headers, sha256.Sum256(resp.Body))
}

func combine(headers, body [sha256.Size]byte) [sha256.Size]byte {
	buf := make([]byte, 0, 2*sha256.Size)
	buf = append(buf, headers[:]...)
	buf = append(buf, body[:]...)
	return sha256.Sum256(buf)
}
