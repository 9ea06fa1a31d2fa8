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
	"fmt"

	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

// Certification is what gets inserted into the certification tree for one
// path: the expression hash and, depending on the expression, the request
// and response hashes.
type Certification struct {
	Kind         cel.Kind
	ExprHash     [sha256.Size]byte
	RequestHash  [sha256.Size]byte
	ResponseHash [sha256.Size]byte
}

// SkipCertification certifies that responses for a path are not verified.
func SkipCertification() Certification {
	return Certification{Kind: cel.Skip, ExprHash: cel.SkipExpression().Hash()}
}

// ResponseOnlyCertification certifies resp under expr. The response must
// carry expr in its IC-CertificateExpression header.
func ResponseOnlyCertification(expr cel.Expression, resp *Response) (Certification, error) {
	if err := checkExpressionHeader(expr, resp); err != nil {
		return Certification{}, err
	}
	return Certification{
		Kind:         cel.ResponseOnly,
		ExprHash:     expr.Hash(),
		ResponseHash: ResponseHash(resp, expr.Response),
	}, nil
}

// FullCertification certifies req and resp under expr.
func FullCertification(expr cel.Expression, req *Request, resp *Response) (Certification, error) {
	if req == nil {
		return Certification{}, ErrMissingRequest
	}
	if err := checkExpressionHeader(expr, resp); err != nil {
		return Certification{}, err
	}
	reqHash, err := RequestHash(req, expr.Request)
	if err != nil {
		return Certification{}, err
	}
	return Certification{
		Kind:         cel.Full,
		ExprHash:     expr.Hash(),
		RequestHash:  reqHash,
		ResponseHash: ResponseHash(resp, expr.Response),
	}, nil
}

// Certify dispatches on the kind of expr. req may be nil unless expr
// certifies the request.
func Certify(expr cel.Expression, req *Request, resp *Response) (Certification, error) {
	switch expr.Kind {
	case cel.Skip:
		return SkipCertification(), nil
	case cel.ResponseOnly:
		return ResponseOnlyCertification(expr, resp)
	default:
		return FullCertification(expr, req, resp)
	}
}

func checkExpressionHeader(expr cel.Expression, resp *Response) error {
	values := HeaderValues(resp.Headers, protocol.CertificateExpressionHeaderName)
	switch {
	case len(values) == 0:
		return ErrMissingExpressionHeader
	case len(values) > 1:
		return ErrMultipleExpressionHeaders
	case values[0] != expr.String():
		return fmt.Errorf("%w: got %q", ErrExpressionHeaderMismatch, values[0])
	}
	return nil
}

// labels returns the tree labels below the path marker.
func (c Certification) labels() [][]byte {
	switch c.Kind {
	case cel.Skip:
		return [][]byte{c.ExprHash[:]}
	case cel.ResponseOnly:
		return [][]byte{c.ExprHash[:], {}, c.ResponseHash[:]}
	default:
		return [][]byte{c.ExprHash[:], c.RequestHash[:], c.ResponseHash[:]}
	}
}
