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

package cel

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedExpression is returned for expressions that do not parse or do
// not describe a certification policy.
var ErrMalformedExpression = errors.New("malformed certification expression")

// Kind says which parts of a request/response pair are certified.
type Kind int

const (
	// Skip certifies nothing; the response is served without verification.
	Skip Kind = iota
	// ResponseOnly certifies the response but not the request.
	ResponseOnly
	// Full certifies both the request and the response.
	Full
)

func (k Kind) String() string {
	switch k {
	case Skip:
		return "skip"
	case ResponseOnly:
		return "response-only"
	default:
		return "full"
	}
}

// HeaderMode says how a header list on a response is applied.
type HeaderMode int

const (
	// CertifiedHeaders includes only the listed headers.
	CertifiedHeaders HeaderMode = iota
	// HeaderExclusions includes every header except the listed ones.
	HeaderExclusions
)

// RequestCertification lists the request headers and query parameters that
// are certified.
type RequestCertification struct {
	Headers         []string
	QueryParameters []string
}

// ResponseCertification selects the certified response headers.
type ResponseCertification struct {
	Mode    HeaderMode
	Headers []string
}

// Expression is a parsed certification policy.
type Expression struct {
	Kind     Kind
	Request  *RequestCertification
	Response *ResponseCertification
}

// SkipExpression returns the policy that certifies nothing.
func SkipExpression() Expression {
	return Expression{Kind: Skip}
}

// ResponseOnlyExpression returns a policy certifying only the response.
func ResponseOnlyExpression(resp ResponseCertification) Expression {
	return Expression{Kind: ResponseOnly, Response: &resp}
}

// FullExpression returns a policy certifying the request and the response.
func FullExpression(req RequestCertification, resp ResponseCertification) Expression {
	return Expression{Kind: Full, Request: &req, Response: &resp}
}

// CertifiedResponseHeaders certifies exactly the listed response headers.
func CertifiedResponseHeaders(headers ...string) ResponseCertification {
	return ResponseCertification{Mode: CertifiedHeaders, Headers: headers}
}

// ResponseHeaderExclusions certifies every response header except the
// listed ones.
func ResponseHeaderExclusions(headers ...string) ResponseCertification {
	return ResponseCertification{Mode: HeaderExclusions, Headers: headers}
}

// String renders the expression in the canonical form used for the
// IC-CertificateExpression header.
func (e Expression) String() string {
	if e.Kind == Skip {
		return "default_certification(ValidationArgs{no_certification:Empty{}})"
	}

	var sb strings.Builder
	sb.WriteString("default_certification(ValidationArgs{certification:Certification{")
	if e.Kind == Full && e.Request != nil {
		sb.WriteString("request_certification:RequestCertification{certified_request_headers:")
		writeList(&sb, e.Request.Headers)
		sb.WriteString(",certified_query_parameters:")
		writeList(&sb, e.Request.QueryParameters)
		sb.WriteString("},")
	} else {
		sb.WriteString("no_request_certification:Empty{},")
	}

	sb.WriteString("response_certification:ResponseCertification{")
	var resp ResponseCertification
	if e.Response != nil {
		resp = *e.Response
	}
	if resp.Mode == HeaderExclusions {
		sb.WriteString("response_header_exclusions:ResponseHeaderList{headers:")
	} else {
		sb.WriteString("certified_response_headers:ResponseHeaderList{headers:")
	}
	writeList(&sb, resp.Headers)
	sb.WriteString("}}}})")
	return sb.String()
}

func writeList(sb *strings.Builder, items []string) {
	sb.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		for j := 0; j < len(item); j++ {
			switch c := item[j]; c {
			case '"', '\\':
				sb.WriteByte('\\')
				sb.WriteByte(c)
			case '\n':
				sb.WriteString(`\n`)
			default:
				sb.WriteByte(c)
			}
		}
		sb.WriteByte('"')
	}
	sb.WriteByte(']')
}

// Hash is the SHA-256 of the canonical rendering.
func (e Expression) Hash() [sha256.Size]byte {
	return sha256.Sum256([]byte(e.String()))
}

// Parse parses an expression and maps it onto a certification policy.
func Parse(source string) (*Expression, error) {
	ast, err := ParseAST(source)
	if err != nil {
		return nil, err
	}
	return fromAST(ast)
}

func fromAST(n Node) (*Expression, error) {
	fn, ok := n.(Function)
	if !ok || fn.Name != "default_certification" {
		return nil, malformed("expected default_certification(...)")
	}
	if len(fn.Args) != 1 {
		return nil, malformed("default_certification takes exactly one argument, got %d", len(fn.Args))
	}
	args, err := object(fn.Args[0], "ValidationArgs")
	if err != nil {
		return nil, err
	}
	if len(args.Fields) != 1 {
		return nil, malformed("ValidationArgs must have exactly one field")
	}

	field := args.Fields[0]
	switch field.Key {
	case "no_certification":
		if err := empty(field.Value); err != nil {
			return nil, err
		}
		e := SkipExpression()
		return &e, nil
	case "certification":
		return certification(field.Value)
	}
	return nil, malformed("unknown ValidationArgs field %q", field.Key)
}

func certification(n Node) (*Expression, error) {
	cert, err := object(n, "Certification")
	if err != nil {
		return nil, err
	}
	if err := onlyFields(cert, "no_request_certification", "request_certification", "response_certification"); err != nil {
		return nil, err
	}

	noReq, hasNoReq := cert.Field("no_request_certification")
	req, hasReq := cert.Field("request_certification")
	if hasNoReq == hasReq {
		return nil, malformed("Certification needs exactly one of no_request_certification and request_certification")
	}

	respNode, ok := cert.Field("response_certification")
	if !ok {
		return nil, malformed("Certification is missing response_certification")
	}
	resp, err := responseCertification(respNode)
	if err != nil {
		return nil, err
	}

	if hasNoReq {
		if err := empty(noReq); err != nil {
			return nil, err
		}
		e := ResponseOnlyExpression(*resp)
		return &e, nil
	}

	r, err := requestCertification(req)
	if err != nil {
		return nil, err
	}
	e := FullExpression(*r, *resp)
	return &e, nil
}

func requestCertification(n Node) (*RequestCertification, error) {
	obj, err := object(n, "RequestCertification")
	if err != nil {
		return nil, err
	}
	if err := onlyFields(obj, "certified_request_headers", "certified_query_parameters"); err != nil {
		return nil, err
	}

	req := &RequestCertification{}
	if v, ok := obj.Field("certified_request_headers"); ok {
		if req.Headers, err = stringList(v); err != nil {
			return nil, err
		}
	}
	if v, ok := obj.Field("certified_query_parameters"); ok {
		if req.QueryParameters, err = stringList(v); err != nil {
			return nil, err
		}
	}
	return req, nil
}

func responseCertification(n Node) (*ResponseCertification, error) {
	obj, err := object(n, "ResponseCertification")
	if err != nil {
		return nil, err
	}
	if len(obj.Fields) != 1 {
		return nil, malformed("ResponseCertification must have exactly one field")
	}

	resp := &ResponseCertification{}
	switch obj.Fields[0].Key {
	case "certified_response_headers":
		resp.Mode = CertifiedHeaders
	case "response_header_exclusions":
		resp.Mode = HeaderExclusions
	default:
		return nil, malformed("unknown ResponseCertification field %q", obj.Fields[0].Key)
	}

	list, err := object(obj.Fields[0].Value, "ResponseHeaderList")
	if err != nil {
		return nil, err
	}
	if err := onlyFields(list, "headers"); err != nil {
		return nil, err
	}
	if v, ok := list.Field("headers"); ok {
		if resp.Headers, err = stringList(v); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func object(n Node, name string) (Object, error) {
	obj, ok := n.(Object)
	if !ok || obj.Name != name {
		return Object{}, malformed("expected %s{...}", name)
	}
	return obj, nil
}

func empty(n Node) error {
	obj, err := object(n, "Empty")
	if err != nil {
		return err
	}
	if len(obj.Fields) != 0 {
		return malformed("Empty must not have fields")
	}
	return nil
}

func onlyFields(obj Object, allowed ...string) error {
	for _, f := range obj.Fields {
		known := false
		for _, a := range allowed {
			if f.Key == a {
				known = true
				break
			}
		}
		if !known {
			return malformed("unknown %s field %q", obj.Name, f.Key)
		}
	}
	return nil
}

func stringList(n Node) ([]string, error) {
	arr, ok := n.(Array)
	if !ok {
		return nil, malformed("expected a list of strings")
	}
	out := make([]string, len(arr))
	for i, item := range arr {
		s, ok := item.(String)
		if !ok {
			return nil, malformed("expected a list of strings")
		}
		out[i] = string(s)
	}
	return out, nil
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedExpression, fmt.Sprintf(format, args...))
}
