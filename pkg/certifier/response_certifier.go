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

package certifier

import (
	"context"

	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
)

// ResponseCertifier certifies responses before they are sent
type ResponseCertifier interface {
	// CertifyResponse certifies resp as the answer to req and attaches the
	// IC-CertificateExpression and IC-Certificate headers
	CertifyResponse(ctx context.Context, req *httpcert.Request, resp *httpcert.Response) error
}

// CertificateSource issues certificates over a server's certified data.
// On the network this is the certificate read back from replicated state;
// in tests and demos it is a locally signed certificate.
type CertificateSource interface {
	// Certificate returns a CBOR encoded certificate whose tree holds
	// certifiedData for the server's canister
	Certificate(certifiedData []byte) ([]byte, error)
}

// Policy selects the certification expression for responses under a path
type Policy struct {
	// Path is the exact path or wildcard prefix the policy applies to
	Path httpcert.CertificationPath

	// Expression is the certification applied to matching responses
	Expression cel.Expression
}
