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

// Package certifier is the producing side of HTTP certification: it decides
// how each response is certified, records the certification in the server's
// tree and attaches the headers a client needs to verify it.
//
// # Policies
//
// A Policy binds a certification expression to an exact path or a wildcard
// prefix. The exact policy for a request path wins; otherwise the longest
// wildcard covering the path is used.
//
//	c := certifier.NewDefaultResponseCertifier(source,
//	    certifier.Policy{
//	        Path:       httpcert.ExactPath("/api/status"),
//	        Expression: cel.ResponseOnlyExpression(cel.CertifiedResponseHeaders("Content-Type")),
//	    },
//	    certifier.Policy{
//	        Path:       httpcert.WildcardPath("/"),
//	        Expression: cel.SkipExpression(),
//	    },
//	)
//
//	err := c.CertifyResponse(ctx, req, resp)
//
// CertifyResponse sets IC-CertificateExpression, hashes the response (and the
// request when the expression certifies it), updates the tree and adds an
// IC-Certificate header carrying the certificate, the witness and the
// expression path.
//
// # Certificates
//
// The certificate comes from a CertificateSource. It must certify the tree's
// current root hash, so the certifier asks for a new one after every update.
package certifier
