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

// Package protocol models the headers that carry response certification.
//
// A certified response has an IC-Certificate header holding:
//
//   - certificate - the CBOR encoded, signed certificate
//   - tree - the CBOR encoded witness of the certified data
//   - expr_path - the expression path (version 2 only)
//   - version - the verification version, 1 when absent
//
// Version 2 responses also carry an IC-CertificateExpression header with the
// certification expression.
//
// # Parsing
//
//	h, err := protocol.ParseCertificateHeader(resp.Header.Get(protocol.CertificateHeaderName))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := h.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
// Binary fields are base64, optionally wrapped in colons. Padding is optional.
// Unknown fields are ignored and repeated fields keep their first value.
//
// # Rendering
//
//	h, err := protocol.NewV2Header(cert, tree, []string{"http_expr", "index.html", "<$>"})
//	resp.Header.Set(protocol.CertificateHeaderName, h.String())
package protocol
