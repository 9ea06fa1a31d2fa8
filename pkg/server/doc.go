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

// Package server provides HTTP middleware that certifies responses.
//
// # Basic Usage
//
//	// Certify every response below /api with its headers and body
//	middleware := server.NewCertificationMiddleware(source, certifier.Policy{
//	    Path:       httpcert.WildcardPath("/api"),
//	    Expression: cel.ResponseOnlyExpression(cel.ResponseHeaderExclusions("Set-Cookie")),
//	})
//
//	http.Handle("/api/", middleware.Wrap(handler))
//
// The source is any certifier.CertificateSource, the component that turns
// the root hash of the certification tree into a signed certificate.
//
// # Optional Certification
//
//	// Send responses for paths without a policy uncertified
//	middleware.SetOptional(true)
//
// # Custom Error Handler
//
//	middleware.SetErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
//	    log.Printf("Certification failed: %v", err)
//	    http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
//	})
//
// # How It Works
//
// The CertificationMiddleware performs the following steps for each request:
//
//  1. Skips OPTIONS requests (CORS preflight)
//  2. Buffers the request body and restores it for the handler
//  3. Records the handler's status, headers and body
//  4. Sets the Date, Content-Type and Content-Length headers the server
//     would otherwise add after certification
//  5. Certifies the response and adds the IC-CertificateExpression and
//     IC-Certificate headers
//  6. Writes the certified response
//
// If certification fails the recorded response is dropped and the error
// handler is called, which returns 500 Internal Server Error by default.
//
// # Buffering
//
// The whole response is held in memory until it is certified, so streaming
// handlers lose their streaming behavior behind this middleware.
//
// # Thread Safety
//
// The middleware is safe for concurrent use. Certification is serialized by
// the certifier.
package server
