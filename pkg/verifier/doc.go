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

// Package verifier checks that HTTP responses were certified by the
// replicated canister that served them.
//
// A certified response carries an IC-Certificate header with a certificate
// signed by the network (or by a subnet on its behalf), a witness tree cut
// from the canister's certification tree and, from version 2, the path of
// the certification inside that tree. The verifier checks the certificate,
// checks that it certifies the witness and then looks up the hashes of the
// request and response in the witness.
//
// # Verification
//
//	v, err := verifier.NewVerifier(canisterID, rootKey,
//	    verifier.WithMaxCertificateTimeOffset(5*time.Minute),
//	    verifier.WithMinRequestedVersion(2),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := v.VerifyRequestResponsePair(ctx, req, resp)
//	if err != nil {
//	    log.Printf("rejected: %s", verifier.CodeOf(err))
//	    return
//	}
//	// result.Response holds only the certified status, headers and body
//
// # Versions
//
// Version 1 certifies the body alone, as a leaf under http_assets. Version 2
// certifies the status code, a chosen set of headers, the body and
// optionally parts of the request, as described by the expression in the
// IC-CertificateExpression header. A response without a version field is
// version 1.
//
// Responses for which the canister opted out of certification pass with a
// nil Response. Responses without any IC-Certificate header fail with
// CodeMissingCertification; callers that want to accept them must do so
// explicitly.
//
// # Errors
//
// Every failure is a *VerificationError whose Code says what went wrong.
// Underlying errors from the certificate, hashtree and cel packages stay in
// the chain for errors.Is.
//
// # Signature cache
//
// Certificate signature checks dominate verification cost. WithSignatureCache
// memoizes successful checks in a certificate.SignatureCache, either the
// in-process certificate.MemoryCache or a certificate.RedisSignatureCache
// shared between replicas.
package verifier
