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

package verifier

import (
	"bytes"
	"crypto/sha256"

	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

const (
	assetsLabel   = "http_assets"
	indexFallback = "/index.html"
)

// verifyV1 checks a body certified in the http_assets tree. Only the body
// is certified under version 1.
func (v *Verifier) verifyV1(h *protocol.CertificateHeader, req *httpcert.Request, resp *httpcert.Response) (*VerifiedResponse, error) {
	switch {
	case len(h.Certificate) == 0 && len(h.Tree) == 0:
		return nil, newError(CodeMissingCertification, nil)
	case len(h.Tree) == 0:
		return nil, newError(CodeMissingTree, nil)
	case len(h.Certificate) == 0:
		return nil, newError(CodeMissingCertificate, nil)
	}

	tree, err := v.checkCertificate(h)
	if err != nil {
		return nil, err
	}

	path, err := req.Path()
	if err != nil {
		return nil, err
	}

	encoding, encoded := httpcert.Header(resp.Headers, "Content-Encoding")
	decoded, err := decodeBody(resp.Body, encoding)
	if err != nil {
		return nil, newError(CodeInvalidResponseBody, err)
	}

	valid := validateBody(tree, path, sha256.Sum256(decoded))
	if !valid && encoded {
		valid = validateBody(tree, path, sha256.Sum256(resp.Body))
	}
	if !valid {
		return nil, newError(CodeInvalidResponseBody, nil)
	}

	return &VerifiedResponse{Body: resp.Body}, nil
}

// validateBody compares bodyHash with the leaf certified for path, falling
// back to the index page.
func validateBody(tree hashtree.Node, path string, bodyHash [sha256.Size]byte) bool {
	res := hashtree.Lookup(tree, assetsLabel, path)
	if res.Status != hashtree.Found {
		res = hashtree.Lookup(tree, assetsLabel, indexFallback)
		if res.Status != hashtree.Found {
			return false
		}
	}
	return bytes.Equal(res.Value, bodyHash[:])
}
