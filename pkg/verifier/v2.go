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
	"crypto/sha256"
	"slices"

	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

// verifyV2 checks a response certified in the http_expr tree under the
// expression carried in its IC-CertificateExpression header.
func (v *Verifier) verifyV2(h *protocol.CertificateHeader, req *httpcert.Request, resp *httpcert.Response) (*VerifiedResponse, error) {
	exprValue, hasExpr := httpcert.Header(resp.Headers, protocol.CertificateExpressionHeaderName)
	hasPath := len(h.ExprPath) > 0
	hasCert := len(h.Certificate) > 0
	hasTree := len(h.Tree) > 0

	switch {
	case hasPath && hasExpr && hasCert && hasTree:
	case hasPath && hasExpr && hasCert:
		return nil, newError(CodeMissingTree, nil)
	case hasPath && hasExpr && hasTree:
		return nil, newError(CodeMissingCertificate, nil)
	case hasPath && hasCert && hasTree:
		return nil, newError(CodeMissingCertificateExpressionHeader, nil)
	case hasExpr && hasCert && hasTree:
		return nil, newError(CodeMissingExpressionPath, nil)
	default:
		return nil, newError(CodeMissingCertification, nil)
	}

	requestPath, err := req.Path()
	if err != nil {
		return nil, err
	}
	rawPath, err := h.ExpressionPath()
	if err != nil {
		return nil, err
	}
	exprPath, ok := normalizeExprPath(rawPath)
	if !ok {
		return nil, errorf(CodeInvalidExpressionPath, "expression path %q has no marker", rawPath)
	}
	expr, err := cel.Parse(exprValue)
	if err != nil {
		return nil, err
	}
	exprHash := sha256.Sum256([]byte(exprValue))

	tree, err := v.checkCertificate(h)
	if err != nil {
		return nil, err
	}

	if !validateExprPath(exprPath, requestPath, tree) {
		return nil, newError(CodeInvalidExpressionPath, nil)
	}

	if expr.Kind == cel.Skip {
		res := hashtree.LookupSubtree(tree, labels(exprPath, exprHash[:]))
		if res.Status != hashtree.Found {
			return nil, errorf(CodeInvalidExpressionPath, "skip certification not found at %q", exprPath)
		}
		return nil, nil
	}

	var requestHash []byte
	if expr.Kind == cel.Full {
		hash, err := httpcert.RequestHash(req, expr.Request)
		if err != nil {
			return nil, err
		}
		requestHash = hash[:]
	}

	headers := httpcert.FilterResponseHeaders(resp, expr.Response)
	responseHash := httpcert.ResponseHash(resp, expr.Response)

	if err := validateHashes(tree, exprPath, exprHash[:], requestHash, responseHash[:]); err != nil {
		return nil, err
	}

	return &VerifiedResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       resp.Body,
	}, nil
}

// normalizeExprPath returns the expression path with a leading http_expr
// label, which senders may omit. The path must end in a marker.
func normalizeExprPath(path []string) ([]string, bool) {
	if len(path) > 0 && path[0] == httpcert.ExprLabel {
		path = path[1:]
	}
	if len(path) == 0 {
		return nil, false
	}
	switch path[len(path)-1] {
	case httpcert.ExactMarker, httpcert.WildcardMarker:
	default:
		return nil, false
	}
	return append([]string{httpcert.ExprLabel}, path...), true
}

// validateExprPath reports whether exprPath is the most specific
// certification in tree for requestPath. Any path that the witness leaves
// unknown counts as present.
func validateExprPath(exprPath []string, requestPath string, tree hashtree.Node) bool {
	parts := httpcert.SplitPath(requestPath)

	exact := markedPath(parts, httpcert.ExactMarker)
	if slices.Equal(exprPath, exact) {
		return true
	}
	if !absent(tree, exact) {
		return false
	}

	if slices.Equal(exprPath, markedPath(parts, httpcert.WildcardMarker)) {
		return true
	}

	responding := exprPath[1 : len(exprPath)-1]
	if exprPath[len(exprPath)-1] != httpcert.WildcardMarker || !httpcert.IsWildcardPrefix(responding, parts) {
		return false
	}
	for _, candidate := range httpcert.MoreSpecificWildcards(parts, responding) {
		if !absent(tree, append([]string{httpcert.ExprLabel}, candidate...)) {
			return false
		}
	}
	return true
}

// validateHashes looks up the certification under exprPath. requestHash is
// nil when the request is not certified.
func validateHashes(tree hashtree.Node, exprPath []string, exprHash, requestHash, responseHash []byte) error {
	res := hashtree.LookupSubtree(tree, labels(exprPath, exprHash))
	if res.Status != hashtree.Found {
		return errorf(CodeExpressionHashMismatch, "expression hash lookup: %s", res.Status)
	}
	exprTree := res.Subtree

	if requestHash != nil {
		res = hashtree.LookupSubtree(exprTree, [][]byte{requestHash})
		if res.Status != hashtree.Found {
			return errorf(CodeRequestHashMismatch, "request hash lookup: %s", res.Status)
		}
		return checkResponse(res.Subtree, responseHash)
	}

	// Response-only certifications sit below an empty request label. Trees
	// without that label are accepted too.
	if res = hashtree.LookupSubtree(exprTree, [][]byte{{}}); res.Status == hashtree.Found {
		if err := checkResponse(res.Subtree, responseHash); err == nil {
			return nil
		}
	}
	return checkResponse(exprTree, responseHash)
}

func checkResponse(n hashtree.Node, responseHash []byte) error {
	res := hashtree.LookupSubtree(n, [][]byte{responseHash})
	if res.Status != hashtree.Found {
		return errorf(CodeResponseHashMismatch, "response hash lookup: %s", res.Status)
	}
	switch marker := res.Subtree.(type) {
	case hashtree.Empty:
		return nil
	case hashtree.Leaf:
		if len(marker) == 0 {
			return nil
		}
	}
	return errorf(CodeResponseHashMismatch, "response hash does not end the path")
}

func absent(tree hashtree.Node, path []string) bool {
	return hashtree.LookupSubtree(tree, hashtree.Path(path...)).Status == hashtree.Absent
}

func markedPath(parts []string, marker string) []string {
	out := make([]string, 0, len(parts)+2)
	out = append(out, httpcert.ExprLabel)
	out = append(out, parts...)
	return append(out, marker)
}

func labels(path []string, last []byte) [][]byte {
	return append(hashtree.Path(path...), last)
}
