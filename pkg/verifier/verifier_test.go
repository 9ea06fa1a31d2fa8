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

package verifier_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-http-certification/internal/certtesting"
	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/certificate"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
	"github.com/sage-x-project/sage-http-certification/pkg/verifier"
)

var (
	rootKey   = certtesting.NewKeyPair("root")
	subnetKey = certtesting.NewKeyPair("subnet")
	now       = certtesting.DefaultTime
)

func newVerifier(t *testing.T, opts ...verifier.Option) *verifier.Verifier {
	t.Helper()
	opts = append([]verifier.Option{verifier.WithClock(func() time.Time { return now })}, opts...)
	v, err := verifier.NewVerifier(certtesting.CanisterID, rootKey.DERPublicKey(), opts...)
	require.NoError(t, err)
	return v
}

func buildCertificate(t *testing.T, b *certtesting.CertificateBuilder) []byte {
	t.Helper()
	raw, err := b.Build()
	require.NoError(t, err)
	return raw
}

// server is a minimal certifying server: every call to certify inserts one
// entry and returns the response with fresh certificate headers.
type server struct {
	tree    *httpcert.CertificationTree
	mutate  func(*certtesting.CertificateBuilder)
	entries []httpcert.TreeEntry
}

func newServer() *server {
	return &server{tree: httpcert.NewCertificationTree()}
}

func (s *server) certify(t *testing.T, path httpcert.CertificationPath, expr cel.Expression, req *httpcert.Request, resp *httpcert.Response) *httpcert.Response {
	t.Helper()
	resp.Headers = append(resp.Headers, httpcert.HeaderField{
		Name:  protocol.CertificateExpressionHeaderName,
		Value: expr.String(),
	})

	certification, err := httpcert.Certify(expr, req, resp)
	require.NoError(t, err)
	entry := httpcert.NewTreeEntry(path, certification)
	s.tree.Insert(entry)
	s.entries = append(s.entries, entry)

	return s.attach(t, entry, req, resp)
}

func (s *server) attach(t *testing.T, entry httpcert.TreeEntry, req *httpcert.Request, resp *httpcert.Response) *httpcert.Response {
	t.Helper()
	root := s.tree.RootHash()
	b := certtesting.NewCertificateBuilder(rootKey, certtesting.CanisterID, root[:])
	if s.mutate != nil {
		s.mutate(b)
	}
	witness, err := s.tree.Witness(entry, req.URL)
	require.NoError(t, err)
	require.NoError(t, httpcert.AddCertificateHeader(resp, buildCertificate(t, b), witness, entry.Path))
	return resp
}

func getRequest(url string) *httpcert.Request {
	return &httpcert.Request{Method: "GET", URL: url}
}

func textResponse(body string) *httpcert.Response {
	return &httpcert.Response{
		StatusCode: 200,
		Headers: []httpcert.HeaderField{
			{Name: "Content-Type", Value: "text/plain"},
			{Name: "Cache-Control", Value: "no-cache"},
		},
		Body: []byte(body),
	}
}

var responseOnly = cel.ResponseOnlyExpression(cel.CertifiedResponseHeaders("Content-Type"))

func verify(t *testing.T, v *verifier.Verifier, req *httpcert.Request, resp *httpcert.Response) (*verifier.VerificationResult, error) {
	t.Helper()
	return v.VerifyRequestResponsePair(context.Background(), req, resp)
}

func requireCode(t *testing.T, want verifier.ErrorCode, result *verifier.VerificationResult, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, verifier.CodeOf(err), "error: %v", err)
	require.NotNil(t, result)
	assert.False(t, result.Passed)
	assert.Nil(t, result.Response)
}

// Test that a response with no certificate header is rejected
func TestUncertifiedResponse(t *testing.T) {
	v := newVerifier(t)
	result, err := verify(t, v, getRequest("/"), textResponse("5"))
	requireCode(t, verifier.CodeMissingCertification, result, err)
	assert.Equal(t, uint8(1), result.Version)
}

// Test that a certified response-only body verifies
func TestVerifyResponseOnly(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	result, err := verify(t, newVerifier(t), req, resp)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, uint8(2), result.Version)
	require.NotNil(t, result.Response)
	assert.Equal(t, 200, result.Response.StatusCode)
	assert.Equal(t, []byte("5"), result.Response.Body)
	assert.Equal(t, []httpcert.HeaderField{
		{Name: "content-type", Value: "text/plain"},
		{Name: "ic-certificateexpression", Value: responseOnly.String()},
	}, result.Response.Headers)
}

// Test that request and response certification verifies
func TestVerifyFullCertification(t *testing.T) {
	expr := cel.FullExpression(
		cel.RequestCertification{Headers: []string{"Accept"}, QueryParameters: []string{"page"}},
		cel.ResponseHeaderExclusions("Cache-Control"),
	)
	s := newServer()
	req := &httpcert.Request{
		Method:  "GET",
		URL:     "/items?page=2&debug=1",
		Headers: []httpcert.HeaderField{{Name: "Accept", Value: "application/json"}},
	}
	resp := s.certify(t, httpcert.ExactPath("/items"), expr, req, textResponse(`[1,2]`))

	v := newVerifier(t)
	result, err := verify(t, v, req, resp)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	require.NotNil(t, result.Response)
	for _, h := range result.Response.Headers {
		assert.NotEqual(t, "cache-control", h.Name)
	}

	// uncertified query parameters and headers may change
	other := *req
	other.URL = "/items?page=2&debug=0"
	other.Headers = append(other.Headers, httpcert.HeaderField{Name: "User-Agent", Value: "test"})
	_, err = verify(t, v, &other, resp)
	assert.NoError(t, err)

	// certified ones may not
	other.URL = "/items?page=3&debug=1"
	result, err = verify(t, v, &other, resp)
	requireCode(t, verifier.CodeRequestHashMismatch, result, err)

	other.URL = req.URL
	other.Method = "POST"
	result, err = verify(t, v, &other, resp)
	requireCode(t, verifier.CodeRequestHashMismatch, result, err)
}

// Test that tampering with a certified response is detected
func TestVerifyTamperedResponse(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))
	v := newVerifier(t)

	tampered := *resp
	tampered.Body = []byte("6")
	result, err := verify(t, v, req, &tampered)
	requireCode(t, verifier.CodeResponseHashMismatch, result, err)

	tampered = *resp
	tampered.StatusCode = 404
	result, err = verify(t, v, req, &tampered)
	requireCode(t, verifier.CodeResponseHashMismatch, result, err)

	tampered = *resp
	tampered.Headers = append([]httpcert.HeaderField(nil), resp.Headers...)
	tampered.Headers[0].Value = "text/html"
	result, err = verify(t, v, req, &tampered)
	requireCode(t, verifier.CodeResponseHashMismatch, result, err)

	// uncertified headers are not part of the hash
	tampered.Headers[0].Value = "text/plain"
	tampered.Headers[1].Value = "max-age=60"
	_, err = verify(t, v, req, &tampered)
	assert.NoError(t, err)
}

// Test that a changed expression header no longer matches the tree
func TestVerifyExpressionMismatch(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	other := cel.ResponseOnlyExpression(cel.CertifiedResponseHeaders("Content-Type", "Cache-Control"))
	for i, h := range resp.Headers {
		if h.Name == protocol.CertificateExpressionHeaderName {
			resp.Headers[i].Value = other.String()
		}
	}

	result, err := verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeExpressionHashMismatch, result, err)
}

// Test that a flipped signature bit fails certificate verification
func TestVerifyCorruptSignature(t *testing.T) {
	s := newServer()
	s.mutate = func(b *certtesting.CertificateBuilder) { b.WithCorruptSignature() }
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	result, err := verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeCertificateVerificationFailed, result, err)
	assert.ErrorIs(t, err, certificate.ErrVerificationFailed)
	assert.ErrorIs(t, err, &verifier.VerificationError{Code: verifier.CodeCertificateVerificationFailed})
}

// Test the certificate time window at its boundaries
func TestVerifyCertificateTime(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))
	offset := 5 * time.Minute

	cases := []struct {
		name string
		now  time.Time
		code verifier.ErrorCode
	}{
		{"exact", now, verifier.CodeUnknown},
		{"now plus offset", now.Add(offset), verifier.CodeUnknown},
		{"now minus offset", now.Add(-offset), verifier.CodeUnknown},
		{"certificate too old", now.Add(offset + time.Nanosecond), verifier.CodeCertificateTimeTooFarInPast},
		{"certificate too new", now.Add(-offset - time.Nanosecond), verifier.CodeCertificateTimeTooFarInFuture},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := verifier.NewVerifier(certtesting.CanisterID, rootKey.PublicKey(),
				verifier.WithClock(func() time.Time { return tc.now }),
				verifier.WithMaxCertificateTimeOffset(offset))
			require.NoError(t, err)

			result, err := verify(t, v, req, resp)
			if tc.code == verifier.CodeUnknown {
				require.NoError(t, err)
				assert.True(t, result.Passed)
				return
			}
			requireCode(t, tc.code, result, err)
		})
	}
}

// Test that a certificate issued for different data fails the tree check
func TestVerifyInvalidTree(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	// a second certification changes the root hash, the first witness no
	// longer matches the newly certified data
	s.certify(t, httpcert.ExactPath("/other"), responseOnly, getRequest("/other"), textResponse("x"))
	root := s.tree.RootHash()
	cert := buildCertificate(t, certtesting.NewCertificateBuilder(rootKey, certtesting.CanisterID, root[:]))

	value, _ := httpcert.Header(resp.Headers, protocol.CertificateHeaderName)
	h, err := protocol.ParseCertificateHeader(value)
	require.NoError(t, err)
	h.Certificate = cert
	replaceHeader(resp, protocol.CertificateHeaderName, h.String())

	result, err := verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeInvalidTree, result, err)
}

// Test that a witness with the certified leaf pruned away cannot pass
func TestVerifyPrunedWitness(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	root := s.tree.RootHash()
	pruned := hashtree.NewLabeled(httpcert.ExprLabel, hashtree.Pruned(hashtree.Digest(mustWitness(t, s))))
	require.Equal(t, root, hashtree.Digest(pruned))
	tree, err := hashtree.Encode(pruned)
	require.NoError(t, err)

	value, _ := httpcert.Header(resp.Headers, protocol.CertificateHeaderName)
	h, err := protocol.ParseCertificateHeader(value)
	require.NoError(t, err)
	h.Tree = tree
	replaceHeader(resp, protocol.CertificateHeaderName, h.String())

	result, err := verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeExpressionHashMismatch, result, err)
}

func mustWitness(t *testing.T, s *server) hashtree.Node {
	t.Helper()
	w, err := s.tree.Witness(s.entries[0], "/count")
	require.NoError(t, err)
	return w.(hashtree.Labeled).Child
}

func replaceHeader(resp *httpcert.Response, name, value string) {
	for i, h := range resp.Headers {
		if h.Name == name {
			resp.Headers[i].Value = value
		}
	}
}

// Test that skip certification passes without a response
func TestVerifySkipCertification(t *testing.T) {
	data := httpcert.SkipCertificationCertifiedData()
	cert := buildCertificate(t, certtesting.NewCertificateBuilder(rootKey, certtesting.CanisterID, data[:]))

	for _, url := range []string{"/", "/anything", "/nested/path/", "/a/b/c?x=1"} {
		t.Run(url, func(t *testing.T) {
			resp := textResponse("uncertified")
			require.NoError(t, httpcert.AddSkipCertificationHeader(resp, cert))

			result, err := verify(t, newVerifier(t), getRequest(url), resp)
			require.NoError(t, err)
			assert.True(t, result.Passed)
			assert.Equal(t, uint8(2), result.Version)
			assert.Nil(t, result.Response)
		})
	}
}

// Test that wildcard certifications are checked for more specific paths
func TestVerifyWildcard(t *testing.T) {
	s := newServer()
	fallback := textResponse("index")
	fallbackReq := getRequest("/app/deep/link")
	fallback = s.certify(t, httpcert.WildcardPath("/app"), responseOnly, fallbackReq, fallback)
	v := newVerifier(t)

	result, err := verify(t, v, fallbackReq, fallback)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	// an exact certification for the path appears later
	exactReq := getRequest("/app/about")
	exact := s.certify(t, httpcert.ExactPath("/app/about"), responseOnly, exactReq, textResponse("about"))
	_, err = verify(t, v, exactReq, exact)
	require.NoError(t, err)

	// serving the wildcard response for the exact path is rejected
	wrong := textResponse("index")
	wrong.Headers = append(wrong.Headers, httpcert.HeaderField{Name: protocol.CertificateExpressionHeaderName, Value: responseOnly.String()})
	s.attach(t, s.entries[0], exactReq, wrong)
	result, err = verify(t, v, exactReq, wrong)
	requireCode(t, verifier.CodeInvalidExpressionPath, result, err)

	// a more specific wildcard wins over a shorter one
	nestedReq := getRequest("/app/docs/intro")
	nested := s.certify(t, httpcert.WildcardPath("/app/docs"), responseOnly, nestedReq, textResponse("docs"))
	_, err = verify(t, v, nestedReq, nested)
	require.NoError(t, err)

	outer := textResponse("index")
	outer.Headers = append(outer.Headers, httpcert.HeaderField{Name: protocol.CertificateExpressionHeaderName, Value: responseOnly.String()})
	s.attach(t, s.entries[0], nestedReq, outer)
	result, err = verify(t, v, nestedReq, outer)
	requireCode(t, verifier.CodeInvalidExpressionPath, result, err)
}

// Test that an expression path for another URL is rejected
func TestVerifyExpressionPathForOtherURL(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	result, err := verify(t, newVerifier(t), getRequest("/elsewhere"), resp)
	requireCode(t, verifier.CodeInvalidExpressionPath, result, err)
}

// Test the distinct errors for missing version 2 fields
func TestVerifyV2MissingFields(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))
	value, _ := httpcert.Header(resp.Headers, protocol.CertificateHeaderName)
	full, err := protocol.ParseCertificateHeader(value)
	require.NoError(t, err)

	cases := []struct {
		name     string
		edit     func(h *protocol.CertificateHeader)
		dropExpr bool
		code     verifier.ErrorCode
	}{
		{"tree", func(h *protocol.CertificateHeader) { h.Tree = nil }, false, verifier.CodeMissingTree},
		{"certificate", func(h *protocol.CertificateHeader) { h.Certificate = nil }, false, verifier.CodeMissingCertificate},
		{"expression path", func(h *protocol.CertificateHeader) { h.ExprPath = nil }, false, verifier.CodeMissingExpressionPath},
		{"expression header", func(h *protocol.CertificateHeader) {}, true, verifier.CodeMissingCertificateExpressionHeader},
		{"everything", func(h *protocol.CertificateHeader) { h.Tree, h.Certificate = nil, nil }, false, verifier.CodeMissingCertification},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := *full
			tc.edit(&h)
			r := &httpcert.Response{StatusCode: resp.StatusCode, Body: resp.Body}
			for _, f := range resp.Headers {
				switch {
				case f.Name == protocol.CertificateHeaderName:
					f.Value = h.String()
				case f.Name == protocol.CertificateExpressionHeaderName && tc.dropExpr:
					continue
				}
				r.Headers = append(r.Headers, f)
			}

			result, err := verify(t, newVerifier(t), req, r)
			requireCode(t, tc.code, result, err)
			assert.Equal(t, uint8(2), result.Version)
		})
	}
}

// Test the minimum version floor is checked before anything else
func TestVerifyVersionFloor(t *testing.T) {
	v := newVerifier(t, verifier.WithMinRequestedVersion(2))

	// an uncertified response counts as version 1
	result, err := verify(t, v, getRequest("/"), textResponse("5"))
	requireCode(t, verifier.CodeVerificationVersionMismatch, result, err)

	resp := textResponse("5")
	resp.Headers = append(resp.Headers, httpcert.HeaderField{
		Name:  protocol.CertificateHeaderName,
		Value: "certificate=:AQID:, tree=:AQID:",
	})
	result, err = verify(t, v, getRequest("/"), resp)
	requireCode(t, verifier.CodeVerificationVersionMismatch, result, err)
	assert.Equal(t, uint8(1), result.Version)
}

func TestVerifyUnsupportedVersion(t *testing.T) {
	resp := textResponse("5")
	resp.Headers = append(resp.Headers, httpcert.HeaderField{
		Name:  "ic-certificate",
		Value: "certificate=:AQID:, tree=:AQID:, version=3",
	})
	result, err := verify(t, newVerifier(t), getRequest("/"), resp)
	requireCode(t, verifier.CodeUnsupportedVerificationVersion, result, err)
	assert.Equal(t, uint8(3), result.Version)
}

func TestVerifyMalformedHeader(t *testing.T) {
	resp := textResponse("5")
	resp.Headers = append(resp.Headers, httpcert.HeaderField{
		Name:  protocol.CertificateHeaderName,
		Value: "certificate=:!!!:, version=2",
	})
	result, err := verify(t, newVerifier(t), getRequest("/"), resp)
	requireCode(t, verifier.CodeMalformedCertificateHeader, result, err)
}

func TestVerifyMalformedCertificate(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))
	value, _ := httpcert.Header(resp.Headers, protocol.CertificateHeaderName)
	h, err := protocol.ParseCertificateHeader(value)
	require.NoError(t, err)

	h.Certificate = []byte{0xa0}
	replaceHeader(resp, protocol.CertificateHeaderName, h.String())
	result, err := verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeMalformedCertificate, result, err)
}

func TestVerifyMalformedExpression(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))
	replaceHeader(resp, protocol.CertificateExpressionHeaderName, "default_certification(")

	result, err := verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeMalformedCelExpression, result, err)
	assert.ErrorIs(t, err, cel.ErrMalformedExpression)
}

// Test a certificate delegated to a subnet
func TestVerifyDelegatedCertificate(t *testing.T) {
	s := newServer()
	s.mutate = func(b *certtesting.CertificateBuilder) {
		b.WithDelegation(certtesting.SubnetID, subnetKey, certtesting.RangeAround(certtesting.CanisterID))
	}
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	result, err := verify(t, newVerifier(t), req, resp)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	s.mutate = func(b *certtesting.CertificateBuilder) {
		b.WithDelegation(certtesting.SubnetID, subnetKey, certtesting.RangeAround(certtesting.CanisterID)).WithNestedDelegation()
	}
	resp = s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))
	result, err = verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeNestedDelegationNotAllowed, result, err)

	s.mutate = func(b *certtesting.CertificateBuilder) {
		b.WithDelegation(certtesting.SubnetID, subnetKey, certtesting.RangeAround([]byte{9, 9, 9}))
	}
	resp = s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))
	result, err = verify(t, newVerifier(t), req, resp)
	requireCode(t, verifier.CodeCanisterIDOutOfRange, result, err)
}

func v1Response(t *testing.T, path string, body, certifiedBody []byte, encoding string) *httpcert.Response {
	t.Helper()
	sum := sha256.Sum256(certifiedBody)
	assets := hashtree.NewNestedTree()
	assets.Insert(hashtree.Path("http_assets", path), sum[:])
	tree := assets.AsHashTree()
	root := hashtree.Digest(tree)

	cert := buildCertificate(t, certtesting.NewCertificateBuilder(rootKey, certtesting.CanisterID, root[:]))
	encoded, err := hashtree.Encode(tree)
	require.NoError(t, err)

	resp := &httpcert.Response{StatusCode: 200, Body: body}
	if encoding != "" {
		resp.Headers = append(resp.Headers, httpcert.HeaderField{Name: "Content-Encoding", Value: encoding})
	}
	resp.Headers = append(resp.Headers, httpcert.HeaderField{
		Name:  protocol.CertificateHeaderName,
		Value: protocol.NewV1Header(cert, encoded).String(),
	})
	return resp
}

// Test version 1 body certification
func TestVerifyV1(t *testing.T) {
	v := newVerifier(t)

	resp := v1Response(t, "/app.js", []byte("console.log(1)"), []byte("console.log(1)"), "")
	result, err := verify(t, v, getRequest("/app.js?canisterId=x"), resp)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, uint8(1), result.Version)
	require.NotNil(t, result.Response)
	assert.Equal(t, 0, result.Response.StatusCode)
	assert.Empty(t, result.Response.Headers)

	result, err = verify(t, v, getRequest("/other.js"), resp)
	requireCode(t, verifier.CodeInvalidResponseBody, result, err)

	resp.Body = []byte("console.log(2)")
	result, err = verify(t, v, getRequest("/app.js"), resp)
	requireCode(t, verifier.CodeInvalidResponseBody, result, err)
}

func TestVerifyV1IndexFallback(t *testing.T) {
	resp := v1Response(t, "/index.html", []byte("<html>"), []byte("<html>"), "")
	result, err := verify(t, newVerifier(t), getRequest("/some/route"), resp)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestVerifyV1Encoded(t *testing.T) {
	plain := []byte("compressed content, compressed content")
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	v := newVerifier(t)

	// the certified hash is over the decoded body
	resp := v1Response(t, "/data", buf.Bytes(), plain, "gzip")
	_, err = verify(t, v, getRequest("/data"), resp)
	require.NoError(t, err)

	// or over the body as sent
	resp = v1Response(t, "/data", buf.Bytes(), buf.Bytes(), "gzip")
	_, err = verify(t, v, getRequest("/data"), resp)
	require.NoError(t, err)

	resp = v1Response(t, "/data", []byte("not gzip"), plain, "gzip")
	result, err := verify(t, v, getRequest("/data"), resp)
	requireCode(t, verifier.CodeInvalidResponseBody, result, err)
}

func TestVerifyV1MissingFields(t *testing.T) {
	resp := textResponse("5")
	resp.Headers = append(resp.Headers, httpcert.HeaderField{Name: protocol.CertificateHeaderName, Value: "tree=:AQID:"})
	result, err := verify(t, newVerifier(t), getRequest("/"), resp)
	requireCode(t, verifier.CodeMissingCertificate, result, err)

	resp.Headers[len(resp.Headers)-1].Value = "certificate=:AQID:"
	result, err = verify(t, newVerifier(t), getRequest("/"), resp)
	requireCode(t, verifier.CodeMissingTree, result, err)
}

func TestVerifyCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newVerifier(t).VerifyRequestResponsePair(ctx, getRequest("/"), textResponse("5"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestVerifyNilMessage(t *testing.T) {
	_, err := newVerifier(t).VerifyRequestResponsePair(context.Background(), nil, textResponse("5"))
	assert.ErrorIs(t, err, verifier.ErrNilMessage)
}

func TestPackageLevelVerify(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	result, err := verifier.VerifyRequestResponsePair(req, resp, certtesting.CanisterID, rootKey.DERPublicKey(), now, time.Minute, 2)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	_, err = verifier.VerifyRequestResponsePair(req, resp, certtesting.CanisterID, []byte{1, 2, 3}, now, time.Minute, 1)
	assert.Error(t, err)
}

func TestVerifyUsesSignatureCache(t *testing.T) {
	s := newServer()
	req := getRequest("/count")
	resp := s.certify(t, httpcert.ExactPath("/count"), responseOnly, req, textResponse("5"))

	cache := certificate.NewMemoryCache(8)
	v := newVerifier(t, verifier.WithSignatureCache(cache))
	for i := 0; i < 3; i++ {
		_, err := verify(t, v, req, resp)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "InvalidTree", verifier.CodeInvalidTree.String())
	assert.Equal(t, "Unknown", verifier.ErrorCode(999).String())
	assert.Equal(t, verifier.CodeUnknown, verifier.CodeOf(errors.New("plain")))

	err := &verifier.VerificationError{Code: verifier.CodeInvalidTree}
	assert.Equal(t, "InvalidTree", err.Error())
}
