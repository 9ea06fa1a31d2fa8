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
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

var responseOnly = cel.ResponseOnlyExpression(cel.CertifiedResponseHeaders("Content-Type"))

func certifiedResponse(expr cel.Expression) *Response {
	return &Response{
		StatusCode: 200,
		Headers: []HeaderField{
			{Name: "Content-Type", Value: "text/plain"},
			{Name: "IC-CertificateExpression", Value: expr.String()},
			{Name: "IC-Certificate", Value: "certificate=:AQID:"},
			{Name: "Date", Value: "Mon, 01 Jan 2024 00:00:00 GMT"},
		},
		Body: []byte("hello"),
	}
}

func hexOf(h [32]byte) string { return hex.EncodeToString(h[:]) }

func TestResponseHash(t *testing.T) {
	resp := certifiedResponse(responseOnly)
	got := ResponseHash(resp, responseOnly.Response)
	assert.Equal(t, "8dba157c642014f8063b5155e47c436bac2763c35e618969fa8b742b0a5ec430", hexOf(got))

	// reordering headers does not change the hash
	resp.Headers[0], resp.Headers[3] = resp.Headers[3], resp.Headers[0]
	assert.Equal(t, got, ResponseHash(resp, responseOnly.Response))

	// uncertified headers do not matter, certified ones do
	resp.Headers[0].Value = "Tue, 02 Jan 2024 00:00:00 GMT"
	assert.Equal(t, got, ResponseHash(resp, responseOnly.Response))
	resp.Headers[3].Value = "text/html"
	assert.NotEqual(t, got, ResponseHash(resp, responseOnly.Response))
}

func TestResponseHashStatusAndBody(t *testing.T) {
	resp := certifiedResponse(responseOnly)
	base := ResponseHash(resp, responseOnly.Response)

	resp.StatusCode = 404
	assert.NotEqual(t, base, ResponseHash(resp, responseOnly.Response))

	resp.StatusCode = 200
	resp.Body = []byte("hellO")
	assert.NotEqual(t, base, ResponseHash(resp, responseOnly.Response))
}

func TestFilterResponseHeaders(t *testing.T) {
	resp := certifiedResponse(responseOnly)

	got := FilterResponseHeaders(resp, responseOnly.Response)
	assert.Equal(t, []HeaderField{
		{Name: "content-type", Value: "text/plain"},
		{Name: "ic-certificateexpression", Value: responseOnly.String()},
	}, got)

	exclusions := cel.ResponseHeaderExclusions("date")
	got = FilterResponseHeaders(resp, &exclusions)
	assert.Equal(t, []HeaderField{
		{Name: "content-type", Value: "text/plain"},
		{Name: "ic-certificateexpression", Value: responseOnly.String()},
	}, got)

	none := cel.ResponseHeaderExclusions()
	got = FilterResponseHeaders(resp, &none)
	assert.Len(t, got, 3)
}

// Test request hashing covers selected headers, method, query and body
func TestRequestHash(t *testing.T) {
	req := &Request{
		Method: "GET",
		URL:    "/a?x=1&y=2&X=3",
		Headers: []HeaderField{
			{Name: "Accept", Value: "application/json"},
			{Name: "Host", Value: "example.com"},
		},
	}
	policy := &cel.RequestCertification{Headers: []string{"accept"}, QueryParameters: []string{"x"}}

	got, err := RequestHash(req, policy)
	require.NoError(t, err)
	assert.Equal(t, "2e252cc10b4c90f827837d199401db7044c583a5309c0c5d853ce953a148106f", hexOf(got))

	req.Headers[1].Value = "other.example.com"
	again, err := RequestHash(req, policy)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	req.Method = "POST"
	again, err = RequestHash(req, policy)
	require.NoError(t, err)
	assert.NotEqual(t, got, again)
}

func TestRequestHashQueryPresence(t *testing.T) {
	policy := &cel.RequestCertification{}

	noQuery, err := RequestHash(&Request{Method: "GET", URL: "/a"}, policy)
	require.NoError(t, err)
	emptyQuery, err := RequestHash(&Request{Method: "GET", URL: "/a?"}, policy)
	require.NoError(t, err)
	filtered, err := RequestHash(&Request{Method: "GET", URL: "/a?y=1"}, policy)
	require.NoError(t, err)

	assert.NotEqual(t, noQuery, emptyQuery)
	assert.Equal(t, emptyQuery, filtered)

	_, err = RequestHash(&Request{Method: "GET", URL: "%zz"}, policy)
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestCertify(t *testing.T) {
	c, err := Certify(cel.SkipExpression(), nil, &Response{})
	require.NoError(t, err)
	assert.Equal(t, cel.Skip, c.Kind)
	assert.Equal(t, "c31abadbd0b059f9d464fd6df4da9e2dc087ae7d0b40468d337226d413b33723", hexOf(c.ExprHash))

	c, err = Certify(responseOnly, nil, certifiedResponse(responseOnly))
	require.NoError(t, err)
	assert.Equal(t, cel.ResponseOnly, c.Kind)
	assert.Equal(t, "4961cfda340af1a41a033e30ce268e1132b8c6dbc46c8317de6b8c23a345cf1f", hexOf(c.ExprHash))

	full := cel.FullExpression(cel.RequestCertification{Headers: []string{"Accept"}}, cel.CertifiedResponseHeaders())
	_, err = Certify(full, nil, certifiedResponse(full))
	assert.ErrorIs(t, err, ErrMissingRequest)

	c, err = Certify(full, &Request{Method: "GET", URL: "/"}, certifiedResponse(full))
	require.NoError(t, err)
	assert.Equal(t, cel.Full, c.Kind)
}

// Test the expression header must match exactly once
func TestCertifyExpressionHeader(t *testing.T) {
	resp := &Response{StatusCode: 200}
	_, err := ResponseOnlyCertification(responseOnly, resp)
	assert.ErrorIs(t, err, ErrMissingExpressionHeader)

	resp = certifiedResponse(cel.SkipExpression())
	_, err = ResponseOnlyCertification(responseOnly, resp)
	assert.ErrorIs(t, err, ErrExpressionHeaderMismatch)

	resp = certifiedResponse(responseOnly)
	resp.Headers = append(resp.Headers, HeaderField{Name: "ic-certificateexpression", Value: responseOnly.String()})
	_, err = ResponseOnlyCertification(responseOnly, resp)
	assert.ErrorIs(t, err, ErrMultipleExpressionHeaders)
}

func TestCertificationPath(t *testing.T) {
	assert.Equal(t, []string{"assets", "app.js", "<$>"}, ExactPath("/assets/app.js").TreePath())
	assert.Equal(t, []string{"assets", "", "<*>"}, WildcardPath("/assets/").TreePath())
	assert.Equal(t, []string{"", "<$>"}, ExactPath("/").TreePath())
	assert.Equal(t, []string{"<*>"}, WildcardPath("").TreePath())
	assert.Equal(t, []string{"http_expr", "a", "b", "<*>"}, WildcardPath("a//b").ExprPath())
	assert.Equal(t, "/assets/*", WildcardPath("/assets").String())
}

func TestMoreSpecificWildcards(t *testing.T) {
	assert.Equal(t, [][]string{
		{"a", "b", "<*>"},
		{"a", "", "<*>"},
	}, MoreSpecificWildcards([]string{"a", "b"}, []string{"a"}))

	assert.Equal(t, [][]string{
		{"a", "b", "<*>"},
		{"a", "", "<*>"},
		{"a", "<*>"},
		{"", "<*>"},
	}, MoreSpecificWildcards([]string{"a", "b"}, nil))

	assert.Equal(t, [][]string{
		{"a", "b", "<*>"},
	}, MoreSpecificWildcards([]string{"http_expr", "a", "b", "<$>"}, []string{"http_expr", "a", "", "<*>"}))

	assert.Empty(t, MoreSpecificWildcards([]string{"a"}, []string{"a"}))

	// an unrelated responding path is treated as the root
	assert.Len(t, MoreSpecificWildcards([]string{"a"}, []string{"z"}), 2)
}

func TestCertificationTreeInsertDelete(t *testing.T) {
	tree := NewCertificationTree()
	empty := tree.RootHash()

	entry := NewTreeEntry(ExactPath("/index.html"), SkipCertification())
	tree.Insert(entry)
	assert.True(t, tree.Contains(entry))
	assert.NotEqual(t, empty, tree.RootHash())

	tree.Insert(entry)
	tree.Delete(entry)
	assert.False(t, tree.Contains(entry))
	assert.Equal(t, empty, tree.RootHash())

	tree.Insert(entry)
	tree.DeletePath(ExactPath("/index.html"))
	assert.Equal(t, empty, tree.RootHash())
}

// Test an exact witness proves the entry
func TestCertificationTreeExactWitness(t *testing.T) {
	tree := NewCertificationTree()
	cert, err := ResponseOnlyCertification(responseOnly, certifiedResponse(responseOnly))
	require.NoError(t, err)
	entry := NewTreeEntry(ExactPath("/index.html"), cert)
	tree.Insert(entry)
	tree.Insert(NewTreeEntry(ExactPath("/other.html"), SkipCertification()))

	w, err := tree.Witness(entry, "/index.html")
	require.NoError(t, err)
	assert.Equal(t, tree.RootHash(), hashtree.Digest(w))

	labels := append([][]byte{[]byte("http_expr")}, entry.labels()...)
	assert.Equal(t, hashtree.Found, hashtree.LookupPath(w, labels).Status)
}

// Test a wildcard witness proves the absence of better matches
func TestCertificationTreeWildcardWitness(t *testing.T) {
	tree := NewCertificationTree()
	entry := NewTreeEntry(WildcardPath("/app"), SkipCertification())
	tree.Insert(entry)
	tree.Insert(NewTreeEntry(ExactPath("/app/other"), SkipCertification()))
	tree.Insert(NewTreeEntry(WildcardPath("/zzz"), SkipCertification()))

	w, err := tree.Witness(entry, "/app/page?x=1")
	require.NoError(t, err)
	assert.Equal(t, tree.RootHash(), hashtree.Digest(w))

	assert.Equal(t, hashtree.Absent, hashtree.LookupSubtree(w, hashtree.Path("http_expr", "app", "page", "<$>")).Status)
	assert.Equal(t, hashtree.Absent, hashtree.LookupSubtree(w, hashtree.Path("http_expr", "app", "page", "<*>")).Status)
	assert.Equal(t, hashtree.Found, hashtree.LookupSubtree(w, hashtree.Path("http_expr", "app", "<*>")).Status)

	_, err = tree.Witness(entry, "/other")
	assert.ErrorIs(t, err, ErrWildcardPathNotValid)
}

// Test the skip header matches the reference encoding
func TestAddSkipCertificationHeader(t *testing.T) {
	resp := &Response{StatusCode: 200}
	require.NoError(t, AddSkipCertificationHeader(resp, []byte{1, 2, 3}))

	v, ok := Header(resp.Headers, "ic-certificate")
	require.True(t, ok)
	assert.Equal(t, "certificate=:AQID:, tree=:2dn3gwJJaHR0cF9leHBygwJDPCo+gwJYIMMautvQsFn51GT9bfTani3Ah659C0BGjTNyJtQTszcjggNA:, expr_path=:2dn3gmlodHRwX2V4cHJjPCo+:, version=2", v)

	expr, ok := Header(resp.Headers, "IC-CertificateExpression")
	require.True(t, ok)
	assert.Equal(t, "default_certification(ValidationArgs{no_certification:Empty{}})", expr)

	tree := NewCertificationTree()
	tree.Insert(NewTreeEntry(WildcardPath(""), SkipCertification()))
	assert.Equal(t, SkipCertificationCertifiedData(), tree.RootHash())

	raw, err := base64.StdEncoding.DecodeString("2dn3gwJJaHR0cF9leHBygwJDPCo+gwJYIMMautvQsFn51GT9bfTani3Ah659C0BGjTNyJtQTszcjggNA")
	require.NoError(t, err)
	decoded, err := hashtree.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, SkipCertificationCertifiedData(), hashtree.Digest(decoded))
}

func TestAddCertificateHeaderRequiresCertificate(t *testing.T) {
	resp := &Response{StatusCode: 200}
	err := AddCertificateHeader(resp, nil, SkipCertificationTree(), WildcardPath(""))

	var invalid protocol.ErrInvalidCertificateHeader
	require.ErrorAs(t, err, &invalid)
	assert.Empty(t, resp.Headers)

	assert.Error(t, AddSkipCertificationHeader(resp, []byte{}))
	assert.Empty(t, resp.Headers)
}

func BenchmarkResponseHash(b *testing.B) {
	resp := certifiedResponse(responseOnly)
	resp.Body = make([]byte, 64*1024)
	for i := 0; i < b.N; i++ {
		_ = ResponseHash(resp, responseOnly.Response)
	}
}
