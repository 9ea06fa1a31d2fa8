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
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/protocol"
)

// ErrNoPolicy is returned when no policy covers the request path.
var ErrNoPolicy = errors.New("no certification policy for path")

// DefaultResponseCertifier keeps a certification tree with one entry per
// policy path. Every certified response replaces the previous entry for its
// path and is sent with a fresh certificate over the new root hash.
type DefaultResponseCertifier struct {
	mu       sync.Mutex
	source   CertificateSource
	tree     *httpcert.CertificationTree
	policies []Policy
	entries  map[string]httpcert.TreeEntry
}

// NewDefaultResponseCertifier creates a certifier that gets its
// certificates from source.
func NewDefaultResponseCertifier(source CertificateSource, policies ...Policy) *DefaultResponseCertifier {
	return &DefaultResponseCertifier{
		source:   source,
		tree:     httpcert.NewCertificationTree(),
		policies: append([]Policy(nil), policies...),
		entries:  make(map[string]httpcert.TreeEntry),
	}
}

// AddPolicy registers p. A policy for the same path replaces the old one.
func (c *DefaultResponseCertifier) AddPolicy(p Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.policies {
		if samePath(existing.Path, p.Path) {
			c.policies[i] = p
			return
		}
	}
	c.policies = append(c.policies, p)
}

// Tree returns the certification tree.
func (c *DefaultResponseCertifier) Tree() *httpcert.CertificationTree {
	return c.tree
}

// CertifyResponse implements ResponseCertifier.
func (c *DefaultResponseCertifier) CertifyResponse(ctx context.Context, req *httpcert.Request, resp *httpcert.Response) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	if req == nil || resp == nil {
		return fmt.Errorf("request and response cannot be nil")
	}
	if c.source == nil {
		return fmt.Errorf("certificate source cannot be nil")
	}

	path, err := req.Path()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	policy, ok := c.match(path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoPolicy, path)
	}

	resp.Headers = withoutHeaders(resp.Headers, protocol.CertificateHeaderName, protocol.CertificateExpressionHeaderName)
	resp.Headers = append(resp.Headers, httpcert.HeaderField{
		Name:  protocol.CertificateExpressionHeaderName,
		Value: policy.Expression.String(),
	})

	certification, err := httpcert.Certify(policy.Expression, req, resp)
	if err != nil {
		return fmt.Errorf("failed to certify %s: %w", path, err)
	}
	entry := httpcert.NewTreeEntry(policy.Path, certification)

	key := policy.Path.String()
	if prev, ok := c.entries[key]; ok {
		c.tree.Delete(prev)
	}
	c.tree.Insert(entry)
	c.entries[key] = entry

	witness, err := c.tree.Witness(entry, req.URL)
	if err != nil {
		return fmt.Errorf("failed to build witness: %w", err)
	}
	root := c.tree.RootHash()
	cert, err := c.source.Certificate(root[:])
	if err != nil {
		return fmt.Errorf("failed to get certificate: %w", err)
	}

	return httpcert.AddCertificateHeader(resp, cert, witness, policy.Path)
}

// match returns the exact policy for path or else the longest wildcard
// covering it.
func (c *DefaultResponseCertifier) match(path string) (Policy, bool) {
	segments := httpcert.SplitPath(path)

	var best Policy
	bestLen := -1
	for _, p := range c.policies {
		s := p.Path.Segments()
		if !p.Path.IsWildcard() {
			if slices.Equal(s, segments) {
				return p, true
			}
			continue
		}
		if n := specificity(s); httpcert.IsWildcardPrefix(s, segments) && n > bestLen {
			best, bestLen = p, n
		}
	}
	return best, bestLen >= 0
}

// specificity orders wildcards so that a trailing slash ranks above the same
// path without one and below any longer path.
func specificity(segments []string) int {
	n := 2 * len(segments)
	if len(segments) > 0 && segments[len(segments)-1] == "" {
		n--
	}
	return n
}

func samePath(a, b httpcert.CertificationPath) bool {
	return a.IsWildcard() == b.IsWildcard() && slices.Equal(a.Segments(), b.Segments())
}

func withoutHeaders(headers []httpcert.HeaderField, names ...string) []httpcert.HeaderField {
	out := headers[:0:0]
	for _, h := range headers {
		drop := false
		for _, n := range names {
			if strings.EqualFold(h.Name, n) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, h)
		}
	}
	return out
}

var _ ResponseCertifier = (*DefaultResponseCertifier)(nil)
