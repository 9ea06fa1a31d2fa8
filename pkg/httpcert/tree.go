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
	"crypto/sha256"
	"fmt"
	"net/url"
	"sync"

	"github.com/sage-x-project/sage-http-certification/pkg/hashtree"
)

// TreeEntry pairs a certification with the path it applies to.
type TreeEntry struct {
	Path          CertificationPath
	Certification Certification
}

// NewTreeEntry creates an entry.
func NewTreeEntry(path CertificationPath, certification Certification) TreeEntry {
	return TreeEntry{Path: path, Certification: certification}
}

func (e TreeEntry) labels() [][]byte {
	return append(stringLabels(e.Path.TreePath()), e.Certification.labels()...)
}

func stringLabels(path []string) [][]byte {
	return hashtree.Path(path...)
}

// CertificationTree holds every certified path of a server. Its root hash is
// the data the server certifies; witnesses for individual responses are cut
// from it. It is safe for concurrent use.
type CertificationTree struct {
	mu   sync.RWMutex
	tree *hashtree.NestedTree
}

// NewCertificationTree returns an empty tree.
func NewCertificationTree() *CertificationTree {
	return &CertificationTree{tree: hashtree.NewNestedTree()}
}

// Insert adds entry. Inserting the same entry twice is a no-op.
func (t *CertificationTree) Insert(entry TreeEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tree.Insert(entry.labels(), []byte{})
}

// Delete removes entry.
func (t *CertificationTree) Delete(entry TreeEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tree.Delete(entry.labels())
}

// DeletePath removes every certification stored for path.
func (t *CertificationTree) DeletePath(path CertificationPath) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tree.Delete(stringLabels(path.TreePath()))
}

// Contains reports whether entry is in the tree.
func (t *CertificationTree) Contains(entry TreeEntry) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.tree.Get(entry.labels())
	return ok
}

// RootHash is the value to certify.
func (t *CertificationTree) RootHash() [sha256.Size]byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return hashtree.LabeledHash([]byte(ExprLabel), t.tree.RootHash())
}

// Witness returns the tree a client needs to verify that entry answers
// requestURL. For a wildcard entry the witness also proves that no exact
// entry and no more specific wildcard exists for the request path.
func (t *CertificationTree) Witness(entry TreeEntry, requestURL string) (hashtree.Node, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	w := t.tree.Witness(entry.labels())
	if !entry.Path.IsWildcard() {
		return hashtree.NewLabeled(ExprLabel, w), nil
	}

	u, err := url.Parse(requestURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	request := SplitPath(u.Path)
	responding := entry.Path.segments
	if !IsWildcardPrefix(responding, request) {
		return nil, fmt.Errorf("%w: %s does not cover %s", ErrWildcardPathNotValid, entry.Path, u.Path)
	}

	witnesses := []hashtree.Node{w, t.tree.Witness(stringLabels(ExactPath(u.Path).TreePath()))}
	for _, p := range MoreSpecificWildcards(request, responding) {
		witnesses = append(witnesses, t.tree.Witness(stringLabels(p)))
	}
	merged, err := hashtree.MergeAll(witnesses...)
	if err != nil {
		return nil, err
	}
	return hashtree.NewLabeled(ExprLabel, merged), nil
}

// IsWildcardPrefix reports whether a wildcard at responding may answer a
// request for path. A trailing "" in responding (a wildcard ending in a
// slash) matches any further segment.
func IsWildcardPrefix(responding, path []string) bool {
	if len(responding) > len(path) {
		return false
	}
	for i, s := range responding {
		if s != path[i] {
			return i == len(responding)-1 && s == ""
		}
	}
	return true
}

// MoreSpecificWildcards lists the wildcard paths between request and the
// responding wildcard, most specific first. Each one must be proven absent
// for the responding wildcard to be the right one.
func MoreSpecificWildcards(request, responding []string) [][]string {
	p := stripAffixes(request)
	r := stripAffixes(responding)
	if !IsWildcardPrefix(r, p) {
		r = nil
	}

	var out [][]string
	for len(p) > 0 && (len(p) > len(r) || !sameLast(p, r)) {
		candidate := make([]string, 0, len(p)+1)
		candidate = append(candidate, p...)
		out = append(out, append(candidate, WildcardMarker))

		if p[len(p)-1] == "" {
			p = p[:len(p)-1]
		} else {
			p = append(p[:len(p)-1:len(p)-1], "")
		}
	}
	return out
}

func sameLast(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return a[len(a)-1] == b[len(b)-1]
}

// stripAffixes removes a leading http_expr label, a trailing marker and a
// leading empty segment.
func stripAffixes(path []string) []string {
	out := append([]string(nil), path...)
	if len(out) > 0 && out[0] == ExprLabel {
		out = out[1:]
	}
	if n := len(out); n > 0 && (out[n-1] == ExactMarker || out[n-1] == WildcardMarker) {
		out = out[:n-1]
	}
	if len(out) > 1 && out[0] == "" {
		out = out[1:]
	}
	return out
}
