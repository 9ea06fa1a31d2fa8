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

import "strings"

const (
	// ExprLabel is the root label of the certification tree.
	ExprLabel = "http_expr"

	// ExactMarker terminates the path of an exact match.
	ExactMarker = "<$>"

	// WildcardMarker terminates the path of a prefix match.
	WildcardMarker = "<*>"
)

// CertificationPath is a URL path certified either exactly or as a prefix
// for every path below it.
type CertificationPath struct {
	segments []string
	wildcard bool
}

// ExactPath certifies exactly path.
func ExactPath(path string) CertificationPath {
	return CertificationPath{segments: SplitPath(path)}
}

// WildcardPath certifies path and everything below it.
func WildcardPath(path string) CertificationPath {
	return CertificationPath{segments: SplitPath(path), wildcard: true}
}

// SplitPath splits a URL path into segments. Empty segments are dropped and
// a path that ends in a slash gets a trailing "" segment.
func SplitPath(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if strings.HasSuffix(path, "/") {
		segments = append(segments, "")
	}
	return segments
}

// IsWildcard reports whether p is a prefix match.
func (p CertificationPath) IsWildcard() bool {
	return p.wildcard
}

// Segments returns the path segments without a marker.
func (p CertificationPath) Segments() []string {
	return append([]string(nil), p.segments...)
}

// TreePath returns the segments followed by the exact or wildcard marker.
func (p CertificationPath) TreePath() []string {
	marker := ExactMarker
	if p.wildcard {
		marker = WildcardMarker
	}
	out := make([]string, 0, len(p.segments)+1)
	out = append(out, p.segments...)
	return append(out, marker)
}

// ExprPath is the TreePath below the http_expr root, the value of the
// expr_path header field.
func (p CertificationPath) ExprPath() []string {
	return append([]string{ExprLabel}, p.TreePath()...)
}

func (p CertificationPath) String() string {
	s := "/" + strings.Join(p.segments, "/")
	if p.wildcard {
		return strings.TrimSuffix(s, "/") + "/*"
	}
	return s
}
