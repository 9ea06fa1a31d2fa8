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

package hashtree

import (
	"crypto/sha256"
	"errors"
)

// Node is a node of a hash tree. The set of implementations is closed:
// Empty, Fork, Labeled, Leaf and Pruned.
type Node interface {
	node()
}

// Empty is the empty tree.
type Empty struct{}

// Fork joins two subtrees. Labels in Left sort before labels in Right.
type Fork struct {
	Left  Node
	Right Node
}

// Labeled attaches a label to a subtree.
type Labeled struct {
	Label []byte
	Child Node
}

// Leaf holds a value.
type Leaf []byte

// Pruned stands in for a subtree that was removed from a witness. It carries
// the digest of the removed subtree.
type Pruned [sha256.Size]byte

func (Empty) node()   {}
func (Fork) node()    {}
func (Labeled) node() {}
func (Leaf) node()    {}
func (Pruned) node()  {}

var (
	// ErrMalformedHashTree is returned when a hash tree cannot be decoded.
	ErrMalformedHashTree = errors.New("malformed hash tree")

	// ErrIncompatibleTrees is returned by Merge when two trees disagree.
	ErrIncompatibleTrees = errors.New("incompatible hash trees")
)

// Path converts strings to a label path.
func Path(labels ...string) [][]byte {
	path := make([][]byte, len(labels))
	for i, l := range labels {
		path[i] = []byte(l)
	}
	return path
}

// NewLabeled builds a Labeled node from a string label.
func NewLabeled(label string, child Node) Labeled {
	return Labeled{Label: []byte(label), Child: child}
}
