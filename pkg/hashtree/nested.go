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
	"bytes"
	"crypto/sha256"
	"sort"
)

// NestedTree is a mutable labeled tree that can be rendered as a hash tree.
// Every node is either a leaf holding a value or an inner node with labeled
// children. Children are kept in label order and rendered as a balanced
// binary tree of forks, so the hash tree shape depends only on the set of
// labels and never on insertion order.
//
// A NestedTree is not safe for concurrent mutation.
type NestedTree struct {
	leaf     bool
	value    []byte
	children map[string]*NestedTree
}

// NewNestedTree returns an empty tree.
func NewNestedTree() *NestedTree {
	return &NestedTree{}
}

// Insert places value at path, creating inner nodes as needed. A leaf found
// along the way is replaced by an inner node.
func (t *NestedTree) Insert(path [][]byte, value []byte) {
	if len(path) == 0 {
		t.leaf = true
		t.value = append([]byte(nil), value...)
		t.children = nil
		return
	}

	if t.leaf {
		t.leaf = false
		t.value = nil
	}
	if t.children == nil {
		t.children = make(map[string]*NestedTree)
	}

	key := string(path[0])
	child, ok := t.children[key]
	if !ok {
		child = &NestedTree{}
		t.children[key] = child
	}
	child.Insert(path[1:], value)
}

// Delete removes the node at path along with any inner nodes left empty by
// the removal. Deleting a missing path is a no-op.
func (t *NestedTree) Delete(path [][]byte) {
	if len(path) == 0 || t.leaf {
		return
	}

	key := string(path[0])
	child, ok := t.children[key]
	if !ok {
		return
	}

	if len(path) == 1 {
		delete(t.children, key)
		return
	}

	child.Delete(path[1:])
	if !child.leaf && len(child.children) == 0 {
		delete(t.children, key)
	}
}

// Get returns the leaf value stored at path.
func (t *NestedTree) Get(path [][]byte) ([]byte, bool) {
	node := t.find(path)
	if node == nil || !node.leaf {
		return nil, false
	}
	return node.value, true
}

// Contains reports whether any node, leaf or inner, exists at path.
func (t *NestedTree) Contains(path [][]byte) bool {
	return t.find(path) != nil
}

func (t *NestedTree) find(path [][]byte) *NestedTree {
	node := t
	for _, label := range path {
		if node.leaf {
			return nil
		}
		next, ok := node.children[string(label)]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}

// IsEmpty reports whether the tree has no leaves.
func (t *NestedTree) IsEmpty() bool {
	return !t.leaf && len(t.children) == 0
}

// AsHashTree renders the full tree without pruning.
func (t *NestedTree) AsHashTree() Node {
	if t.leaf {
		return Leaf(append([]byte(nil), t.value...))
	}

	labels := t.sortedLabels()
	nodes := make([]Node, len(labels))
	for i, l := range labels {
		nodes[i] = Labeled{Label: []byte(l), Child: t.children[l].AsHashTree()}
	}
	return balance(nodes)
}

// RootHash is the digest of AsHashTree.
func (t *NestedTree) RootHash() [sha256.Size]byte {
	return Digest(t.AsHashTree())
}

// Witness returns a pruned hash tree that proves the value at path, or its
// absence, and has the same digest as the full tree. When path ends at an
// inner node the whole subtree below it is revealed.
func (t *NestedTree) Witness(path [][]byte) Node {
	if t.leaf || len(path) == 0 {
		return t.AsHashTree()
	}

	labels := t.sortedLabels()
	full := make([]Node, len(labels))
	for i, l := range labels {
		full[i] = Labeled{Label: []byte(l), Child: t.children[l].AsHashTree()}
	}
	revealed := make([]Node, len(labels))

	target := path[0]
	idx := sort.Search(len(labels), func(i int) bool {
		return bytes.Compare([]byte(labels[i]), target) >= 0
	})

	if idx < len(labels) && labels[idx] == string(target) {
		revealed[idx] = Labeled{Label: []byte(labels[idx]), Child: t.children[labels[idx]].Witness(path[1:])}
	} else {
		// Absence is proven by the labels on either side of the gap.
		if idx > 0 {
			revealed[idx-1] = neighbour(labels[idx-1], full[idx-1])
		}
		if idx < len(labels) {
			revealed[idx] = neighbour(labels[idx], full[idx])
		}
	}

	return balanceWitness(full, revealed)
}

func neighbour(label string, full Node) Node {
	return Labeled{Label: []byte(label), Child: Pruned(Digest(full.(Labeled).Child))}
}

func (t *NestedTree) sortedLabels() []string {
	labels := make([]string, 0, len(t.children))
	for l := range t.children {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func balance(nodes []Node) Node {
	switch len(nodes) {
	case 0:
		return Empty{}
	case 1:
		return nodes[0]
	}
	mid := len(nodes) / 2
	return Fork{Left: balance(nodes[:mid]), Right: balance(nodes[mid:])}
}

// balanceWitness builds the same shape as balance, replacing every range
// without a revealed node by a single Pruned digest.
func balanceWitness(full, revealed []Node) Node {
	if len(full) == 0 {
		return Empty{}
	}

	kept := false
	for _, n := range revealed {
		if n != nil {
			kept = true
			break
		}
	}
	if !kept {
		return Pruned(Digest(balance(full)))
	}

	if len(full) == 1 {
		return revealed[0]
	}
	mid := len(full) / 2
	return Fork{
		Left:  balanceWitness(full[:mid], revealed[:mid]),
		Right: balanceWitness(full[mid:], revealed[mid:]),
	}
}
