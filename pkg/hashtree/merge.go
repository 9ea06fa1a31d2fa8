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
	"fmt"
)

// Merge combines two witnesses of the same tree into one that reveals
// everything either of them reveals. A Pruned node merges with any subtree
// of the same digest.
func Merge(a, b Node) (Node, error) {
	if pa, ok := a.(Pruned); ok {
		if Digest(b) != [32]byte(pa) {
			return nil, fmt.Errorf("%w: pruned digest mismatch", ErrIncompatibleTrees)
		}
		return b, nil
	}
	if pb, ok := b.(Pruned); ok {
		if Digest(a) != [32]byte(pb) {
			return nil, fmt.Errorf("%w: pruned digest mismatch", ErrIncompatibleTrees)
		}
		return a, nil
	}

	switch ta := a.(type) {
	case Empty:
		if _, ok := b.(Empty); ok {
			return Empty{}, nil
		}

	case Fork:
		if tb, ok := b.(Fork); ok {
			left, err := Merge(ta.Left, tb.Left)
			if err != nil {
				return nil, err
			}
			right, err := Merge(ta.Right, tb.Right)
			if err != nil {
				return nil, err
			}
			return Fork{Left: left, Right: right}, nil
		}

	case Labeled:
		if tb, ok := b.(Labeled); ok && bytes.Equal(ta.Label, tb.Label) {
			child, err := Merge(ta.Child, tb.Child)
			if err != nil {
				return nil, err
			}
			return Labeled{Label: ta.Label, Child: child}, nil
		}

	case Leaf:
		if tb, ok := b.(Leaf); ok && bytes.Equal(ta, tb) {
			return ta, nil
		}
	}

	return nil, fmt.Errorf("%w: %T and %T", ErrIncompatibleTrees, a, b)
}

// MergeAll folds Merge over nodes.
func MergeAll(nodes ...Node) (Node, error) {
	if len(nodes) == 0 {
		return Empty{}, nil
	}
	out := nodes[0]
	for _, n := range nodes[1:] {
		var err error
		if out, err = Merge(out, n); err != nil {
			return nil, err
		}
	}
	return out, nil
}
