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

import "bytes"

// LookupStatus is the outcome of a path lookup.
type LookupStatus int

const (
	// Found means the path exists and ends at the returned value.
	Found LookupStatus = iota
	// Absent means the tree proves the path does not exist.
	Absent
	// Unknown means the path runs into a pruned subtree, so neither presence
	// nor absence can be proven.
	Unknown
	// Error means the path is structurally impossible in this tree, for
	// example a leaf reached before the path is exhausted.
	Error
)

func (s LookupStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case Unknown:
		return "unknown"
	default:
		return "error"
	}
}

// LookupResult is returned by LookupPath.
type LookupResult struct {
	Status LookupStatus
	Value  []byte
}

// SubtreeResult is returned by LookupSubtree.
type SubtreeResult struct {
	Status  LookupStatus
	Subtree Node
}

type labelOutcome int

const (
	labelFound labelOutcome = iota
	labelAbsent
	labelUnknown
	labelLess
	labelGreater
	labelInvalid
)

// findLabel searches the labeled children directly below n (through any
// number of forks) for label.
func findLabel(n Node, label []byte) (labelOutcome, Node) {
	switch t := n.(type) {
	case Labeled:
		switch c := bytes.Compare(label, t.Label); {
		case c < 0:
			return labelLess, nil
		case c > 0:
			return labelGreater, nil
		default:
			return labelFound, t.Child
		}

	case Fork:
		outcome, sub := findLabel(t.Left, label)
		switch outcome {
		case labelGreater:
			right, rsub := findLabel(t.Right, label)
			if right == labelLess {
				return labelAbsent, nil
			}
			return right, rsub
		case labelUnknown:
			right, rsub := findLabel(t.Right, label)
			if right == labelLess {
				return labelUnknown, nil
			}
			return right, rsub
		}
		return outcome, sub

	case Pruned:
		return labelUnknown, nil

	case Leaf:
		return labelInvalid, nil
	}

	return labelAbsent, nil
}

// LookupPath follows path from n and reports the leaf value found there.
func LookupPath(n Node, path [][]byte) LookupResult {
	if len(path) == 0 {
		switch t := n.(type) {
		case Leaf:
			return LookupResult{Status: Found, Value: t}
		case Pruned:
			return LookupResult{Status: Unknown}
		case Labeled, Fork:
			return LookupResult{Status: Error}
		}
		return LookupResult{Status: Absent}
	}

	outcome, sub := findLabel(n, path[0])
	switch outcome {
	case labelFound:
		return LookupPath(sub, path[1:])
	case labelUnknown:
		return LookupResult{Status: Unknown}
	case labelInvalid:
		return LookupResult{Status: Error}
	}
	return LookupResult{Status: Absent}
}

// LookupSubtree follows path from n and returns whatever subtree is found
// there.
func LookupSubtree(n Node, path [][]byte) SubtreeResult {
	if len(path) == 0 {
		return SubtreeResult{Status: Found, Subtree: n}
	}

	outcome, sub := findLabel(n, path[0])
	switch outcome {
	case labelFound:
		return LookupSubtree(sub, path[1:])
	case labelUnknown:
		return SubtreeResult{Status: Unknown}
	case labelInvalid:
		return SubtreeResult{Status: Error}
	}
	return SubtreeResult{Status: Absent}
}

// Lookup is LookupPath with string labels.
func Lookup(n Node, labels ...string) LookupResult {
	return LookupPath(n, Path(labels...))
}
