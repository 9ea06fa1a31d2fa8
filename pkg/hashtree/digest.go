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

import "crypto/sha256"

func domainSeparator(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

var (
	emptyDomain   = domainSeparator("ic-hashtree-empty")
	forkDomain    = domainSeparator("ic-hashtree-fork")
	labeledDomain = domainSeparator("ic-hashtree-labeled")
	leafDomain    = domainSeparator("ic-hashtree-leaf")
)

// Digest reconstructs the root hash of n bottom-up.
func Digest(n Node) [sha256.Size]byte {
	switch t := n.(type) {
	case Fork:
		return ForkHash(Digest(t.Left), Digest(t.Right))
	case Labeled:
		return LabeledHash(t.Label, Digest(t.Child))
	case Leaf:
		return LeafHash(t)
	case Pruned:
		return t
	default:
		return EmptyHash()
	}
}

// EmptyHash is the digest of the empty tree.
func EmptyHash() [sha256.Size]byte {
	return sha256.Sum256(emptyDomain)
}

// ForkHash is the digest of a fork with the given child digests.
func ForkHash(left, right [sha256.Size]byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write(forkDomain)
	h.Write(left[:])
	h.Write(right[:])
	return sum(h.Sum(nil))
}

// LabeledHash is the digest of a labeled node whose child has the given digest.
func LabeledHash(label []byte, child [sha256.Size]byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write(labeledDomain)
	h.Write(label)
	h.Write(child[:])
	return sum(h.Sum(nil))
}

// LeafHash is the digest of a leaf holding value.
func LeafHash(value []byte) [sha256.Size]byte {
	h := sha256.New()
	h.Write(leafDomain)
	h.Write(value)
	return sum(h.Sum(nil))
}

func sum(b []byte) [sha256.Size]byte {
	var out [sha256.Size]byte
	copy(out[:], b)
	return out
}
