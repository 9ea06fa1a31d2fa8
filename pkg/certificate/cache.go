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

package certificate

import (
	"crypto/sha256"
	"sync"
)

// SignatureCache remembers signature checks that succeeded. Implementations
// must be safe for concurrent use. Entries are never invalidated because a
// successful check stays successful.
type SignatureCache interface {
	Contains(key [sha256.Size]byte) bool
	Add(key [sha256.Size]byte)
}

// MemoryCache is an in-process SignatureCache that holds at most a fixed
// number of entries, evicting the oldest first.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[[sha256.Size]byte]struct{}
	order    [][sha256.Size]byte
}

// NewMemoryCache creates a cache holding up to capacity entries. A capacity
// below one is treated as one.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryCache{
		capacity: capacity,
		entries:  make(map[[sha256.Size]byte]struct{}, capacity),
	}
}

func (c *MemoryCache) Contains(key [sha256.Size]byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *MemoryCache) Add(key [sha256.Size]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = struct{}{}
	c.order = append(c.order, key)
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ SignatureCache = (*MemoryCache)(nil)
