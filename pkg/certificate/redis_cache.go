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
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 200 * time.Millisecond

// RedisSignatureCache shares successful signature checks between processes.
// Backend errors are logged and treated as cache misses.
type RedisSignatureCache struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisSignatureCache connects to the redis server at addr. Entries expire
// after ttl; zero keeps them forever.
func NewRedisSignatureCache(addr, password string, db int, ttl time.Duration) (*RedisSignatureCache, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisSignatureCacheFromClient(client, ttl), nil
}

// NewRedisSignatureCacheFromClient wraps an existing client.
func NewRedisSignatureCacheFromClient(client *redis.Client, ttl time.Duration) *RedisSignatureCache {
	return &RedisSignatureCache{
		client:  client,
		prefix:  "sigcache:",
		ttl:     ttl,
		timeout: defaultRedisTimeout,
	}
}

func (c *RedisSignatureCache) key(k [sha256.Size]byte) string {
	return c.prefix + hex.EncodeToString(k[:])
}

func (c *RedisSignatureCache) Contains(k [sha256.Size]byte) bool {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.client.Exists(ctx, c.key(k)).Result()
	if err != nil {
		log.Printf("signature cache: redis exists failed: %v", err)
		return false
	}
	return n > 0
}

func (c *RedisSignatureCache) Add(k [sha256.Size]byte) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(k), 1, c.ttl).Err(); err != nil {
		log.Printf("signature cache: redis set failed: %v", err)
	}
}

// Close releases the redis connection.
func (c *RedisSignatureCache) Close() error {
	return c.client.Close()
}

var _ SignatureCache = (*RedisSignatureCache)(nil)
