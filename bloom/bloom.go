package bloom

import (
	"hash/fnv"
	"math"
	"sync"

	"github.com/n3k/nbitmap/bitmap"
)

// BloomFilter is a thread-safe Bloom filter backed by bitmap.Bitmap.
// The bitmap carries no lock of its own, so the filter serializes all
// bit access behind its mutex.
type BloomFilter struct {
	mu       sync.Mutex
	bits     *bitmap.Bitmap
	hashFunc []func([]byte) uint32
	size     uint32
}

// New create bloom filter
// n: expected element count
// p: expected false positive rate (0 < p < 1)
func New(n uint32, p float64) *BloomFilter {
	m, k := estimateParameters(n, p)
	if k > 8 {
		k = 8
	}
	// The bitmap rounds m up to a power of two; indices are reduced
	// modulo m, so the rounded tail simply stays unused.
	return &BloomFilter{
		bits:     bitmap.New(int(m)),
		hashFunc: createHashFunctions(k),
		size:     m,
	}
}

// Add add element to bloom filter
func (bf *BloomFilter) Add(data []byte) {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	for _, fn := range bf.hashFunc {
		bf.bits.Set(int(fn(data) % bf.size))
	}
}

// Contains check if the element may exist
func (bf *BloomFilter) Contains(data []byte) bool {
	bf.mu.Lock()
	defer bf.mu.Unlock()
	for _, fn := range bf.hashFunc {
		if !bf.bits.IsSet(int(fn(data) % bf.size)) {
			return false
		}
	}
	return true
}

// estimateParameters calculate optimal parameters (m: array size, k: hash function count)
func estimateParameters(n uint32, p float64) (uint32, uint32) {
	m := uint32(math.Ceil(-float64(n) * math.Log(p) / (math.Pow(math.Log(2), 2))))
	k := uint32(math.Ceil(math.Log(2) * float64(m) / float64(n)))
	return m, k
}

// createHashFunctions create k hash functions (using double hash technique)
// Each function hashes with a fresh fnv state, so none of them carry
// mutable state between calls.
func createHashFunctions(k uint32) []func([]byte) uint32 {
	base := []func([]byte) uint32{
		func(data []byte) uint32 {
			h := fnv.New32a()
			h.Write(data)
			return h.Sum32()
		},
		func(data []byte) uint32 {
			h := fnv.New32()
			h.Write(data)
			return h.Sum32()
		},
	}

	fns := make([]func([]byte) uint32, 0, k)
	for i := uint32(0); i < k; i++ {
		idx := i % uint32(len(base))
		factor := i/uint32(len(base)) + 1
		fns = append(fns, func(data []byte) uint32 {
			return base[idx](data) * factor
		})
	}
	return fns
}
