// Package mmap maps database files into memory for read-only access.
//
// Lookups touch the mapping in an essentially random order, so on Unix
// the mapping is advised with MADV_RANDOM. The mapping never becomes
// writable; mutating the returned slice is a fault.
package mmap

import "os"

// Map memory-maps the first size bytes of f read-only. The returned slice
// stays valid after f is closed and until Unmap.
func Map(f *os.File, size int) ([]byte, error) {
	return mmap(f, size)
}

// Unmap releases a mapping returned by Map. The slice must not be touched
// afterwards.
func Unmap(b []byte) error {
	return munmap(b)
}
