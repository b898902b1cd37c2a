//go:build unix

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

func allocate(size int) ([]byte, bool) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return make([]byte, size), false
	}

	if err := unix.Mlock(data); err != nil {
		_ = unix.Munmap(data)
		return make([]byte, size), false
	}

	// MADV_DONTDUMP only exists on linux; elsewhere mlock is the whole protection.
	if err := dontDump(data); err != nil {
		_ = unix.Munlock(data)
		_ = unix.Munmap(data)
		return make([]byte, size), false
	}

	return data, true
}

func release(data []byte, locked bool) error {
	if !locked {
		return nil
	}

	var firstError error
	if err := unix.Munlock(data); err != nil {
		firstError = fmt.Errorf("secret: munlock failed: %w", err)
	}
	if err := unix.Munmap(data); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap failed: %w", err)
	}
	return firstError
}
