//go:build linux

package secret

import "golang.org/x/sys/unix"

func dontDump(data []byte) error {
	return unix.Madvise(data, unix.MADV_DONTDUMP)
}
