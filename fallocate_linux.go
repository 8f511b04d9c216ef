//go:build linux

package perfectmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// reserveLayoutFile allocates the blocks of a layout file of the given size
// and extends the file to it. A full disk is reported as ENOSPC here instead
// of faulting later through the write mapping.
func reserveLayoutFile(file *os.File, size int64) error {
	fd := int(file.Fd())
	err := unix.Fallocate(fd, 0, 0, size)
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		// NFS and some FUSE filesystems: length only.
		return unix.Ftruncate(fd, size)
	}
	return err
}
