//go:build darwin

package perfectmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// reserveLayoutFile allocates the blocks of a layout file with
// F_PREALLOCATE, then sets its length. F_PREALLOCATE never changes the
// length on its own.
func reserveLayoutFile(file *os.File, size int64) error {
	fst := unix.Fstore_t{
		Flags:   unix.F_ALLOCATEALL,
		Posmode: unix.F_PEOFPOSMODE,
		Length:  size,
	}
	err := unix.FcntlFstore(file.Fd(), unix.F_PREALLOCATE, &fst)
	if err != nil && !errors.Is(err, unix.ENOTSUP) {
		return err
	}
	return unix.Ftruncate(int(file.Fd()), size)
}
