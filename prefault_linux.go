//go:build linux

package perfectmap

import (
	"os"

	"golang.org/x/sys/unix"
)

// MADV_POPULATE_WRITE, Linux 5.14+.
const madvPopulateWrite = 23

// prefaultLayout populates the pages of a layout file mapping before the
// seed tables and displacements are encoded into it. A layout within one
// page is left to fault on first write. Older kernels reject the advice
// with EINVAL; that is ignored.
func prefaultLayout(mapping []byte) {
	if len(mapping) <= os.Getpagesize() {
		return
	}
	_ = unix.Madvise(mapping, madvPopulateWrite)
}
