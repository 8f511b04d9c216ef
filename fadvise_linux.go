//go:build linux

package perfectmap

import "golang.org/x/sys/unix"

// fadviseSequential tells the kernel the layout file is read front to back.
func fadviseSequential(fd int, length int64) {
	_ = unix.Fadvise(fd, 0, length, unix.FADV_SEQUENTIAL)
}
