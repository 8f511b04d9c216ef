//go:build !linux && !darwin

package perfectmap

import "os"

// reserveLayoutFile sets the layout file length. Blocks may be allocated
// lazily.
func reserveLayoutFile(file *os.File, size int64) error {
	return file.Truncate(size)
}
