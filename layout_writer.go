package perfectmap

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// WriteFile saves l to path, replacing any existing file.
//
// The file is allocated at its final size, memory-mapped and encoded in
// place, then flushed before it is closed.
func (l *Layout) WriteFile(path string) error {
	if err := l.validate(); err != nil {
		return err
	}
	size := l.encodedSize()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create layout file: %w", err)
	}

	// A write fault through the mapping on a full disk is a SIGBUS.
	if err := reserveLayoutFile(file, int64(size)); err != nil {
		primaryErr := fmt.Errorf("allocate layout file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}

	mm, err := mmap.MapRegion(file, size, mmap.RDWR, 0, 0)
	if err != nil {
		primaryErr := fmt.Errorf("mmap layout file: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	prefaultLayout(mm)

	l.encodeTo(mm)

	if err := mm.Flush(); err != nil {
		primaryErr := fmt.Errorf("mmap flush failed: %w", err)
		return errors.Join(primaryErr, mm.Unmap(), file.Close())
	}
	if err := mm.Unmap(); err != nil {
		primaryErr := fmt.Errorf("mmap unmap failed: %w", err)
		return errors.Join(primaryErr, file.Close())
	}
	return file.Close()
}
