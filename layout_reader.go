package perfectmap

import (
	"errors"
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	pmerrors "github.com/tamirms/perfectmap/errors"
)

// ReadLayoutFile loads a layout saved with WriteFile.
func ReadLayoutFile(path string) (*Layout, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat layout file: %w", err)
	}
	size := stat.Size()
	if size < headerSize+footerSize {
		return nil, pmerrors.ErrTruncatedLayout
	}

	fadviseSequential(int(file.Fd()), size)

	mm, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap layout file: %w", err)
	}

	l, decodeErr := decodeLayout(mm)
	if err := errors.Join(decodeErr, mm.Unmap()); err != nil {
		return nil, err
	}
	return l, nil
}
