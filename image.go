package sswave

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Image is random-access storage for a firmware image. Writes must never
// grow the image.
type Image interface {
	io.ReaderAt
	io.WriterAt
	Size() int64
}

// MemImage is an in-memory firmware image.
type MemImage []byte

// LoadImage reads a whole firmware file into memory.
func LoadImage(path string) (MemImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read firmware image: %w", err)
	}

	return MemImage(data), nil
}

// Size returns the image length.
func (m MemImage) Size() int64 {
	return int64(len(m))
}

// ReadAt implements io.ReaderAt.
func (m MemImage) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}

	if off >= int64(len(m)) {
		return 0, io.EOF
	}

	n := copy(p, m[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// WriteAt implements io.WriterAt. Writes past the end of the image fail with
// ErrTruncatedImage and leave the image untouched.
func (m MemImage) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m)) {
		return 0, fmt.Errorf("%w: write of %d bytes at 0x%06x, image is %d bytes", ErrTruncatedImage, len(p), off, len(m))
	}

	return copy(m[off:], p), nil
}

// FileImage is a firmware image backed by a file on disk.
type FileImage struct {
	f    *os.File
	size int64
}

// OpenImage opens a firmware file. When writable is false every WriteAt
// fails.
func OpenImage(path string, writable bool) (*FileImage, error) {
	flag := os.O_RDONLY
	if writable {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open firmware image: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat firmware image: %w", err)
	}

	return &FileImage{f: f, size: info.Size()}, nil
}

// Size returns the file length at open time.
func (fi *FileImage) Size() int64 {
	return fi.size
}

// ReadAt implements io.ReaderAt.
func (fi *FileImage) ReadAt(p []byte, off int64) (int, error) {
	return fi.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt without extending the file.
func (fi *FileImage) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > fi.size {
		return 0, fmt.Errorf("%w: write of %d bytes at 0x%06x, image is %d bytes", ErrTruncatedImage, len(p), off, fi.size)
	}

	return fi.f.WriteAt(p, off)
}

// Sync commits written bytes to disk.
func (fi *FileImage) Sync() error {
	return fi.f.Sync()
}

// Close closes the underlying file.
func (fi *FileImage) Close() error {
	return fi.f.Close()
}

// readRange reads exactly r.Length bytes at r.Offset.
func readRange(src io.ReaderAt, r Range) ([]byte, error) {
	buf := make([]byte, r.Length)

	n, err := src.ReadAt(buf, r.Offset)
	if n == r.Length {
		return buf, nil
	}

	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %d of %d bytes available at 0x%06x", ErrTruncatedImage, n, r.Length, r.Offset)
	}

	return nil, fmt.Errorf("failed to read 0x%06x: %w", r.Offset, err)
}

// checkRange reports whether r lies inside an image of size bytes.
func checkRange(r Range, size int64) error {
	if r.End() > size {
		return fmt.Errorf("%w: range 0x%06x-0x%06x beyond image end 0x%06x", ErrTruncatedImage, r.Offset, r.End(), size)
	}

	return nil
}

// writeRange writes data over r, which must lie inside the image.
func writeRange(dst Image, r Range, data []byte) error {
	if err := checkRange(r, dst.Size()); err != nil {
		return err
	}

	if _, err := dst.WriteAt(data, r.Offset); err != nil {
		return fmt.Errorf("failed to write 0x%06x: %w", r.Offset, err)
	}

	return nil
}
