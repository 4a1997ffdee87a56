// Package mapfile exposes a file as a seekable byte region backed by mmap.
//
// Containers are fixed-size, so a File never grows: writes past the end fail
// with ErrOutOfBounds instead of extending the file.
package mapfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var (
	ErrReadOnly    = errors.New("mapfile: file opened read-only")
	ErrOutOfBounds = errors.New("mapfile: write past end of file")
	ErrClosed      = errors.New("mapfile: file closed")
	ErrTooLarge    = errors.New("mapfile: file too large to map")
)

// File is an io.ReadWriteSeeker over a mapped file.
type File struct {
	path     string
	data     []byte
	pos      int64
	writable bool
	mmapped  bool
	dirty    bool
	closed   bool
	// f is kept open only when mmap was unavailable and writes must be
	// flushed through the file descriptor on Close.
	f *os.File
}

// Open maps path read-only.
func Open(path string) (*File, error) {
	return open(path, false)
}

// OpenWritable maps path for reading and writing. Writes reach the file when
// Sync or Close is called.
func OpenWritable(path string) (*File, error) {
	return open(path, true)
}

func open(path string, writable bool) (*File, error) {
	flag, prot := os.O_RDONLY, unix.PROT_READ
	if writable {
		flag, prot = os.O_RDWR, unix.PROT_READ|unix.PROT_WRITE
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, err
	}
	cleanup := func() { _ = f.Close() }

	stat, err := f.Stat()
	if err != nil {
		cleanup()
		return nil, err
	}
	size64 := stat.Size()
	if size64 > int64(int(^uint(0)>>1)) {
		cleanup()
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, path)
	}
	size := int(size64)

	mf := &File{path: path, writable: writable}
	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
		if err == nil {
			cleanup()
			mf.data = data
			mf.mmapped = true
			return mf, nil
		}
	}

	// Fallback path for files that cannot be mapped, including empty ones.
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		cleanup()
		return nil, err
	}
	mf.data = data
	if writable {
		mf.f = f
	} else {
		cleanup()
	}
	return mf, nil
}

func (m *File) Name() string { return m.path }

// Size is the fixed length of the file.
func (m *File) Size() int64 { return int64(len(m.data)) }

// Mapped reports whether the file is backed by mmap.
func (m *File) Mapped() bool { return m.mmapped }

func (m *File) Writable() bool { return m.writable }

func (m *File) Read(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *File) Write(p []byte) (int, error) {
	if m.closed {
		return 0, ErrClosed
	}
	if !m.writable {
		return 0, ErrReadOnly
	}
	if m.pos+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("%w: %d bytes at %#x, size %#x", ErrOutOfBounds, len(p), m.pos, len(m.data))
	}
	n := copy(m.data[m.pos:], p)
	m.pos += int64(n)
	m.dirty = true
	return n, nil
}

func (m *File) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, ErrClosed
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return 0, fmt.Errorf("mapfile: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("mapfile: negative position %d", abs)
	}
	m.pos = abs
	return abs, nil
}

// Sync flushes pending writes to the file.
func (m *File) Sync() error {
	if !m.dirty {
		return nil
	}
	var err error
	switch {
	case m.mmapped:
		err = unix.Msync(m.data, unix.MS_SYNC)
	case m.f != nil:
		_, err = m.f.WriteAt(m.data, 0)
	}
	if err != nil {
		return fmt.Errorf("mapfile: sync %s: %w", m.path, err)
	}
	m.dirty = false
	return nil
}

// Close flushes pending writes and releases the mapping. Closing twice is a
// no-op.
func (m *File) Close() error {
	if m.closed {
		return nil
	}
	err := m.Sync()
	if m.mmapped {
		if uerr := unix.Munmap(m.data); uerr != nil && err == nil {
			err = uerr
		}
	}
	if m.f != nil {
		if cerr := m.f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	m.data = nil
	m.f = nil
	m.mmapped = false
	m.closed = true
	return err
}
