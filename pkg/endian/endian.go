// Package endian implements byte-order aware primitive I/O over seekable streams.
//
// A Reader and a Writer share the same model: every multi-byte value is encoded
// according to the Endian mode active at the time of the call, and every call
// advances the underlying stream position by exactly the width it consumed.
// Stream composes both over a single stream so a format decoder can load a
// file and later rewrite records in place.
package endian

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Endian selects the byte order used for multi-byte values.
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

var (
	// ErrNoAccess is returned when a stream can be neither read nor written.
	ErrNoAccess = errors.New("endian: stream cannot be read from or written to")
	// ErrUnsupported is returned by a Stream for a direction it was not built with.
	ErrUnsupported = fmt.Errorf("endian: %w", errors.ErrUnsupported)
	// ErrRange is returned for negative sizes and out-of-range buffer windows.
	ErrRange = errors.New("endian: size out of range")
)

func (e Endian) String() string {
	switch e {
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	default:
		return fmt.Sprintf("endian(%d)", uint8(e))
	}
}

// ParseEndian accepts "big"/"be" and "little"/"le" in any case.
func ParseEndian(s string) (Endian, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "big", "be", "bigendian", "big-endian":
		return BigEndian, nil
	case "little", "le", "littleendian", "little-endian":
		return LittleEndian, nil
	default:
		return 0, fmt.Errorf("endian: unknown byte order %q", s)
	}
}

func (e Endian) order() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// cursor holds the positioning state shared by Reader, Writer and Stream.
type cursor struct {
	s      io.Seeker
	endian Endian
}

// Endian reports the active byte order.
func (c *cursor) Endian() Endian {
	return c.endian
}

// SetEndian changes the byte order for all subsequent operations.
func (c *cursor) SetEndian(e Endian) {
	c.endian = e
}

// SeekTo moves to an absolute offset.
func (c *cursor) SeekTo(offset int64) error {
	_, err := c.s.Seek(offset, io.SeekStart)
	return err
}

// Skip moves count bytes relative to the current position.
func (c *cursor) Skip(count int64) error {
	_, err := c.s.Seek(count, io.SeekCurrent)
	return err
}

// Position returns the current absolute offset.
func (c *cursor) Position() (int64, error) {
	return c.s.Seek(0, io.SeekCurrent)
}

// Length returns the total stream length without moving the position.
func (c *cursor) Length() (int64, error) {
	cur, err := c.s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := c.s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := c.s.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// EOF reports whether the position is at or past the end of the stream.
func (c *cursor) EOF() (bool, error) {
	pos, err := c.Position()
	if err != nil {
		return false, err
	}
	n, err := c.Length()
	if err != nil {
		return false, err
	}
	return pos >= n, nil
}

func checkWindow(bufLen, offset, size int) error {
	if offset < 0 || size < 0 || offset > bufLen || size > bufLen-offset {
		return fmt.Errorf("%w: window [%d:+%d] of %d bytes", ErrRange, offset, size, bufLen)
	}
	return nil
}
