package endian

import (
	"bytes"
	"errors"
	"io"
	"math"
	"unicode/utf16"
)

// Reader decodes primitives from a seekable stream.
type Reader struct {
	cursor
	r   io.Reader
	buf [8]byte
}

// NewReader returns a Reader over r using byte order e.
func NewReader(r io.ReadSeeker, e Endian) *Reader {
	return &Reader{
		cursor: cursor{s: r, endian: e},
		r:      r,
	}
}

// next reads exactly n bytes into the scratch buffer. It returns io.EOF when
// nothing was available and io.ErrUnexpectedEOF on a partial read.
func (r *Reader) next(n int) ([]byte, error) {
	b := r.buf[:n]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Reader) fill(n int) ([]byte, error) {
	b, err := r.next(n)
	if errors.Is(err, io.EOF) {
		return nil, io.ErrUnexpectedEOF
	}
	return b, err
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadSByte() (int8, error) {
	v, err := r.ReadByte()
	return int8(v), err
}

func (r *Reader) ReadUInt16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return r.endian.order().Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUInt16()
	return int16(v), err
}

// ReadInt24 reads a signed 24-bit value, sign-extended to 32 bits.
func (r *Reader) ReadInt24() (int32, error) {
	b, err := r.fill(3)
	if err != nil {
		return 0, err
	}
	var v uint32
	if r.endian == BigEndian {
		v = uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	} else {
		v = uint32(b[2])<<16 | uint32(b[1])<<8 | uint32(b[0])
	}
	return int32(v<<8) >> 8, nil
}

func (r *Reader) ReadUInt32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return r.endian.order().Uint32(b), nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUInt32()
	return int32(v), err
}

// ReadUInt64 reads two 32-bit words; the high word comes first in big-endian.
func (r *Reader) ReadUInt64() (uint64, error) {
	one, err := r.ReadUInt32()
	if err != nil {
		return 0, err
	}
	two, err := r.ReadUInt32()
	if err != nil {
		return 0, err
	}
	if r.endian == BigEndian {
		return uint64(one)<<32 | uint64(two), nil
	}
	return uint64(two)<<32 | uint64(one), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUInt64()
	return int64(v), err
}

// ReadFloat reads an IEEE-754 single in the active byte order.
func (r *Reader) ReadFloat() (float32, error) {
	u, err := r.ReadUInt32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// ReadAsciiNullTerminated reads single-byte characters up to a zero byte or
// the end of the stream. The terminator is consumed but not returned.
func (r *Reader) ReadAsciiNullTerminated() (string, error) {
	var out []byte
	for {
		b, err := r.next(1)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if b[0] == 0 {
			break
		}
		out = append(out, b[0])
	}
	return decodeSingleByte(out)
}

// ReadAscii reads exactly size bytes. A zero byte ends the string early but
// the whole field is still consumed.
func (r *Reader) ReadAscii(size int) (string, error) {
	if size < 0 {
		return "", ErrRange
	}
	b := make([]byte, size)
	if _, err := io.ReadFull(r.r, b); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return decodeSingleByte(b)
}

// ReadUTF16NullTerminated reads 16-bit code units up to a zero unit or the
// end of the stream.
func (r *Reader) ReadUTF16NullTerminated() (string, error) {
	var units []uint16
	for {
		b, err := r.next(2)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		u := r.endian.order().Uint16(b)
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// ReadUTF16 reads a field of length code units. The position always advances
// by 2*length bytes, even when a terminator appears early.
func (r *Reader) ReadUTF16(length int) (string, error) {
	if length < 0 {
		return "", ErrRange
	}
	units := make([]uint16, 0, length)
	for i := 0; i < length; i++ {
		u, err := r.ReadUInt16()
		if err != nil {
			return "", err
		}
		if u == 0 {
			if rest := length - i - 1; rest > 0 {
				if err := r.Skip(int64(rest) * 2); err != nil {
					return "", err
				}
			}
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units)), nil
}

// ReadBlock reads up to size bytes. The returned slice is shorter than size
// when the stream ends first.
func (r *Reader) ReadBlock(size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrRange
	}
	b := make([]byte, size)
	n, err := r.ReadBlockInto(b, 0, size)
	return b[:n], err
}

// ReadBlockInto reads up to size bytes into buf[offset:] and returns the
// number of bytes actually read.
func (r *Reader) ReadBlockInto(buf []byte, offset, size int) (int, error) {
	if err := checkWindow(len(buf), offset, size); err != nil {
		return 0, err
	}
	n, err := io.ReadFull(r.r, buf[offset:offset+size])
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	return n, err
}
