package endian

import (
	"io"
	"math"
	"unicode/utf16"
)

// Writer encodes primitives to a seekable stream. Every Write method mirrors
// the Reader method of the same name.
type Writer struct {
	cursor
	w   io.Writer
	buf [8]byte
}

// NewWriter returns a Writer over w using byte order e.
func NewWriter(w io.WriteSeeker, e Endian) *Writer {
	return &Writer{
		cursor: cursor{s: w, endian: e},
		w:      w,
	}
}

func (w *Writer) put(b []byte) error {
	_, err := w.w.Write(b)
	return err
}

func (w *Writer) WriteByte(v byte) error {
	w.buf[0] = v
	return w.put(w.buf[:1])
}

func (w *Writer) WriteSByte(v int8) error {
	return w.WriteByte(byte(v))
}

func (w *Writer) WriteUInt16(v uint16) error {
	w.endian.order().PutUint16(w.buf[:2], v)
	return w.put(w.buf[:2])
}

func (w *Writer) WriteInt16(v int16) error {
	return w.WriteUInt16(uint16(v))
}

// WriteInt24 writes the low 24 bits of v.
func (w *Writer) WriteInt24(v int32) error {
	u := uint32(v)
	if w.endian == BigEndian {
		w.buf[0], w.buf[1], w.buf[2] = byte(u>>16), byte(u>>8), byte(u)
	} else {
		w.buf[0], w.buf[1], w.buf[2] = byte(u), byte(u>>8), byte(u>>16)
	}
	return w.put(w.buf[:3])
}

func (w *Writer) WriteUInt32(v uint32) error {
	w.endian.order().PutUint32(w.buf[:4], v)
	return w.put(w.buf[:4])
}

func (w *Writer) WriteInt32(v int32) error {
	return w.WriteUInt32(uint32(v))
}

func (w *Writer) WriteUInt64(v uint64) error {
	hi, lo := uint32(v>>32), uint32(v)
	if w.endian == BigEndian {
		if err := w.WriteUInt32(hi); err != nil {
			return err
		}
		return w.WriteUInt32(lo)
	}
	if err := w.WriteUInt32(lo); err != nil {
		return err
	}
	return w.WriteUInt32(hi)
}

func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUInt64(uint64(v))
}

func (w *Writer) WriteFloat(v float32) error {
	return w.WriteUInt32(math.Float32bits(v))
}

// WriteAsciiNullTerminated writes s followed by a zero byte.
func (w *Writer) WriteAsciiNullTerminated(s string) error {
	b, err := encodeSingleByte(s)
	if err != nil {
		return err
	}
	return w.put(append(b, 0))
}

// WriteAscii writes s into a field of exactly size bytes, zero-padding short
// strings and truncating long ones.
func (w *Writer) WriteAscii(s string, size int) error {
	if size < 0 {
		return ErrRange
	}
	b, err := encodeSingleByte(s)
	if err != nil {
		return err
	}
	field := make([]byte, size)
	copy(field, b)
	return w.put(field)
}

// WriteUTF16NullTerminated writes s as 16-bit code units followed by a zero unit.
func (w *Writer) WriteUTF16NullTerminated(s string) error {
	for _, u := range utf16.Encode([]rune(s)) {
		if err := w.WriteUInt16(u); err != nil {
			return err
		}
	}
	return w.WriteUInt16(0)
}

// WriteUTF16 writes s into a field of exactly length code units.
func (w *Writer) WriteUTF16(s string, length int) error {
	if length < 0 {
		return ErrRange
	}
	for _, u := range fitUnits(s, length) {
		if err := w.WriteUInt16(u); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteBlock(data []byte) error {
	return w.put(data)
}

// WriteBlockRange writes data[offset:offset+size].
func (w *Writer) WriteBlockRange(data []byte, offset, size int) error {
	if err := checkWindow(len(data), offset, size); err != nil {
		return err
	}
	return w.put(data[offset : offset+size])
}
