package endian

import "io"

// Stream composes a Reader and a Writer over one underlying stream so a
// decoder can load records and later update them in place. A direction the
// underlying stream does not support fails with ErrUnsupported.
type Stream struct {
	cursor
	r *Reader
	w *Writer
}

// NewStream builds a Stream over s. s must implement io.Reader, io.Writer or
// both; otherwise ErrNoAccess is returned.
func NewStream(s io.Seeker, e Endian) (*Stream, error) {
	st := &Stream{cursor: cursor{s: s, endian: e}}
	if rs, ok := s.(io.ReadSeeker); ok {
		st.r = NewReader(rs, e)
	}
	if ws, ok := s.(io.WriteSeeker); ok {
		st.w = NewWriter(ws, e)
	}
	if st.r == nil && st.w == nil {
		return nil, ErrNoAccess
	}
	return st, nil
}

// SetEndian changes the byte order of both directions.
func (s *Stream) SetEndian(e Endian) {
	s.endian = e
	if s.r != nil {
		s.r.SetEndian(e)
	}
	if s.w != nil {
		s.w.SetEndian(e)
	}
}

func (s *Stream) CanRead() bool  { return s.r != nil }
func (s *Stream) CanWrite() bool { return s.w != nil }

// Close closes the underlying stream if it is an io.Closer.
func (s *Stream) Close() error {
	if c, ok := s.s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Stream) reader() (*Reader, error) {
	if s.r == nil {
		return nil, ErrUnsupported
	}
	return s.r, nil
}

func (s *Stream) writer() (*Writer, error) {
	if s.w == nil {
		return nil, ErrUnsupported
	}
	return s.w, nil
}

func (s *Stream) ReadByte() (byte, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadByte()
}

func (s *Stream) ReadSByte() (int8, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadSByte()
}

func (s *Stream) ReadUInt16() (uint16, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadUInt16()
}

func (s *Stream) ReadInt16() (int16, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadInt16()
}

func (s *Stream) ReadInt24() (int32, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadInt24()
}

func (s *Stream) ReadUInt32() (uint32, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadUInt32()
}

func (s *Stream) ReadInt32() (int32, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadInt32()
}

func (s *Stream) ReadUInt64() (uint64, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadUInt64()
}

func (s *Stream) ReadInt64() (int64, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadInt64()
}

func (s *Stream) ReadFloat() (float32, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadFloat()
}

func (s *Stream) ReadAsciiNullTerminated() (string, error) {
	r, err := s.reader()
	if err != nil {
		return "", err
	}
	return r.ReadAsciiNullTerminated()
}

func (s *Stream) ReadAscii(size int) (string, error) {
	r, err := s.reader()
	if err != nil {
		return "", err
	}
	return r.ReadAscii(size)
}

func (s *Stream) ReadUTF16NullTerminated() (string, error) {
	r, err := s.reader()
	if err != nil {
		return "", err
	}
	return r.ReadUTF16NullTerminated()
}

func (s *Stream) ReadUTF16(length int) (string, error) {
	r, err := s.reader()
	if err != nil {
		return "", err
	}
	return r.ReadUTF16(length)
}

func (s *Stream) ReadBlock(size int) ([]byte, error) {
	r, err := s.reader()
	if err != nil {
		return nil, err
	}
	return r.ReadBlock(size)
}

func (s *Stream) ReadBlockInto(buf []byte, offset, size int) (int, error) {
	r, err := s.reader()
	if err != nil {
		return 0, err
	}
	return r.ReadBlockInto(buf, offset, size)
}

func (s *Stream) WriteByte(v byte) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteByte(v)
}

func (s *Stream) WriteSByte(v int8) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteSByte(v)
}

func (s *Stream) WriteUInt16(v uint16) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteUInt16(v)
}

func (s *Stream) WriteInt16(v int16) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteInt16(v)
}

func (s *Stream) WriteInt24(v int32) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteInt24(v)
}

func (s *Stream) WriteUInt32(v uint32) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteUInt32(v)
}

func (s *Stream) WriteInt32(v int32) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteInt32(v)
}

func (s *Stream) WriteUInt64(v uint64) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteUInt64(v)
}

func (s *Stream) WriteInt64(v int64) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteInt64(v)
}

func (s *Stream) WriteFloat(v float32) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteFloat(v)
}

func (s *Stream) WriteAsciiNullTerminated(str string) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteAsciiNullTerminated(str)
}

func (s *Stream) WriteAscii(str string, size int) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteAscii(str, size)
}

func (s *Stream) WriteUTF16NullTerminated(str string) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteUTF16NullTerminated(str)
}

func (s *Stream) WriteUTF16(str string, length int) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteUTF16(str, length)
}

func (s *Stream) WriteBlock(data []byte) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteBlock(data)
}

func (s *Stream) WriteBlockRange(data []byte, offset, size int) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	return w.WriteBlockRange(data, offset, size)
}

type readOnly struct{ io.ReadSeeker }

type writeOnly struct{ io.WriteSeeker }

// ReadOnly hides every method of rs except Read and Seek, so a Stream built
// over it has no writer.
func ReadOnly(rs io.ReadSeeker) io.ReadSeeker { return readOnly{rs} }

// WriteOnly hides every method of ws except Write and Seek.
func WriteOnly(ws io.WriteSeeker) io.WriteSeeker { return writeOnly{ws} }
