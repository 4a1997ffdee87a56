package endian

const copyBufferSize = 0x1000

// BlockReader is implemented by Reader and Stream.
type BlockReader interface {
	ReadBlockInto(buf []byte, offset, size int) (int, error)
}

// BlockWriter is implemented by Writer and Stream.
type BlockWriter interface {
	WriteBlockRange(data []byte, offset, size int) error
}

// Copy moves blocks from src to dst until src is exhausted and returns the
// number of bytes copied.
func Copy(dst BlockWriter, src BlockReader) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var total int64
	for {
		n, err := src.ReadBlockInto(buf, 0, len(buf))
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
		if err := dst.WriteBlockRange(buf, 0, n); err != nil {
			return total, err
		}
		total += int64(n)
	}
}

// CopyN moves at most size bytes from src to dst. It stops early when src
// ends and returns the number of bytes copied.
func CopyN(dst BlockWriter, src BlockReader, size int64) (int64, error) {
	if size < 0 {
		return 0, ErrRange
	}
	buf := make([]byte, copyBufferSize)
	var total int64
	for total < size {
		want := int(min(int64(len(buf)), size-total))
		n, err := src.ReadBlockInto(buf, 0, want)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		if err := dst.WriteBlockRange(buf, 0, n); err != nil {
			return total, err
		}
		total += int64(n)
	}
	return total, nil
}
