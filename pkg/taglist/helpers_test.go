package taglist

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

func newTestGzip(w io.Writer, payload string) error {
	zw := gzip.NewWriter(w)
	if _, err := zw.Write([]byte(payload)); err != nil {
		return err
	}
	return zw.Close()
}
