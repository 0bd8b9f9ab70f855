package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// inflate decompresses a raw deflate stream, refusing to produce more
// than max bytes. The bound guards against compressed-bomb payloads in
// untrusted import strings.
func inflate(data []byte, max int) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, int64(max)+1))
	if err != nil {
		return nil, errorf("decompression failed: %v", err)
	}
	if len(out) > max {
		return nil, errorf("decompressed payload exceeds %d byte limit", max)
	}
	return out, nil
}

// deflate compresses data as a raw deflate stream at maximum compression,
// matching the level the game addon uses.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, errorf("compression setup failed: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, errorf("compression failed: %v", err)
	}
	if err := w.Close(); err != nil {
		return nil, errorf("compression failed: %v", err)
	}
	return buf.Bytes(), nil
}
