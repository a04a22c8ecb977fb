package compression

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

var (
	zstdEncoder = sync.OnceValue(func() *zstd.Encoder {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		return enc
	})
	zstdDecoder = sync.OnceValue(func() *zstd.Decoder {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	})
)

// Gzip wraps klauspost's gzip at best compression.
type Gzip struct{}

// Name returns "Gzip".
func (Gzip) Name() string { return "Gzip" }

// Compress gzips data.
func (g Gzip) Compress(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return data
	}
	if _, err := w.Write(data); err != nil {
		return data
	}
	if err := w.Close(); err != nil {
		return data
	}

	return pick(g, data, buf.Bytes())
}

// Decompress gunzips data carrying the gzip magic number.
func (Gzip) Decompress(data []byte) []byte {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data
	}

	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return data
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return data
	}
	return out
}

// Zstd wraps klauspost's zstd with shared encoder and decoder instances.
type Zstd struct{}

// Name returns "Zstd".
func (Zstd) Name() string { return "Zstd" }

// Compress encodes data as a single zstd frame.
func (z Zstd) Compress(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	return pick(z, data, zstdEncoder().EncodeAll(data, nil))
}

// Decompress decodes zstd frames carrying the zstd magic number.
func (Zstd) Decompress(data []byte) []byte {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data
	}

	out, err := zstdDecoder().DecodeAll(data, nil)
	if err != nil {
		return data
	}
	return out
}
