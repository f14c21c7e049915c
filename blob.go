package overfs

import (
	"bytes"
	"io"
)

// Blob is an immutable content container for a file node: raw bytes plus
// a content-type hint. The zero value is an empty blob with no hint.
type Blob struct {
	data        []byte
	contentType string
}

// NewBlob copies data into a new Blob with the given content-type hint.
func NewBlob(data []byte, contentType string) *Blob {
	b := &Blob{
		data:        make([]byte, len(data)),
		contentType: contentType,
	}
	copy(b.data, data)
	return b
}

// Bytes returns a copy of the blob's content.
func (b *Blob) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Size returns the content length in bytes.
func (b *Blob) Size() int64 {
	return int64(len(b.data))
}

// ContentType returns the content-type hint; may be empty.
func (b *Blob) ContentType() string {
	return b.contentType
}

// Reader returns a new reader over the blob's content.
func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.data)
}
