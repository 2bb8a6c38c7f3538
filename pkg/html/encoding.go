package html

import (
	"io"

	"golang.org/x/net/html/charset"
)

// DecodeReader wraps a raw document byte stream in a UTF-8 decoding
// reader. contentType is the transport-declared type (may carry a
// charset parameter, may be empty); when it does not settle the
// question, the stream's leading bytes are sniffed.
func DecodeReader(r io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(r, contentType)
}
