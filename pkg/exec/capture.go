package exec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrStreamClosed is matched by every *StreamClosedError.
var ErrStreamClosed = errors.New("stream was closed unexpectedly")

// StreamClosedError reports an output channel that failed before reaching
// its normal end.
type StreamClosedError struct {
	Err error
}

func (e *StreamClosedError) Error() string {
	return fmt.Sprintf("stream was closed unexpectedly: %v", e.Err)
}

func (e *StreamClosedError) Unwrap() []error {
	return []error{ErrStreamClosed, e.Err}
}

const captureChunkSize = 32 * 1024

// Capture reads r until io.EOF and returns everything read, in order, as text.
// Any other read error is an abnormal closure and discards the partial output.
func Capture(r io.Reader) (string, error) {
	var buf bytes.Buffer
	chunk := make([]byte, captureChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.String(), nil
		}
		if err != nil {
			return "", &StreamClosedError{Err: err}
		}
	}
}
