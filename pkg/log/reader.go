package log

import (
	"errors"
	"io"
	"os"
)

// Reader reads protocol events back from a CBOR log stream, as written by
// FileLogger. Used by the ddc-log tool.
type Reader struct {
	closer io.Closer
	dec    decoder
}

type decoder interface {
	Decode(v any) error
}

// NewReader creates a Reader over an arbitrary stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: NewDecoder(r)}
}

// OpenFile opens a log file for reading.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{closer: f, dec: NewDecoder(f)}, nil
}

// Next returns the next event, or io.EOF at the end of the stream.
func (r *Reader) Next() (Event, error) {
	var event Event
	if err := r.dec.Decode(&event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// ReadAll drains the stream. A trailing partial record (from a crashed
// writer) terminates the read without error.
func (r *Reader) ReadAll() ([]Event, error) {
	var events []Event
	for {
		event, err := r.Next()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, event)
	}
}

// Close closes the underlying file, when the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
