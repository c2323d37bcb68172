package stream

import (
	"fmt"
)

// TransportError reports a dropped or failed stream connection.
// The manager is forced to Disconnected when one occurs.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stream %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed stream message. The message is dropped and
// the connection stays open.
type ParseError struct {
	Data []byte
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed stream message: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
