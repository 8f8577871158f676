package message

import (
	"errors"
	"fmt"
)

// ErrTooMuchData reports non-empty bytes after a message's terminating blank
// line.
var ErrTooMuchData = errors.New("too much message data")

// ParseError reports a violation of the wire grammar.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse message: %s", e.Detail)
}

// UnknownMessageTypeError reports a syntactically valid status line whose
// numeric code is not part of the protocol's taxonomy. It is recoverable:
// callers drop the message and keep reading.
type UnknownMessageTypeError struct {
	Code uint16
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("unknown message type: %d", e.Code)
}

// HeaderNotFoundError reports an absent header key.
type HeaderNotFoundError struct {
	Key string
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header not found: %s", e.Key)
}
