package transport

import (
	"io"

	"github.com/microsoft/apt-transport-blob/pkg/message"
)

// Sender delivers outbound messages to the controller. Emission is
// immediate: a message is fully written before Send returns.
type Sender interface {
	Send(msg *message.Message) error
}

// StreamSender writes messages to a stream in their canonical wire form.
// The stream has a single writer by construction of the loop, so no locking
// is needed.
type StreamSender struct {
	w io.Writer
}

func NewStreamSender(w io.Writer) *StreamSender {
	return &StreamSender{w: w}
}

func (s *StreamSender) Send(msg *message.Message) error {
	_, err := s.w.Write(msg.Bytes())
	return err
}
