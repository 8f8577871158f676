package transport

import (
	"sync"

	"github.com/microsoft/apt-transport-blob/pkg/message"
)

// MockSender is a mock implementation of Sender for testing
type MockSender struct {
	mu       sync.Mutex
	SendFunc func(msg *message.Message) error
	Sent     []*message.Message
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(msg *message.Message) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(msg); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// SentMessages returns a copy of everything sent so far.
func (m *MockSender) SentMessages() []*message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	messages := make([]*message.Message, len(m.Sent))
	copy(messages, m.Sent)
	return messages
}
