// Package transport reads the controller's message stream from standard
// input, frames it into messages, and writes the agent's replies to standard
// output.
package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/microsoft/apt-transport-blob/internal/observability"
	"github.com/microsoft/apt-transport-blob/pkg/message"
)

// MessageHandler processes one inbound message. A returned error is fatal:
// the loop reports it to the controller and terminates the run.
type MessageHandler func(ctx context.Context, msg *message.Message) error

type LoopConfig struct {
	Input   io.Reader
	Sender  Sender
	Handler MessageHandler
	Version string
	Metrics observability.MetricsCollector
}

// Loop frames the input stream into blank-line-terminated message blocks and
// feeds each through the codec and the handler, strictly one at a time.
type Loop struct {
	reader  *bufio.Reader
	sender  Sender
	handler MessageHandler
	version string
	logger  *logrus.Logger
	metrics observability.MetricsCollector
}

func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NewInMemoryMetrics()
	}
	return &Loop{
		reader:  bufio.NewReader(cfg.Input),
		sender:  cfg.Sender,
		handler: cfg.Handler,
		version: cfg.Version,
		logger:  observability.GetLogger(),
		metrics: cfg.Metrics,
	}
}

// Run announces the agent's capabilities and then processes messages until
// end of input. It returns nil on EOF; a fatal handler error is reported to
// the controller as a General Failure and returned.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.sender.Send(message.NewCapabilities(l.version)); err != nil {
		return fmt.Errorf("failed to send capabilities: %w", err)
	}

	l.logger.Info("Ready to receive messages")

	var buffer bytes.Buffer
	for {
		line, err := l.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// A partial message left in the buffer is discarded.
				l.logger.Debug("EOF reached")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		buffer.WriteString(line)
		if line != "\n" {
			continue
		}

		// Empty line reached, the buffer holds one complete message.
		msg, err := message.Parse(buffer.Bytes())
		buffer.Reset()
		if err != nil {
			l.metrics.IncParseFailed()
			l.logger.WithError(err).Warn("Dropping malformed message")
			continue
		}

		l.metrics.IncReceived()
		if err := l.handler(ctx, msg); err != nil {
			l.logger.WithError(err).Error("Message processing failed")
			failure := message.NewGeneralFailure(fmt.Sprintf("Error: %v", err))
			if sendErr := l.sender.Send(failure); sendErr != nil {
				l.logger.WithError(sendErr).Error("Failed to send general failure")
			}
			return err
		}

		l.metrics.IncProcessed()
		l.logger.Debug("Message processed successfully")
	}
}
