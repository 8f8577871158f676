// Package processor interprets inbound protocol messages and drives the
// acquisition sequence for URI Acquire requests.
package processor

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/microsoft/apt-transport-blob/internal/blobstore"
	"github.com/microsoft/apt-transport-blob/internal/observability"
	"github.com/microsoft/apt-transport-blob/internal/transport"
	"github.com/microsoft/apt-transport-blob/pkg/message"
)

// Processor dispatches inbound messages. It holds the blob-store handle for
// the life of the process and keeps no per-request state.
type Processor struct {
	store   blobstore.Store
	sender  transport.Sender
	logger  *logrus.Logger
	metrics observability.MetricsCollector

	// writeFile is swapped out in tests.
	writeFile func(name string, data []byte, perm os.FileMode) error
}

func New(store blobstore.Store, sender transport.Sender, metrics observability.MetricsCollector) *Processor {
	if metrics == nil {
		metrics = observability.NewInMemoryMetrics()
	}
	return &Processor{
		store:     store,
		sender:    sender,
		logger:    observability.GetLogger(),
		metrics:   metrics,
		writeFile: os.WriteFile,
	}
}

// Process handles one inbound message. Failures during acquisition are
// reported to the controller as URI Failure messages, not returned; the only
// error Process returns is the fatal missing-URI case (or a broken outbound
// stream), which aborts the run.
func (p *Processor) Process(ctx context.Context, msg *message.Message) error {
	p.logger.WithField("message", msg.Description()).Debug("Handling message")

	switch msg.Type {
	case message.Configuration:
		p.logger.Info("Configuration message received")
		// Currently, nothing is done with the configuration.
		return nil
	case message.URIAcquire:
		p.logger.Info("URI Acquire message received")
		if err := p.sender.Send(message.NewStatus("Waiting for headers")); err != nil {
			return err
		}

		// Acquire the URI. A message comes back on success or failure and
		// is sent either way.
		reply, err := p.uriAcquire(ctx, msg)
		if err != nil {
			return err
		}
		return p.sender.Send(reply)
	default:
		// Inbound messages the agent does not understand are not protocol
		// errors; the protocol is asymmetric.
		p.logger.WithField("message", msg.Description()).Warn("Unhandled message type")
		return nil
	}
}

// uriAcquire runs the acquisition sequence and returns the outcome message.
// Every fallible step after the URI header lookup converts its error into a
// URI Failure reply instead of returning it.
func (p *Processor) uriAcquire(ctx context.Context, msg *message.Message) (*message.Message, error) {
	// The URI field is part of the interface, so a missing URI is a
	// terminal error.
	uri, err := msg.URI()
	if err != nil {
		return nil, err
	}
	log := p.logger.WithField("uri", uri)
	log.Info("Acquiring URI")

	filename, err := msg.Filename()
	if err != nil {
		return p.failAcquire(uri, err), nil
	}
	log.WithField("filename", filename).Info("Filename resolved")

	parsed, err := url.Parse(uri)
	if err != nil {
		return p.failAcquire(uri, err), nil
	}

	blob, err := p.store.Resolve(parsed)
	if err != nil {
		return p.failAcquire(uri, err), nil
	}

	exists, err := blob.Exists(ctx)
	if err != nil {
		return p.failAcquire(uri, err), nil
	}
	if !exists {
		// Not a collaborator error, a business outcome.
		log.Warn("Blob does not exist")
		p.metrics.IncAcquireFailed()
		return message.NewURIFailure(uri, "Blob does not exist"), nil
	}

	size, lastModified, err := blob.Properties(ctx)
	if err != nil {
		return p.failAcquire(uri, err), nil
	}
	log.WithFields(logrus.Fields{
		"size":          size,
		"last_modified": lastModified,
	}).Info("Blob properties fetched")

	// Announce that the transfer is starting. This is a progress signal,
	// sent regardless of the eventual outcome.
	p.metrics.IncAcquireStarted()
	if err := p.sender.Send(message.NewURIStart(uri, size, lastModified)); err != nil {
		return nil, err
	}

	contents, err := blob.Download(ctx)
	if err != nil {
		return p.failAcquire(uri, err), nil
	}
	log.Info("Downloaded blob")

	if err := p.writeFile(filename, contents, 0o644); err != nil {
		return p.failAcquire(uri, err), nil
	}

	p.metrics.IncAcquired()
	p.metrics.AddBytesDownloaded(int64(len(contents)))
	return message.NewURIDone(uri, filename), nil
}

// failAcquire maps any acquisition error to the URI Failure reply.
func (p *Processor) failAcquire(uri string, err error) *message.Message {
	reason := fmt.Sprintf("Error: %v", err)
	p.logger.WithField("uri", uri).WithError(err).Error("URI acquisition failed")
	p.metrics.IncAcquireFailed()
	return message.NewURIFailure(uri, reason)
}
