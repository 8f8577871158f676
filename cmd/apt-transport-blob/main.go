package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/microsoft/apt-transport-blob/internal/blobstore"
	"github.com/microsoft/apt-transport-blob/internal/config"
	"github.com/microsoft/apt-transport-blob/internal/observability"
	"github.com/microsoft/apt-transport-blob/internal/processor"
	"github.com/microsoft/apt-transport-blob/internal/transport"
	"github.com/microsoft/apt-transport-blob/internal/version"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.Logging.Level, cfg.Logging.File)
	logger := observability.GetLogger()

	store, err := blobstore.NewAzureStore(blobstore.AzureConfig{
		BearerToken:     cfg.Azure.BearerToken,
		DownloadTimeout: cfg.Azure.DownloadTimeout,
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise blob store")
	}

	metrics := observability.NewInMemoryMetrics()
	sender := transport.NewStreamSender(os.Stdout)
	proc := processor.New(store, sender, metrics)

	loop := transport.NewLoop(transport.LoopConfig{
		Input:   os.Stdin,
		Sender:  sender,
		Handler: proc.Process,
		Version: version.Version,
		Metrics: metrics,
	})

	if err := loop.Run(context.Background()); err != nil {
		logger.WithError(err).Error("Agent terminated with error")
		os.Exit(1)
	}

	logger.WithFields(logrus.Fields{
		"received": metrics.GetReceived(),
		"acquired": metrics.GetAcquired(),
		"failed":   metrics.GetAcquireFailed(),
	}).Info("Agent finished")
}
