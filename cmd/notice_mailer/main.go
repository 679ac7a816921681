package main

import (
	"accounts/internal/app/consumers"
	"accounts/internal/app/deps"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	deps, shutdownDeps := deps.InitMailerDeps()
	defer shutdownDeps()

	shutdownConsumers := consumers.InitConsumers(deps)

	stopCh, closeCh := createChannel()
	defer closeCh()

	<-stopCh
	deps.Logger.Info(context.Background(), "Stopping activation notice mailer.")
	shutdownConsumers()
	deps.Logger.Info(context.Background(), "Activation notice mailer has stopped.")
}

func createChannel() (chan os.Signal, func()) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	return stopCh, func() {
		close(stopCh)
	}
}
