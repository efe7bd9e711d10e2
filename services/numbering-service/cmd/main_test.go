package main

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitForShutdown_Signal(t *testing.T) {
	quit := make(chan os.Signal, 1)
	serveErr := make(chan error, 1)
	quit <- syscall.SIGTERM

	assert.NoError(t, waitForShutdown(quit, serveErr))
}

func TestWaitForShutdown_ServerFailureReturnsToCaller(t *testing.T) {
	quit := make(chan os.Signal, 1)
	serveErr := make(chan error, 1)
	serveErr <- errors.New("HTTP server: address already in use")

	err := waitForShutdown(quit, serveErr)
	assert.EqualError(t, err, "HTTP server: address already in use")
}
