package httpserver

import "errors"

var (
	ErrStart          = errors.New("httpserver.failed_to_start")
	ErrShutdown       = errors.New("httpserver.failed_to_shutdown")
	ErrAlreadyRunning = errors.New("httpserver.already_running")
)
