package main

const (
	ExitSuccess     = 0 // Success, including a signal-driven shutdown
	ExitError       = 1 // Runtime failure (send-now failed, unexpected error)
	ExitConfigError = 2 // Missing or invalid configuration
)
