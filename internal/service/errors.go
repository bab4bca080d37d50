package service

import "errors"

// Failure taxonomy of a chat request. Components wrap these with %w.
var (
	// ErrInvalidArguments: the model called the search capability with malformed arguments
	ErrInvalidArguments = errors.New("invalid tool arguments")
	// ErrStoreUnavailable: the property store query failed
	ErrStoreUnavailable = errors.New("property store unavailable")
	// ErrDeadlineExceeded: the chat deadline fired before generation finished
	ErrDeadlineExceeded = errors.New("chat deadline exceeded")
	// ErrUpstreamGeneration: the language model provider failed
	ErrUpstreamGeneration = errors.New("generation failed")
	// ErrInvalidHistory: the caller sent a history the gateway cannot use
	ErrInvalidHistory = errors.New("invalid conversation history")
)
