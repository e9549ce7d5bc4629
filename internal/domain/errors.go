package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrProviderUnavailable indicates a metadata provider is unreachable
	ErrProviderUnavailable = errors.New("metadata provider is unreachable")

	// ErrUnauthorized indicates an API key was rejected
	ErrUnauthorized = errors.New("api key is invalid")

	// ErrRemoteStore indicates the remote record store rejected a request
	ErrRemoteStore = errors.New("remote record store request failed")

	// ErrNoSession indicates no username has been saved yet
	ErrNoSession = errors.New("no saved session")
)
