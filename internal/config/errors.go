package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// File.Validate.
var (
	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative (0 disables it)")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrConflictingOutputs is returned when both --output and --output-dir
	// are given.
	ErrConflictingOutputs = errors.New("conflicting outputs: --output and --output-dir cannot be used together")

	// ErrNoSources is returned when the sources list is empty.
	ErrNoSources = errors.New("no sources configured")

	// ErrInvalidSources is returned when the sources file fails validation.
	ErrInvalidSources = errors.New("invalid sources file")

	// ErrDuplicateSource is returned when two sources share an identifier.
	ErrDuplicateSource = errors.New("duplicate source id")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
