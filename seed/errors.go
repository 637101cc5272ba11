package seed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrClaimsRepositoryRequired is returned when an importer is created without a claims repository.
	ErrClaimsRepositoryRequired = errors.New("claims repository is required")

	// ErrVariationsRepositoryRequired is returned when an importer is created without a variations repository.
	ErrVariationsRepositoryRequired = errors.New("variations repository is required")

	// ErrInvalidImportConfig is returned for a non-positive batch size, report interval or retry count.
	ErrInvalidImportConfig = errors.New("invalid import configuration")

	// ErrInvalidSeedFile is returned when a seed file cannot be parsed or holds invalid records.
	ErrInvalidSeedFile = errors.New("invalid seed file")
)
