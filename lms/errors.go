package lms

import "errors"

// Common errors
var (
	// ErrNotFound indicates a lookup matched nothing
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousMatch indicates a lookup expected one result and got several
	ErrAmbiguousMatch = errors.New("more than one match")
	// ErrRegistryNotFound indicates the registry named for an operation does not exist
	ErrRegistryNotFound = errors.New("registry not found")
	// ErrRepositoryNotFound indicates the repository named for an operation does not exist
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrActivityNotFound indicates the activity an operation updates does not exist
	ErrActivityNotFound = errors.New("activity not found")
	// ErrQualificationNotFound indicates the qualification an operation updates does not exist
	ErrQualificationNotFound = errors.New("qualification not found")
	// ErrRequirementNotFound indicates the requirement an operation updates does not exist
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrFileNotFound indicates a file created moments earlier could not be read back
	ErrFileNotFound = errors.New("file not found")
)

// IsNotFound reports whether err means a lookup matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
