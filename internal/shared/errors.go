package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Catalog errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrNoMatch    = fmt.Errorf("no matching track")
	ErrNoFeatures = fmt.Errorf("no audio features")

	// Dataset errors
	ErrNoData        = fmt.Errorf("no data extracted")
	ErrDuplicateRows = fmt.Errorf("duplicate rows survived deduplication")

	// Run history errors
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
